package parse

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Node kinds that declare functions, classes, and imports, per language.
// The walker stops descending at function and class kinds so nested
// definitions are attributed to their container, not double-counted.
var (
	functionKinds = map[Language][]string{
		LangPython:     {"function_definition"},
		LangGo:         {"function_declaration", "method_declaration"},
		LangJavaScript: {"function_declaration", "generator_function_declaration"},
		LangTypeScript: {"function_declaration", "generator_function_declaration"},
		LangRust:       {"function_item"},
		LangJava:       {"method_declaration", "constructor_declaration"},
	}

	classKinds = map[Language][]string{
		LangPython:     {"class_definition"},
		LangGo:         {"type_declaration"},
		LangJavaScript: {"class_declaration"},
		LangTypeScript: {"class_declaration", "abstract_class_declaration"},
		LangRust:       {"struct_item", "enum_item"},
		LangJava:       {"class_declaration", "interface_declaration"},
	}

	methodKinds = map[Language][]string{
		LangPython:     {"function_definition"},
		LangJavaScript: {"method_definition"},
		LangTypeScript: {"method_definition"},
		LangJava:       {"method_declaration", "constructor_declaration"},
	}

	importKinds = map[Language][]string{
		LangPython:     {"import_statement", "import_from_statement"},
		LangGo:         {"import_declaration"},
		LangJavaScript: {"import_statement"},
		LangTypeScript: {"import_statement"},
		LangRust:       {"use_declaration"},
		LangJava:       {"import_declaration"},
	}
)

// extractor walks a parse tree for one language.
type extractor struct {
	lang Language
	src  []byte
}

func newExtractor(lang Language, src []byte) *extractor {
	return &extractor{lang: lang, src: src}
}

func (e *extractor) text(n *sitter.Node) string {
	return n.Content(e.src)
}

func kindIn(kind string, kinds []string) bool {
	for _, k := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// functions returns all function and method definitions outside class
// bodies. For Go, methods with a matching struct receiver are attached to
// the struct by classes() and still appear here with their full signature.
func (e *extractor) functions(root *sitter.Node) []FunctionInfo {
	var funcs []FunctionInfo
	fnKinds := functionKinds[e.lang]
	clKinds := classKinds[e.lang]

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		kind := n.Type()
		if kindIn(kind, fnKinds) {
			if fn, ok := e.functionInfo(n); ok {
				funcs = append(funcs, fn)
			}
			return
		}
		if kindIn(kind, clKinds) {
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return funcs
}

// classes returns class definitions with their methods attached.
func (e *extractor) classes(root *sitter.Node) []ClassInfo {
	if e.lang == LangGo {
		return e.goStructs(root)
	}

	var classes []ClassInfo
	clKinds := classKinds[e.lang]

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if kindIn(n.Type(), clKinds) {
			if cl, ok := e.classInfo(n); ok {
				classes = append(classes, cl)
			}
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return classes
}

func (e *extractor) classInfo(n *sitter.Node) (ClassInfo, bool) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return ClassInfo{}, false
	}

	cl := ClassInfo{
		Name:      e.text(nameNode),
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
		Methods:   []FunctionInfo{},
	}
	e.fillHeritage(n, &cl)

	body := n.ChildByFieldName("body")
	if body != nil {
		mKinds := methodKinds[e.lang]
		var walk func(m *sitter.Node)
		walk = func(m *sitter.Node) {
			if kindIn(m.Type(), mKinds) {
				if fn, ok := e.functionInfo(m); ok {
					cl.Methods = append(cl.Methods, fn)
				}
				return
			}
			for i := 0; i < int(m.NamedChildCount()); i++ {
				walk(m.NamedChild(i))
			}
		}
		walk(body)
	}
	return cl, true
}

// fillHeritage extracts base classes and implemented interfaces where the
// grammar exposes them.
func (e *extractor) fillHeritage(n *sitter.Node, cl *ClassInfo) {
	switch e.lang {
	case LangPython:
		// class C(Base, Mixin): first base is extends, rest implements.
		supers := n.ChildByFieldName("superclasses")
		if supers == nil {
			return
		}
		var bases []string
		for i := 0; i < int(supers.NamedChildCount()); i++ {
			bases = append(bases, e.text(supers.NamedChild(i)))
		}
		if len(bases) > 0 {
			cl.Extends = bases[0]
			cl.Implements = bases[1:]
		}

	case LangJava:
		if super := n.ChildByFieldName("superclass"); super != nil {
			cl.Extends = strings.TrimSpace(strings.TrimPrefix(e.text(super), "extends"))
		}
		if ifaces := n.ChildByFieldName("interfaces"); ifaces != nil {
			raw := strings.TrimSpace(strings.TrimPrefix(e.text(ifaces), "implements"))
			for _, name := range strings.Split(raw, ",") {
				if name = strings.TrimSpace(name); name != "" {
					cl.Implements = append(cl.Implements, name)
				}
			}
		}

	case LangJavaScript, LangTypeScript:
		// class_heritage holds extends_clause / implements_clause (TS) or
		// "extends Expr" directly (JS).
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() != "class_heritage" {
				continue
			}
			raw := e.text(child)
			for i := 0; i < int(child.NamedChildCount()); i++ {
				clause := child.NamedChild(i)
				switch clause.Type() {
				case "extends_clause":
					cl.Extends = strings.TrimSpace(strings.TrimPrefix(e.text(clause), "extends"))
				case "implements_clause":
					for j := 0; j < int(clause.NamedChildCount()); j++ {
						cl.Implements = append(cl.Implements, e.text(clause.NamedChild(j)))
					}
				}
			}
			if cl.Extends == "" && strings.HasPrefix(raw, "extends") {
				cl.Extends = strings.TrimSpace(strings.TrimPrefix(raw, "extends"))
			}
		}
	}
}

// goStructs maps Go struct types to ClassInfo and attaches methods by
// receiver type.
func (e *extractor) goStructs(root *sitter.Node) []ClassInfo {
	var classes []ClassInfo
	byName := make(map[string]int)

	var walkTypes func(n *sitter.Node)
	walkTypes = func(n *sitter.Node) {
		if n.Type() == "type_spec" {
			nameNode := n.ChildByFieldName("name")
			typeNode := n.ChildByFieldName("type")
			if nameNode != nil && typeNode != nil && typeNode.Type() == "struct_type" {
				name := e.text(nameNode)
				byName[name] = len(classes)
				classes = append(classes, ClassInfo{
					Name:      name,
					Methods:   []FunctionInfo{},
					StartLine: int(n.StartPoint().Row) + 1,
					EndLine:   int(n.EndPoint().Row) + 1,
				})
			}
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walkTypes(n.NamedChild(i))
		}
	}
	walkTypes(root)

	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		if n.Type() != "method_declaration" {
			continue
		}
		recv := e.goReceiverType(n)
		idx, ok := byName[recv]
		if !ok {
			continue
		}
		if fn, fok := e.functionInfo(n); fok {
			classes[idx].Methods = append(classes[idx].Methods, fn)
		}
	}
	return classes
}

// goReceiverType returns the bare receiver type name of a method
// declaration ("*Store" and "Store" both yield "Store").
func (e *extractor) goReceiverType(n *sitter.Node) string {
	recv := n.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	for i := 0; i < int(recv.NamedChildCount()); i++ {
		param := recv.NamedChild(i)
		typeNode := param.ChildByFieldName("type")
		if typeNode == nil {
			continue
		}
		name := e.text(typeNode)
		name = strings.TrimPrefix(name, "*")
		if idx := strings.Index(name, "["); idx > 0 {
			name = name[:idx]
		}
		return name
	}
	return ""
}

// functionInfo builds a FunctionInfo from a function-like node.
func (e *extractor) functionInfo(n *sitter.Node) (FunctionInfo, bool) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return FunctionInfo{}, false
	}
	name := e.text(nameNode)

	fn := FunctionInfo{
		Name:       name,
		Signature:  e.signature(n),
		StartLine:  int(n.StartPoint().Row) + 1,
		EndLine:    int(n.EndPoint().Row) + 1,
		Parameters: e.parameters(n),
		ReturnType: e.returnType(n),
		IsAsync:    e.isAsync(n),
		IsExported: e.isExported(n, name),
	}
	return fn, true
}

// signature is the declaration text up to (not including) the body, on
// one line.
func (e *extractor) signature(n *sitter.Node) string {
	end := n.EndByte()
	if body := n.ChildByFieldName("body"); body != nil {
		end = body.StartByte()
	}
	sig := string(e.src[n.StartByte():end])
	sig = strings.TrimSuffix(strings.TrimSpace(sig), ":")
	return strings.Join(strings.Fields(sig), " ")
}

func (e *extractor) parameters(n *sitter.Node) []string {
	params := []string{}
	paramsNode := n.ChildByFieldName("parameters")
	if paramsNode == nil {
		return params
	}
	for i := 0; i < int(paramsNode.NamedChildCount()); i++ {
		p := paramsNode.NamedChild(i)
		if p.Type() == "comment" {
			continue
		}
		params = append(params, strings.Join(strings.Fields(e.text(p)), " "))
	}
	return params
}

func (e *extractor) returnType(n *sitter.Node) string {
	// Field name differs per grammar: python/rust/ts use return_type,
	// Go uses result, Java uses type.
	for _, field := range []string{"return_type", "result", "type"} {
		if rt := n.ChildByFieldName(field); rt != nil {
			text := strings.TrimSpace(e.text(rt))
			text = strings.TrimSpace(strings.TrimPrefix(text, ":"))
			return text
		}
	}
	return ""
}

func (e *extractor) isAsync(n *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "async":
			return true
		case "function_modifiers": // rust
			for j := 0; j < int(child.ChildCount()); j++ {
				if child.Child(j).Type() == "async" {
					return true
				}
			}
		}
	}
	return false
}

func (e *extractor) isExported(n *sitter.Node, name string) bool {
	switch e.lang {
	case LangGo:
		return name != "" && name[0] >= 'A' && name[0] <= 'Z'
	case LangPython:
		return !strings.HasPrefix(name, "_")
	case LangRust:
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			if child.Type() == "visibility_modifier" && strings.HasPrefix(e.text(child), "pub") {
				return true
			}
		}
		return false
	case LangJavaScript, LangTypeScript:
		for p := n.Parent(); p != nil; p = p.Parent() {
			if p.Type() == "export_statement" {
				return true
			}
			if p.Type() == "program" {
				break
			}
		}
		return false
	case LangJava:
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == "modifiers" && strings.Contains(e.text(child), "public") {
				return true
			}
		}
		return false
	}
	return false
}

// imports returns all import declarations in the file.
func (e *extractor) imports(root *sitter.Node) []ImportInfo {
	var imports []ImportInfo
	kinds := importKinds[e.lang]

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if kindIn(n.Type(), kinds) {
			imports = append(imports, e.importInfo(n)...)
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return imports
}

func (e *extractor) importInfo(n *sitter.Node) []ImportInfo {
	loc := locationOf(n)

	switch e.lang {
	case LangPython:
		return e.pythonImport(n, loc)

	case LangGo:
		// import_declaration wraps one import_spec or an import_spec_list.
		var out []ImportInfo
		var walkSpecs func(m *sitter.Node)
		walkSpecs = func(m *sitter.Node) {
			if m.Type() == "import_spec" {
				if pathNode := m.ChildByFieldName("path"); pathNode != nil {
					out = append(out, ImportInfo{
						Source:   strings.Trim(e.text(pathNode), `"`),
						Location: loc,
					})
				}
				return
			}
			for i := 0; i < int(m.NamedChildCount()); i++ {
				walkSpecs(m.NamedChild(i))
			}
		}
		walkSpecs(n)
		return out

	case LangJavaScript, LangTypeScript:
		info := ImportInfo{Location: loc}
		if sourceNode := n.ChildByFieldName("source"); sourceNode != nil {
			info.Source = strings.Trim(e.text(sourceNode), `"'`)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if n.Child(i).Type() == "type" {
				info.IsTypeOnly = true
			}
		}
		var collect func(m *sitter.Node)
		collect = func(m *sitter.Node) {
			switch m.Type() {
			case "import_specifier":
				if nameNode := m.ChildByFieldName("name"); nameNode != nil {
					info.ImportedNames = append(info.ImportedNames, e.text(nameNode))
				}
				return
			case "namespace_import":
				info.ImportedNames = append(info.ImportedNames, e.text(m))
				return
			}
			for i := 0; i < int(m.NamedChildCount()); i++ {
				collect(m.NamedChild(i))
			}
		}
		collect(n)
		return []ImportInfo{info}

	case LangRust:
		if arg := n.ChildByFieldName("argument"); arg != nil {
			return []ImportInfo{{Source: e.text(arg), Location: loc}}
		}
		return nil

	case LangJava:
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == "scoped_identifier" || child.Type() == "identifier" {
				return []ImportInfo{{Source: e.text(child), Location: loc}}
			}
		}
		return nil
	}
	return nil
}

func (e *extractor) pythonImport(n *sitter.Node, loc SourceLocation) []ImportInfo {
	importedName := func(m *sitter.Node) string {
		if m.Type() == "aliased_import" {
			if nameNode := m.ChildByFieldName("name"); nameNode != nil {
				return e.text(nameNode)
			}
		}
		return e.text(m)
	}

	if n.Type() == "import_from_statement" {
		info := ImportInfo{Location: loc}
		module := n.ChildByFieldName("module_name")
		if module != nil {
			info.Source = e.text(module)
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if module != nil && child.StartByte() == module.StartByte() {
				continue
			}
			switch child.Type() {
			case "dotted_name", "aliased_import":
				info.ImportedNames = append(info.ImportedNames, importedName(child))
			case "wildcard_import":
				info.ImportedNames = append(info.ImportedNames, "*")
			}
		}
		return []ImportInfo{info}
	}

	// import a.b, c: one ImportInfo per module.
	var out []ImportInfo
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "dotted_name", "aliased_import":
			out = append(out, ImportInfo{Source: importedName(child), Location: loc})
		}
	}
	return out
}

// errorNodes collects ERROR and missing nodes from the tree.
func (e *extractor) errorNodes(root *sitter.Node) []ErrorNode {
	var errs []ErrorNode

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "ERROR" || n.IsMissing() {
			text := ""
			if int(n.EndByte()) <= len(e.src) {
				text = string(e.src[n.StartByte():n.EndByte()])
			}
			errs = append(errs, ErrorNode{
				Message:  "Syntax error",
				Location: locationOf(n),
				Text:     text,
			})
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return errs
}

func locationOf(n *sitter.Node) SourceLocation {
	return SourceLocation{
		StartRow:    int(n.StartPoint().Row),
		StartColumn: int(n.StartPoint().Column),
		EndRow:      int(n.EndPoint().Row),
		EndColumn:   int(n.EndPoint().Column),
	}
}

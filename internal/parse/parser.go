package parse

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"prism/internal/logging"
)

// Language identifies a supported source language.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangGo         Language = "go"
	LangJava       Language = "java"
)

// grammarFor maps languages to their Tree-sitter grammars.
func grammarFor(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangPython:
		return python.GetLanguage(), nil
	case LangRust:
		return rust.GetLanguage(), nil
	case LangGo:
		return golang.GetLanguage(), nil
	case LangJava:
		return java.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
}

// extensions maps file extensions to languages. The primary extension for
// a language is listed first in SupportedExtensions.
var extensions = map[string]Language{
	".ts":   LangTypeScript,
	".tsx":  LangTypeScript,
	".js":   LangJavaScript,
	".jsx":  LangJavaScript,
	".mjs":  LangJavaScript,
	".py":   LangPython,
	".pyw":  LangPython,
	".rs":   LangRust,
	".go":   LangGo,
	".java": LangJava,
}

// SupportedLanguages returns the language identifiers prism can parse,
// in stable order.
func SupportedLanguages() []Language {
	langs := []Language{
		LangTypeScript,
		LangJavaScript,
		LangPython,
		LangRust,
		LangGo,
		LangJava,
	}
	return langs
}

// SupportedExtensions returns all file extensions with a registered
// grammar, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensions))
	for ext := range extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// LanguageForFile returns the language for a file path based on its
// extension, or ErrUnsupportedLanguage.
func LanguageForFile(path string) (Language, error) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := extensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: extension %q", ErrUnsupportedLanguage, ext)
	}
	return lang, nil
}

// Parser parses source code of a single language into FileResults.
// A Parser is not safe for concurrent use; create one per goroutine.
type Parser struct {
	lang   Language
	parser *sitter.Parser
}

// NewParser creates a parser for the given language.
func NewParser(lang Language) (*Parser, error) {
	grammar, err := grammarFor(lang)
	if err != nil {
		return nil, err
	}
	p := sitter.NewParser()
	p.SetLanguage(grammar)
	logging.ParserDebug("created %s parser", lang)
	return &Parser{lang: lang, parser: p}, nil
}

// NewParserForFile creates a parser for the language implied by the
// file's extension.
func NewParserForFile(path string) (*Parser, error) {
	lang, err := LanguageForFile(path)
	if err != nil {
		return nil, err
	}
	return NewParser(lang)
}

// Language returns the parser's language identifier.
func (p *Parser) Language() Language {
	return p.lang
}

// Close releases the underlying Tree-sitter parser.
func (p *Parser) Close() {
	p.parser.Close()
}

// Parse extracts functions, classes, imports, and syntax errors from
// source. Files with syntax errors still produce a result; the errors are
// reported as ErrorNodes with HasErrors set.
func (p *Parser) Parse(ctx context.Context, source []byte) (*FileResult, error) {
	start := time.Now()

	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	defer tree.Close()

	root := tree.RootNode()
	ex := newExtractor(p.lang, source)

	result := &FileResult{
		HasErrors: root.HasError(),
		Functions: ex.functions(root),
		Classes:   ex.classes(root),
		Imports:   ex.imports(root),
	}
	if result.HasErrors {
		result.ErrorNodes = ex.errorNodes(root)
	}

	logging.ParserDebug("%s: parsed %d bytes - %d functions, %d classes, %d imports in %v",
		p.lang, len(source), len(result.Functions), len(result.Classes), len(result.Imports),
		time.Since(start))
	return result, nil
}

// Package parse turns source files into structured symbol information
// using Tree-sitter. It is the language-aware front half of the indexing
// pipeline; chunking and persistence build on its output.
package parse

// SourceLocation is a zero-indexed position range in source code.
type SourceLocation struct {
	StartRow    int `json:"start_row"`
	StartColumn int `json:"start_column"`
	EndRow      int `json:"end_row"`
	EndColumn   int `json:"end_column"`
}

// FunctionInfo describes a function or method found in a file.
// Line numbers are 1-indexed and inclusive.
type FunctionInfo struct {
	Name       string   `json:"name"`
	Signature  string   `json:"signature"`
	StartLine  int      `json:"start_line"`
	EndLine    int      `json:"end_line"`
	Parameters []string `json:"parameters"`
	ReturnType string   `json:"return_type,omitempty"`
	IsAsync    bool     `json:"is_async"`
	IsExported bool     `json:"is_exported"`
}

// ClassInfo describes a class (or the nearest language analog: Go struct,
// Rust struct/enum) with its methods attached.
type ClassInfo struct {
	Name       string         `json:"name"`
	Extends    string         `json:"extends,omitempty"`
	Implements []string       `json:"implements,omitempty"`
	Methods    []FunctionInfo `json:"methods"`
	StartLine  int            `json:"start_line"`
	EndLine    int            `json:"end_line"`
}

// ImportInfo describes a single import/use declaration.
type ImportInfo struct {
	Source        string         `json:"source"`
	ImportedNames []string       `json:"imported_names,omitempty"`
	IsTypeOnly    bool           `json:"is_type_only"`
	Location      SourceLocation `json:"location"`
}

// ErrorNode reports a syntax error or missing node in the parse tree.
type ErrorNode struct {
	Message  string         `json:"message"`
	Location SourceLocation `json:"location"`
	Text     string         `json:"text"`
}

// FileResult is the structured output of parsing one file.
type FileResult struct {
	HasErrors  bool           `json:"has_errors"`
	ErrorNodes []ErrorNode    `json:"error_nodes,omitempty"`
	Functions  []FunctionInfo `json:"functions"`
	Classes    []ClassInfo    `json:"classes"`
	Imports    []ImportInfo   `json:"imports"`
}

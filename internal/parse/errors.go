package parse

import (
	"errors"
	"fmt"
)

// ErrUnsupportedLanguage is returned when no grammar is registered for a
// requested language or file extension. Callers should check with
// errors.Is and skip the file rather than abort a workspace scan.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// ParseError reports a failure to produce a parse tree at all. Syntax
// errors inside an otherwise parseable file are NOT ParseErrors; they are
// surfaced as ErrorNodes in the FileResult.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse error: %v", e.Err)
	}
	return fmt.Sprintf("parse error: %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Package chunk slices parsed files into token-budgeted pieces for
// indexing. Every file produces at least one chunk carrying its extracted
// symbols; chunks over the budget are split on line boundaries with
// overlap so no indexed unit exceeds the maximum.
package chunk

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"prism/internal/logging"
	"prism/internal/parse"
)

// Default token budgets.
const (
	DefaultChunkTokens   = 512
	DefaultOverlapTokens = 128
	MaxChunkTokens       = 1000
)

// CodeChunk is one indexable unit of a source file.
type CodeChunk struct {
	ID           string               `json:"id"`
	Text         string               `json:"text"`
	StartLine    int                  `json:"start_line"`
	EndLine      int                  `json:"end_line"`
	Tokens       int                  `json:"tokens"`
	Language     string               `json:"language"`
	Functions    []parse.FunctionInfo `json:"functions"`
	Classes      []parse.ClassInfo    `json:"classes"`
	Imports      []parse.ImportInfo   `json:"imports"`
	Dependencies []string             `json:"dependencies"`
}

// TooLargeError reports a region that cannot be split below the maximum
// chunk budget (a single line over budget).
type TooLargeError struct {
	Actual int
	Max    int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("chunk size exceeded: %d > %d", e.Actual, e.Max)
}

// EstimateTokens approximates the token count of text. Rough estimation:
// ~4 characters per token.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// Chunker splits files into chunks within configured token budgets.
type Chunker struct {
	chunkTokens   int
	overlapTokens int
	maxTokens     int
}

// NewChunker creates a Chunker; zero values fall back to the defaults.
func NewChunker(chunkTokens, overlapTokens, maxTokens int) *Chunker {
	if chunkTokens <= 0 {
		chunkTokens = DefaultChunkTokens
	}
	if overlapTokens < 0 || overlapTokens >= chunkTokens {
		overlapTokens = DefaultOverlapTokens
	}
	if maxTokens <= 0 {
		maxTokens = MaxChunkTokens
	}
	return &Chunker{
		chunkTokens:   chunkTokens,
		overlapTokens: overlapTokens,
		maxTokens:     maxTokens,
	}
}

// Chunk turns a parsed file into its indexable chunks. The whole file is
// the base chunk, carrying the extracted symbols and the import sources as
// dependencies; oversized files are split.
func (c *Chunker) Chunk(source string, language string, result *parse.FileResult) ([]CodeChunk, error) {
	deps := make([]string, 0, len(result.Imports))
	seen := make(map[string]bool)
	for _, imp := range result.Imports {
		if imp.Source != "" && !seen[imp.Source] {
			seen[imp.Source] = true
			deps = append(deps, imp.Source)
		}
	}

	base := CodeChunk{
		ID:           uuid.New().String(),
		Text:         source,
		StartLine:    1,
		EndLine:      countLines(source),
		Tokens:       EstimateTokens(source),
		Language:     language,
		Functions:    result.Functions,
		Classes:      result.Classes,
		Imports:      result.Imports,
		Dependencies: deps,
	}

	if base.Tokens <= c.maxTokens {
		logging.ChunkerDebug("%s: single chunk, %d tokens", language, base.Tokens)
		return []CodeChunk{base}, nil
	}

	chunks, err := c.split(base)
	if err != nil {
		return nil, err
	}
	logging.ChunkerDebug("%s: split %d tokens into %d chunks", language, base.Tokens, len(chunks))
	return chunks, nil
}

// split divides an oversized chunk on line boundaries. Consecutive pieces
// share overlapTokens worth of trailing lines. Symbols stay on the piece
// containing their start line.
func (c *Chunker) split(base CodeChunk) ([]CodeChunk, error) {
	lines := strings.Split(base.Text, "\n")
	// Drop the empty element a terminating newline produces so split
	// pieces agree with countLines.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	for _, line := range lines {
		if EstimateTokens(line) > c.maxTokens {
			return nil, &TooLargeError{Actual: EstimateTokens(line), Max: c.maxTokens}
		}
	}

	var chunks []CodeChunk
	start := 0
	for start < len(lines) {
		tokens := 0
		end := start
		for end < len(lines) {
			lineTokens := EstimateTokens(lines[end]) + 1
			if tokens+lineTokens > c.chunkTokens && end > start {
				break
			}
			tokens += lineTokens
			end++
		}

		text := strings.Join(lines[start:end], "\n")
		piece := CodeChunk{
			ID:        uuid.New().String(),
			Text:      text,
			StartLine: base.StartLine + start,
			EndLine:   base.StartLine + end - 1,
			Tokens:    EstimateTokens(text),
			Language:  base.Language,
			Functions: symbolsInRange(base.Functions, base.StartLine+start, base.StartLine+end-1),
			Classes:   classesInRange(base.Classes, base.StartLine+start, base.StartLine+end-1),
		}
		if len(chunks) == 0 {
			piece.Imports = base.Imports
			piece.Dependencies = base.Dependencies
		}
		chunks = append(chunks, piece)

		if end >= len(lines) {
			break
		}
		next := c.overlapStart(lines, end)
		if next <= start {
			// Overlap would swallow the whole piece; force progress.
			next = start + 1
		}
		start = next
	}
	return chunks, nil
}

// overlapStart backs up from end until roughly overlapTokens of lines are
// repeated in the next piece.
func (c *Chunker) overlapStart(lines []string, end int) int {
	tokens := 0
	start := end
	for start > 0 && tokens < c.overlapTokens {
		start--
		tokens += EstimateTokens(lines[start]) + 1
	}
	if start == end {
		// Zero overlap configured; continue from end.
		return end
	}
	return start
}

func symbolsInRange(funcs []parse.FunctionInfo, startLine, endLine int) []parse.FunctionInfo {
	var out []parse.FunctionInfo
	for _, fn := range funcs {
		if fn.StartLine >= startLine && fn.StartLine <= endLine {
			out = append(out, fn)
		}
	}
	return out
}

func classesInRange(classes []parse.ClassInfo, startLine, endLine int) []parse.ClassInfo {
	var out []parse.ClassInfo
	for _, cl := range classes {
		if cl.StartLine >= startLine && cl.StartLine <= endLine {
			out = append(out, cl)
		}
	}
	return out
}

// countLines counts lines the way an editor does: a trailing newline
// terminates the last line, it does not open a new one.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	s = strings.TrimSuffix(s, "\n")
	return strings.Count(s, "\n") + 1
}

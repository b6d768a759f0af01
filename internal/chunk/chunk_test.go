package chunk

import (
	"errors"
	"strings"
	"testing"

	"prism/internal/parse"
)

func TestEstimateTokens(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abc", 0},
		{"abcd", 1},
		{strings.Repeat("x", 400), 100},
	}
	for _, tc := range cases {
		if got := EstimateTokens(tc.text); got != tc.want {
			t.Errorf("EstimateTokens(%d chars) = %d, want %d", len(tc.text), got, tc.want)
		}
	}
}

func TestChunkSingle(t *testing.T) {
	source := "def add(a, b):\n    return a + b\n"
	result := &parse.FileResult{
		Functions: []parse.FunctionInfo{{Name: "add", StartLine: 1, EndLine: 2}},
		Imports: []parse.ImportInfo{
			{Source: "typing"},
			{Source: "typing"},
			{Source: "os"},
		},
	}

	chunker := NewChunker(0, 0, 0)
	chunks, err := chunker.Chunk(source, "python", result)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}

	c := chunks[0]
	if c.ID == "" {
		t.Error("chunk should have an ID")
	}
	if c.Text != source {
		t.Error("single chunk should carry the whole file")
	}
	if c.StartLine != 1 || c.EndLine != 2 {
		t.Errorf("lines = %d-%d, want 1-2", c.StartLine, c.EndLine)
	}
	if c.Tokens != EstimateTokens(source) {
		t.Errorf("tokens = %d, want %d", c.Tokens, EstimateTokens(source))
	}
	if len(c.Functions) != 1 || c.Functions[0].Name != "add" {
		t.Errorf("functions = %+v", c.Functions)
	}
	// Dependencies dedupe import sources.
	if len(c.Dependencies) != 2 || c.Dependencies[0] != "typing" || c.Dependencies[1] != "os" {
		t.Errorf("dependencies = %v, want [typing os]", c.Dependencies)
	}
}

func TestChunkSplit(t *testing.T) {
	// 200 lines of ~40 chars is ~2000 tokens, over the 1000 max.
	var sb strings.Builder
	line := strings.Repeat("x", 39)
	for i := 0; i < 200; i++ {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	source := sb.String()

	result := &parse.FileResult{
		Functions: []parse.FunctionInfo{
			{Name: "top", StartLine: 2, EndLine: 5},
			{Name: "bottom", StartLine: 190, EndLine: 195},
		},
		Imports: []parse.ImportInfo{{Source: "fmt"}},
	}

	chunker := NewChunker(DefaultChunkTokens, DefaultOverlapTokens, MaxChunkTokens)
	chunks, err := chunker.Chunk(source, "go", result)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	ids := make(map[string]bool)
	for i, c := range chunks {
		if ids[c.ID] {
			t.Errorf("duplicate chunk ID %s", c.ID)
		}
		ids[c.ID] = true
		if c.Tokens > MaxChunkTokens {
			t.Errorf("chunk %d over budget: %d tokens", i, c.Tokens)
		}
		if c.StartLine < 1 || c.EndLine < c.StartLine {
			t.Errorf("chunk %d has bad line range %d-%d", i, c.StartLine, c.EndLine)
		}
	}

	if chunks[0].StartLine != 1 {
		t.Errorf("first chunk starts at %d, want 1", chunks[0].StartLine)
	}
	last := chunks[len(chunks)-1]
	if last.EndLine != 200 {
		t.Errorf("last chunk ends at %d, want 200", last.EndLine)
	}

	// Consecutive chunks overlap.
	for i := 1; i < len(chunks); i++ {
		if chunks[i].StartLine > chunks[i-1].EndLine {
			t.Errorf("gap between chunk %d (ends %d) and %d (starts %d)",
				i-1, chunks[i-1].EndLine, i, chunks[i].StartLine)
		}
	}

	// Imports and dependencies only on the first piece.
	if len(chunks[0].Imports) != 1 || len(chunks[0].Dependencies) != 1 {
		t.Errorf("first chunk imports = %d deps = %d, want 1 and 1",
			len(chunks[0].Imports), len(chunks[0].Dependencies))
	}
	if len(chunks[1].Imports) != 0 {
		t.Error("later chunks should not repeat imports")
	}

	// Symbols land on the piece containing their start line.
	foundTop, foundBottom := false, false
	for _, c := range chunks {
		for _, fn := range c.Functions {
			switch fn.Name {
			case "top":
				foundTop = true
				if fn.StartLine < c.StartLine || fn.StartLine > c.EndLine {
					t.Errorf("top on chunk %d-%d outside its range", c.StartLine, c.EndLine)
				}
			case "bottom":
				foundBottom = true
			}
		}
	}
	if !foundTop || !foundBottom {
		t.Errorf("symbols lost in split: top=%v bottom=%v", foundTop, foundBottom)
	}
}

func TestChunkLineNumbers(t *testing.T) {
	cases := []struct {
		source  string
		endLine int
	}{
		{"line one\nline two\n", 2}, // trailing newline does not open a line
		{"line one\nline two", 2},
		{"only line", 1},
	}
	chunker := NewChunker(0, 0, 0)
	for _, tc := range cases {
		chunks, err := chunker.Chunk(tc.source, "python", &parse.FileResult{})
		if err != nil {
			t.Fatalf("Chunk failed: %v", err)
		}
		if chunks[0].EndLine != tc.endLine {
			t.Errorf("EndLine for %q = %d, want %d", tc.source, chunks[0].EndLine, tc.endLine)
		}
	}
}

func TestChunkTooLarge(t *testing.T) {
	// A single line that cannot be split below the budget.
	source := strings.Repeat("x", 5000) + "\n" + strings.Repeat("y", 5000)

	chunker := NewChunker(DefaultChunkTokens, DefaultOverlapTokens, MaxChunkTokens)
	_, err := chunker.Chunk(source, "python", &parse.FileResult{})
	if err == nil {
		t.Fatal("expected error for oversized line")
	}
	var tooLarge *TooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("error = %T, want *TooLargeError", err)
	}
	if tooLarge.Max != MaxChunkTokens {
		t.Errorf("Max = %d, want %d", tooLarge.Max, MaxChunkTokens)
	}
}

func TestNewChunkerDefaults(t *testing.T) {
	c := NewChunker(0, -1, 0)
	if c.chunkTokens != DefaultChunkTokens {
		t.Errorf("chunkTokens = %d, want %d", c.chunkTokens, DefaultChunkTokens)
	}
	if c.overlapTokens != DefaultOverlapTokens {
		t.Errorf("overlapTokens = %d, want %d", c.overlapTokens, DefaultOverlapTokens)
	}
	if c.maxTokens != MaxChunkTokens {
		t.Errorf("maxTokens = %d, want %d", c.maxTokens, MaxChunkTokens)
	}
}

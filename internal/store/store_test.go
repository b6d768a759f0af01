package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prism/internal/chunk"
	"prism/internal/parse"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleChunks() []chunk.CodeChunk {
	return []chunk.CodeChunk{
		{
			ID:        "chunk-1",
			Text:      "def add(a, b):\n    return a + b\n",
			StartLine: 1,
			EndLine:   3,
			Tokens:    8,
			Language:  "python",
			Functions: []parse.FunctionInfo{
				{Name: "add", StartLine: 1, EndLine: 2, IsExported: true},
			},
			Classes: []parse.ClassInfo{
				{
					Name:      "Person",
					StartLine: 5,
					EndLine:   9,
					Methods: []parse.FunctionInfo{
						{Name: "greet", StartLine: 7, EndLine: 8, IsExported: true},
					},
				},
			},
		},
	}
}

func TestSaveAndHash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	hash, err := s.FileHash(ctx, "src/main.py")
	require.NoError(t, err)
	assert.Empty(t, hash, "unknown file should have no hash")

	rec := FileRecord{Path: "src/main.py", Language: "python", Hash: "abc123"}
	require.NoError(t, s.SaveFile(ctx, rec, sampleChunks()))

	hash, err = s.FileHash(ctx, "src/main.py")
	require.NoError(t, err)
	assert.Equal(t, "abc123", hash)

	// Re-saving replaces, not duplicates.
	rec.Hash = "def456"
	require.NoError(t, s.SaveFile(ctx, rec, sampleChunks()))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Files)
	assert.Equal(t, 1, stats.Chunks)
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := FileRecord{Path: "src/main.py", Language: "python", Hash: "abc"}
	require.NoError(t, s.SaveFile(ctx, rec, sampleChunks()))

	hits, err := s.Search(ctx, "return a", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "src/main.py", hits[0].Path)
	assert.Equal(t, "python", hits[0].Language)
	assert.Equal(t, "return a + b", hits[0].Snippet)

	hits, err = s.Search(ctx, "no such text", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchLiteralWildcards(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveFile(ctx,
		FileRecord{Path: "a.py", Language: "python", Hash: "1"},
		[]chunk.CodeChunk{{
			ID: "c1", Text: "total_count = 1\nhalf = 50%\n",
			StartLine: 1, EndLine: 2, Tokens: 6, Language: "python",
		}}))
	require.NoError(t, s.SaveFile(ctx,
		FileRecord{Path: "b.py", Language: "python", Hash: "2"},
		[]chunk.CodeChunk{{
			ID: "c2", Text: "totalXcount = 1\nhalf = 50 percent\n",
			StartLine: 1, EndLine: 2, Tokens: 6, Language: "python",
		}}))

	// Underscore must not act as a single-character wildcard.
	hits, err := s.Search(ctx, "total_count", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a.py", hits[0].Path)

	// Percent must not act as a multi-character wildcard.
	hits, err = s.Search(ctx, "50%", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a.py", hits[0].Path)
}

func TestDeleteFile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := FileRecord{Path: "src/main.py", Language: "python", Hash: "abc"}
	require.NoError(t, s.SaveFile(ctx, rec, sampleChunks()))
	require.NoError(t, s.DeleteFile(ctx, "src/main.py"))

	hash, err := s.FileHash(ctx, "src/main.py")
	require.NoError(t, err)
	assert.Empty(t, hash)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Files)
	assert.Zero(t, stats.Chunks)
	assert.Zero(t, stats.Symbols)
}

func TestChunksListing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveFile(ctx,
		FileRecord{Path: "b.py", Language: "python", Hash: "1"},
		[]chunk.CodeChunk{{ID: "c2", Text: "x", StartLine: 1, EndLine: 1, Tokens: 1, Language: "python"}}))
	require.NoError(t, s.SaveFile(ctx,
		FileRecord{Path: "a.go", Language: "go", Hash: "2"},
		[]chunk.CodeChunk{{ID: "c1", Text: "y", StartLine: 1, EndLine: 1, Tokens: 1, Language: "go"}}))

	chunks, err := s.Chunks(ctx, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	// Ordered by file path.
	assert.Equal(t, "a.go", chunks[0].Path)
	assert.Equal(t, "b.py", chunks[1].Path)
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveFile(ctx,
		FileRecord{Path: "src/main.py", Language: "python", Hash: "a"}, sampleChunks()))
	require.NoError(t, s.SaveFile(ctx,
		FileRecord{Path: "pkg/lib.go", Language: "go", Hash: "b"},
		[]chunk.CodeChunk{{
			ID: "go-1", Text: "func New() {}", StartLine: 1, EndLine: 1,
			Tokens: 3, Language: "go",
			Functions: []parse.FunctionInfo{{Name: "New", StartLine: 1, EndLine: 1, IsExported: true}},
		}}))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 2, stats.Chunks)
	// add, Person, Person.greet, New
	assert.Equal(t, 4, stats.Symbols)

	py := stats.ByLanguage["python"]
	assert.Equal(t, 1, py.Files)
	assert.Equal(t, 1, py.Chunks)
	assert.Equal(t, 3, py.Symbols)

	goStats := stats.ByLanguage["go"]
	assert.Equal(t, 1, goStats.Files)
	assert.Equal(t, 1, goStats.Symbols)
}

// Package index orchestrates the prism pipeline: walk a workspace, parse
// supported files, chunk them, and persist the result to the store.
package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"prism/internal/chunk"
	"prism/internal/config"
	"prism/internal/logging"
	"prism/internal/parse"
	"prism/internal/store"
)

// Hidden directories that are still worth indexing.
var hiddenAllowlist = map[string]bool{
	".github":   true,
	".vscode":   true,
	".circleci": true,
	".config":   true,
}

// Indexer scans a workspace and keeps the store in sync with it.
type Indexer struct {
	workspace string
	cfg       *config.Config
	store     *store.Store
	chunker   *chunk.Chunker
}

// Result summarizes one workspace scan.
type Result struct {
	FilesIndexed int
	FilesSkipped int // unchanged since last scan
	Chunks       int
	Failed       []string
}

// New creates an Indexer for the workspace.
func New(workspace string, cfg *config.Config, st *store.Store) *Indexer {
	return &Indexer{
		workspace: workspace,
		cfg:       cfg,
		store:     st,
		chunker: chunk.NewChunker(
			cfg.Indexer.ChunkTokens,
			cfg.Indexer.OverlapTokens,
			cfg.Indexer.MaxChunkTokens,
		),
	}
}

// IndexWorkspace walks the workspace and indexes every supported file
// whose content changed since the last scan. Files are parsed
// concurrently; a failure on one file does not abort the scan.
func (ix *Indexer) IndexWorkspace(ctx context.Context) (*Result, error) {
	timer := logging.StartTimer(logging.CategoryIndex, "workspace scan")
	defer timer.Stop()

	files, err := ix.collectFiles()
	if err != nil {
		return nil, fmt.Errorf("workspace walk failed: %w", err)
	}
	logging.Index("scanning %d files under %s", len(files), ix.workspace)

	var (
		mu     sync.Mutex
		result Result
	)

	g, gctx := errgroup.WithContext(ctx)
	limit := ix.cfg.Indexer.Concurrency
	if limit < 1 {
		// SetLimit(0) would make every Go call block forever.
		limit = 1
	}
	g.SetLimit(limit)

	for _, path := range files {
		g.Go(func() error {
			indexed, chunks, err := ix.indexOne(gctx, path)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				if errors.Is(err, context.Canceled) {
					return err
				}
				logging.IndexError("failed to index %s: %v", path, err)
				result.Failed = append(result.Failed, path)
			case indexed:
				result.FilesIndexed++
				result.Chunks += chunks
			default:
				result.FilesSkipped++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	logging.Index("scan done: %d indexed, %d unchanged, %d failed",
		result.FilesIndexed, result.FilesSkipped, len(result.Failed))
	return &result, nil
}

// IndexFile indexes one file regardless of its stored hash.
func (ix *Indexer) IndexFile(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ix.indexContent(ctx, path, content)
}

// indexOne reads a file and indexes it unless the stored hash matches.
func (ix *Indexer) indexOne(ctx context.Context, path string) (indexed bool, chunks int, err error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return false, 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	hash := contentHash(content)
	stored, err := ix.store.FileHash(ctx, ix.relPath(path))
	if err != nil {
		return false, 0, err
	}
	if stored == hash {
		return false, 0, nil
	}

	n, err := ix.index(ctx, path, content, hash)
	if err != nil {
		return false, 0, err
	}
	return true, n, nil
}

func (ix *Indexer) indexContent(ctx context.Context, path string, content []byte) error {
	_, err := ix.index(ctx, path, content, contentHash(content))
	return err
}

func (ix *Indexer) index(ctx context.Context, path string, content []byte, hash string) (int, error) {
	lang, err := parse.LanguageForFile(path)
	if err != nil {
		return 0, err
	}

	// sitter parsers are not concurrency-safe; one per call.
	parser, err := parse.NewParser(lang)
	if err != nil {
		return 0, err
	}
	defer parser.Close()

	result, err := parser.Parse(ctx, content)
	if err != nil {
		return 0, err
	}
	if result.HasErrors {
		logging.Index("%s has %d syntax errors; indexing anyway", path, len(result.ErrorNodes))
	}

	chunks, err := ix.chunker.Chunk(string(content), string(lang), result)
	if err != nil {
		return 0, fmt.Errorf("failed to chunk %s: %w", path, err)
	}

	rec := store.FileRecord{
		Path:     ix.relPath(path),
		Language: string(lang),
		Hash:     hash,
	}
	if err := ix.store.SaveFile(ctx, rec, chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// Remove drops a file from the index.
func (ix *Indexer) Remove(ctx context.Context, path string) error {
	return ix.store.DeleteFile(ctx, ix.relPath(path))
}

// Supported reports whether the path has a registered language.
func (ix *Indexer) Supported(path string) bool {
	_, err := parse.LanguageForFile(path)
	return err == nil
}

// Workspace returns the indexer's workspace root.
func (ix *Indexer) Workspace() string {
	return ix.workspace
}

// collectFiles walks the workspace collecting supported file paths.
func (ix *Indexer) collectFiles() ([]string, error) {
	var files []string
	err := filepath.Walk(ix.workspace, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if ix.skipDir(info.Name(), path) {
				return filepath.SkipDir
			}
			return nil
		}
		if ix.Supported(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// skipDir reports whether a directory should be excluded from the scan.
func (ix *Indexer) skipDir(name, path string) bool {
	if path == ix.workspace {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return !hiddenAllowlist[name]
	}
	for _, ignored := range ix.cfg.Indexer.IgnoreDirs {
		if name == ignored {
			return true
		}
	}
	return false
}

// relPath returns the workspace-relative path used as the store key.
func (ix *Indexer) relPath(path string) string {
	rel, err := filepath.Rel(ix.workspace, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

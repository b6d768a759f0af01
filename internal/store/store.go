// Package store persists the code index to SQLite. One row per file, per
// chunk, and per extracted symbol; search is keyword-based over chunk
// text.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"prism/internal/chunk"
	"prism/internal/logging"
	"prism/internal/parse"
)

// Store is the SQLite-backed code index.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// FileRecord identifies one indexed file.
type FileRecord struct {
	Path      string
	Language  string
	Hash      string
	IndexedAt time.Time
}

// SearchHit is one chunk matching a search query.
type SearchHit struct {
	ChunkID   string
	Path      string
	Language  string
	StartLine int
	EndLine   int
	Snippet   string
}

// StoredChunk is a chunk as read back from the index.
type StoredChunk struct {
	ID        string
	Path      string
	Language  string
	StartLine int
	EndLine   int
	Tokens    int
	Text      string
}

// LanguageStats counts index contents for one language.
type LanguageStats struct {
	Files   int
	Chunks  int
	Symbols int
}

// Stats summarizes the whole index.
type Stats struct {
	Files      int
	Chunks     int
	Symbols    int
	ByLanguage map[string]LanguageStats
}

// New initializes the SQLite database at the given path.
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logging.Store("opened index at %s", path)
	return s, nil
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		path TEXT PRIMARY KEY,
		language TEXT NOT NULL,
		hash TEXT NOT NULL,
		indexed_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		file_path TEXT NOT NULL REFERENCES files(path) ON DELETE CASCADE,
		start_line INTEGER NOT NULL,
		end_line INTEGER NOT NULL,
		tokens INTEGER NOT NULL,
		language TEXT NOT NULL,
		text TEXT NOT NULL,
		symbols TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_file ON chunks(file_path);
	CREATE INDEX IF NOT EXISTS idx_chunks_language ON chunks(language);

	CREATE TABLE IF NOT EXISTS symbols (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		file_path TEXT NOT NULL REFERENCES files(path) ON DELETE CASCADE,
		start_line INTEGER NOT NULL,
		end_line INTEGER NOT NULL,
		exported INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
	CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file_path);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := s.db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// FileHash returns the stored content hash for a path, or "" if the file
// is not indexed.
func (s *Store) FileHash(ctx context.Context, path string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT hash FROM files WHERE path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query file hash: %w", err)
	}
	return hash, nil
}

// SaveFile replaces the indexed content of one file atomically.
func (s *Store) SaveFile(ctx context.Context, rec FileRecord, chunks []chunk.CodeChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE file_path = ?`, rec.Path); err != nil {
		return fmt.Errorf("failed to clear chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM symbols WHERE file_path = ?`, rec.Path); err != nil {
		return fmt.Errorf("failed to clear symbols: %w", err)
	}

	indexedAt := rec.IndexedAt
	if indexedAt.IsZero() {
		indexedAt = time.Now()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO files (path, language, hash, indexed_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET language = excluded.language,
			hash = excluded.hash, indexed_at = excluded.indexed_at`,
		rec.Path, rec.Language, rec.Hash, indexedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert file: %w", err)
	}

	for _, c := range chunks {
		symbols, err := json.Marshal(struct {
			Functions []parse.FunctionInfo `json:"functions"`
			Classes   []parse.ClassInfo    `json:"classes"`
		}{c.Functions, c.Classes})
		if err != nil {
			return fmt.Errorf("failed to encode symbols: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO chunks (id, file_path, start_line, end_line, tokens, language, text, symbols)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, rec.Path, c.StartLine, c.EndLine, c.Tokens, c.Language, c.Text, string(symbols))
		if err != nil {
			return fmt.Errorf("failed to insert chunk: %w", err)
		}

		if err := insertSymbols(ctx, tx, rec.Path, c); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	logging.StoreDebug("saved %s: %d chunks", rec.Path, len(chunks))
	return nil
}

func insertSymbols(ctx context.Context, tx *sql.Tx, path string, c chunk.CodeChunk) error {
	insert := func(name, kind string, startLine, endLine int, exported bool) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO symbols (name, kind, file_path, start_line, end_line, exported)
			VALUES (?, ?, ?, ?, ?, ?)`,
			name, kind, path, startLine, endLine, exported)
		if err != nil {
			return fmt.Errorf("failed to insert symbol %s: %w", name, err)
		}
		return nil
	}

	for _, fn := range c.Functions {
		if err := insert(fn.Name, "function", fn.StartLine, fn.EndLine, fn.IsExported); err != nil {
			return err
		}
	}
	for _, cl := range c.Classes {
		if err := insert(cl.Name, "class", cl.StartLine, cl.EndLine, false); err != nil {
			return err
		}
		for _, m := range cl.Methods {
			if err := insert(cl.Name+"."+m.Name, "method", m.StartLine, m.EndLine, m.IsExported); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeleteFile removes a file and its chunks and symbols from the index.
func (s *Store) DeleteFile(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM chunks WHERE file_path = ?`,
		`DELETE FROM symbols WHERE file_path = ?`,
		`DELETE FROM files WHERE path = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, path); err != nil {
			return fmt.Errorf("failed to delete %s: %w", path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	logging.StoreDebug("deleted %s from index", path)
	return nil
}

// Search returns chunks whose text contains the query, most recently
// indexed files first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.file_path, c.language, c.start_line, c.end_line, c.text
		FROM chunks c JOIN files f ON f.path = c.file_path
		WHERE c.text LIKE ? ESCAPE '\'
		ORDER BY f.indexed_at DESC
		LIMIT ?`, "%"+escapeLike(query)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		var text string
		if err := rows.Scan(&h.ChunkID, &h.Path, &h.Language, &h.StartLine, &h.EndLine, &text); err != nil {
			return nil, fmt.Errorf("search scan failed: %w", err)
		}
		h.Snippet = snippet(text, query)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// escapeLike neutralizes LIKE wildcards so queries match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// snippet returns the first line of text containing the query.
func snippet(text, query string) string {
	lower := strings.ToLower(query)
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), lower) {
			return strings.TrimSpace(line)
		}
	}
	if len(lines) > 0 {
		return strings.TrimSpace(lines[0])
	}
	return ""
}

// Chunks returns stored chunks for browsing, ordered by file then line.
func (s *Store) Chunks(ctx context.Context, limit int) ([]StoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_path, language, start_line, end_line, tokens, text
		FROM chunks ORDER BY file_path, start_line LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("chunk listing failed: %w", err)
	}
	defer rows.Close()

	var chunks []StoredChunk
	for rows.Next() {
		var c StoredChunk
		if err := rows.Scan(&c.ID, &c.Path, &c.Language, &c.StartLine, &c.EndLine, &c.Tokens, &c.Text); err != nil {
			return nil, fmt.Errorf("chunk scan failed: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// Stats summarizes the index contents.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{ByLanguage: make(map[string]LanguageStats)}

	rows, err := s.db.QueryContext(ctx, `SELECT language, COUNT(*) FROM files GROUP BY language`)
	if err != nil {
		return nil, fmt.Errorf("stats query failed: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var lang string
		var n int
		if err := rows.Scan(&lang, &n); err != nil {
			return nil, err
		}
		ls := stats.ByLanguage[lang]
		ls.Files = n
		stats.ByLanguage[lang] = ls
		stats.Files += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	chunkRows, err := s.db.QueryContext(ctx, `SELECT language, COUNT(*) FROM chunks GROUP BY language`)
	if err != nil {
		return nil, fmt.Errorf("stats query failed: %w", err)
	}
	defer chunkRows.Close()
	for chunkRows.Next() {
		var lang string
		var n int
		if err := chunkRows.Scan(&lang, &n); err != nil {
			return nil, err
		}
		ls := stats.ByLanguage[lang]
		ls.Chunks = n
		stats.ByLanguage[lang] = ls
		stats.Chunks += n
	}
	if err := chunkRows.Err(); err != nil {
		return nil, err
	}

	symRows, err := s.db.QueryContext(ctx, `
		SELECT f.language, COUNT(*) FROM symbols s JOIN files f ON f.path = s.file_path
		GROUP BY f.language`)
	if err != nil {
		return nil, fmt.Errorf("stats query failed: %w", err)
	}
	defer symRows.Close()
	for symRows.Next() {
		var lang string
		var n int
		if err := symRows.Scan(&lang, &n); err != nil {
			return nil, err
		}
		ls := stats.ByLanguage[lang]
		ls.Symbols = n
		stats.ByLanguage[lang] = ls
		stats.Symbols += n
	}
	return stats, symRows.Err()
}

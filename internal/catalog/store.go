// Package catalog implements the local catalog store backing similarity
// search: business scenarios with category tags, catalog views, per-view
// field content blocks, and the pre-approved custom-field table. Records are
// embedded on write; searches embed the query and rank by cosine similarity.
//
// Storage is SQLite. When the sqlite-vec extension is available the ranking
// runs in SQL via vec_distance_cosine; otherwise embeddings are scanned and
// scored in Go.
package catalog

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	"cdsmatch/internal/embedding"
	"cdsmatch/internal/logging"

	_ "modernc.org/sqlite"
)

// driverName is overridden by the sqlite_vec build variant.
var driverName = "sqlite"

// Store is the catalog database handle. Safe for concurrent readers; the
// matching pipeline only reads.
type Store struct {
	db     *sql.DB
	engine embedding.Engine
	lang   string
	hasVec bool
}

// Open opens (creating if necessary) the catalog database at path. lang
// selects the language of the field content blocks returned by FieldContent.
func Open(path string, engine embedding.Engine, lang string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog db not reachable: %w", err)
	}

	s := &Store{db: db, engine: engine, lang: lang}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	s.hasVec = s.detectVec()
	if s.hasVec {
		logging.L().Debug("catalog: sqlite-vec available, ranking in SQL")
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scenarios (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			scenario TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			view_category TEXT NOT NULL,
			embedding BLOB
		)`,
		`CREATE TABLE IF NOT EXISTS views (
			name TEXT PRIMARY KEY,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			active INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE INDEX IF NOT EXISTS idx_views_category ON views(category)`,
		`CREATE TABLE IF NOT EXISTS view_fields (
			view_name TEXT NOT NULL,
			langu TEXT NOT NULL,
			content TEXT NOT NULL,
			PRIMARY KEY (view_name, langu)
		)`,
		`CREATE TABLE IF NOT EXISTS custom_fields (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			table_name TEXT NOT NULL,
			field_name TEXT NOT NULL,
			field_desc TEXT NOT NULL DEFAULT '',
			is_key INTEGER NOT NULL DEFAULT 0,
			obligatory TEXT NOT NULL DEFAULT '',
			data_type TEXT NOT NULL DEFAULT '',
			length_total TEXT NOT NULL DEFAULT '',
			length_dec TEXT NOT NULL DEFAULT '',
			source_desc TEXT NOT NULL DEFAULT '',
			active INTEGER NOT NULL DEFAULT 1,
			embedding BLOB
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("catalog migration: %w", err)
		}
	}
	return nil
}

// detectVec probes for the sqlite-vec extension by creating a throwaway
// virtual table.
func (s *Store) detectVec() bool {
	if _, err := s.db.Exec("CREATE VIRTUAL TABLE IF NOT EXISTS vec_probe USING vec0(embedding float[4])"); err != nil {
		return false
	}
	_, _ = s.db.Exec("DROP TABLE IF EXISTS vec_probe")
	return true
}

func (s *Store) embed(ctx context.Context, text string) ([]byte, error) {
	vec, err := s.engine.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed %q: %w", truncate(text, 40), err)
	}
	return encodeFloat32Blob(vec), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// encodeFloat32Blob serializes a vector as little-endian float32 bytes, the
// layout sqlite-vec expects.
func encodeFloat32Blob(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeFloat32Blob is the inverse of encodeFloat32Blob.
func decodeFloat32Blob(blob []byte) []float32 {
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec
}

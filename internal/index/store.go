// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index persists chunk embeddings and metadata in SQLite and
// answers nearest-neighbor queries. The Store is the one resource shared
// across concurrent callers: upserts are transactional per source, so a
// query never observes a partially written chunk range.
// Implements: prd002-index (R1-R5);
//
//	docs/ARCHITECTURE § Vector Index.
package index

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/book-engine/pkg/types"
)

const dbFile = "book.db"

// Store manages the vector index SQLite database. Construct once at
// process start and pass by reference; tests substitute a store backed by
// a temporary directory.
type Store struct {
	db         *sql.DB
	indexDir   string
	maxResults int
}

// NewStore opens or creates the index database at indexDir/book.db,
// creating the schema if it does not exist.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, indexDir: cfg.IndexDir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sources (
			id TEXT PRIMARY KEY,
			title TEXT,
			uri TEXT,
			media_type TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			source_id TEXT NOT NULL REFERENCES sources(id),
			seq INTEGER NOT NULL,
			start_off INTEGER NOT NULL,
			end_off INTEGER NOT NULL,
			page INTEGER,
			cite_key TEXT,
			text TEXT NOT NULL,
			embedding BLOB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_source_id ON chunks(source_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// UpsertSource replaces the chunk range for one source in a single
// transaction: old chunks are deleted, the source record is upserted, and
// the new chunks inserted. Upserts for different sources interleave
// safely; SQLite serializes the writes.
func (s *Store) UpsertSource(ctx context.Context, source types.Source, chunks []types.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE source_id = ?`, source.ID); err != nil {
		return fmt.Errorf("deleting old chunks: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sources (id, title, uri, media_type) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, uri=excluded.uri, media_type=excluded.media_type`,
		source.ID, source.Title, source.URI, source.MediaType,
	)
	if err != nil {
		return fmt.Errorf("upserting source: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, source_id, seq, start_off, end_off, page, cite_key, text, embedding)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		_, err := stmt.ExecContext(ctx,
			c.ID, source.ID, c.SequenceIndex, c.StartOffset, c.EndOffset,
			c.Page, c.CiteKey, c.Text, encodeEmbedding(c.Embedding),
		)
		if err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// SourceURI returns the URI stored for sourceID, or "" when no such
// source is indexed. Ingestion uses it to keep slug collisions between
// distinct documents from overwriting each other.
func (s *Store) SourceURI(ctx context.Context, sourceID string) (string, error) {
	var uri string
	err := s.db.QueryRowContext(ctx, `SELECT uri FROM sources WHERE id = ?`, sourceID).Scan(&uri)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("looking up source %s: %w", sourceID, err)
	}
	return uri, nil
}

// Clear removes every chunk and source from the index.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM chunks`, `DELETE FROM sources`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clearing index: %w", err)
		}
	}
	return tx.Commit()
}

// Stats summarizes index contents: total chunk count and per-source counts.
type Stats struct {
	Chunks  int            `json:"chunks" yaml:"chunks"`
	Sources map[string]int `json:"sources" yaml:"sources"`
}

// Stats reports the chunk count per source.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Sources: make(map[string]int)}

	rows, err := s.db.QueryContext(ctx,
		`SELECT source_id, count(*) FROM chunks GROUP BY source_id`)
	if err != nil {
		return Stats{}, fmt.Errorf("querying stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return Stats{}, fmt.Errorf("scanning stats row: %w", err)
		}
		stats.Sources[id] = n
		stats.Chunks += n
	}
	return stats, rows.Err()
}

// encodeEmbedding packs a vector as little-endian float32 bits.
func encodeEmbedding(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// decodeEmbedding unpacks a little-endian float32 vector.
func decodeEmbedding(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec
}

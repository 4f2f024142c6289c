// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/book-engine/pkg/types"
)

// ExportEntry holds one chunk's metadata for export. Embeddings are
// omitted; the export is for human inspection and citation lookup.
type ExportEntry struct {
	ID       string `json:"id" yaml:"id"`
	SourceID string `json:"source_id" yaml:"source_id"`
	Seq      int    `json:"seq" yaml:"seq"`
	Page     int    `json:"page,omitempty" yaml:"page,omitempty"`
	CiteKey  string `json:"cite_key,omitempty" yaml:"cite_key,omitempty"`
	Text     string `json:"text" yaml:"text"`

	SourceTitle string `json:"source_title,omitempty" yaml:"source_title,omitempty"`
	SourceURI   string `json:"source_uri,omitempty" yaml:"source_uri,omitempty"`
}

// ExportYAML writes every chunk's metadata to indexDir/export.yaml.
func (s *Store) ExportYAML(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.source_id, c.seq, c.page, c.cite_key, c.text, s.title, s.uri
		FROM chunks c
		JOIN sources s ON s.id = c.source_id
		ORDER BY c.rowid`)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	defer rows.Close()

	var entries []ExportEntry
	for rows.Next() {
		var e ExportEntry
		if err := rows.Scan(&e.ID, &e.SourceID, &e.Seq, &e.Page, &e.CiteKey,
			&e.Text, &e.SourceTitle, &e.SourceURI); err != nil {
			return fmt.Errorf("scanning export row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(filepath.Join(s.indexDir, "export.yaml"), data, 0o644)
}

// Sources returns every source record in the index, in insertion order.
func (s *Store) Sources(ctx context.Context) ([]types.Source, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, uri, media_type FROM sources ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []types.Source
	for rows.Next() {
		var src types.Source
		if err := rows.Scan(&src.ID, &src.Title, &src.URI, &src.MediaType); err != nil {
			return nil, fmt.Errorf("scanning source row: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

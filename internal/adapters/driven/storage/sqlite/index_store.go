package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/noteward/noteward/internal/core/domain"
	"github.com/noteward/noteward/internal/core/ports/driven"
)

// indexStore implements driven.IndexStore. Entries are keyed by chunk
// ID; vectors are stored as little-endian float32 blobs.
type indexStore struct {
	store *Store
}

var _ driven.IndexStore = (*indexStore)(nil)

const indexColumns = `chunk_id, doc_id, folder, header, level,
	section_id, chunk_type, text, vector`

// SaveEntries replaces the persisted entries for a document.
func (s *indexStore) SaveEntries(ctx context.Context, docID string, entries []driven.IndexEntry) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM index_entries WHERE doc_id = ?", docID); err != nil {
		return fmt.Errorf("clearing document entries: %w", err)
	}

	if err := insertEntries(ctx, tx, entries); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing index entries: %w", err)
	}
	return nil
}

// DeleteEntries removes all persisted entries for a document.
func (s *indexStore) DeleteEntries(ctx context.Context, docID string) error {
	if _, err := s.store.db.ExecContext(ctx,
		"DELETE FROM index_entries WHERE doc_id = ?", docID); err != nil {
		return fmt.Errorf("deleting document entries: %w", err)
	}
	return nil
}

// ReplaceAll atomically replaces the whole persisted index.
func (s *indexStore) ReplaceAll(ctx context.Context, entries []driven.IndexEntry) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM index_entries"); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}

	if err := insertEntries(ctx, tx, entries); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing index: %w", err)
	}
	return nil
}

// LoadAll returns every persisted entry.
func (s *indexStore) LoadAll(ctx context.Context) ([]driven.IndexEntry, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+indexColumns+` FROM index_entries ORDER BY doc_id, section_id, chunk_type`)
	if err != nil {
		return nil, fmt.Errorf("loading index entries: %w", err)
	}
	defer rows.Close()

	var entries []driven.IndexEntry
	for rows.Next() {
		entry, err := scanIndexEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating index entries: %w", err)
	}
	return entries, nil
}

// insertEntries writes entries inside an open transaction.
func insertEntries(ctx context.Context, tx *sql.Tx, entries []driven.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO index_entries (chunk_id, doc_id, folder, header, level,
			section_id, chunk_type, text, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			doc_id = excluded.doc_id,
			folder = excluded.folder,
			header = excluded.header,
			level = excluded.level,
			section_id = excluded.section_id,
			chunk_type = excluded.chunk_type,
			text = excluded.text,
			vector = excluded.vector
	`)
	if err != nil {
		return fmt.Errorf("preparing entry insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		vectorBlob := float32SliceToBytes(e.Vector)
		if _, err := stmt.ExecContext(ctx, e.ChunkID, e.Meta.DocID, e.Meta.Folder,
			e.Meta.Header, e.Meta.Level, e.Meta.SectionID, string(e.Meta.Type),
			e.Text, vectorBlob); err != nil {
			return fmt.Errorf("inserting entry %s: %w", e.ChunkID, err)
		}
	}
	return nil
}

// scanIndexEntry scans a single index entry row.
func scanIndexEntry(rows *sql.Rows) (driven.IndexEntry, error) {
	var e driven.IndexEntry
	var chunkType string
	var vectorBlob []byte

	if err := rows.Scan(&e.ChunkID, &e.Meta.DocID, &e.Meta.Folder, &e.Meta.Header,
		&e.Meta.Level, &e.Meta.SectionID, &chunkType, &e.Text, &vectorBlob); err != nil {
		return driven.IndexEntry{}, fmt.Errorf("scanning index entry: %w", err)
	}

	e.Meta.Type = domain.ChunkType(chunkType)
	e.Vector = bytesToFloat32Slice(vectorBlob)
	return e, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/noteward/noteward/internal/core/domain"
	"github.com/noteward/noteward/internal/core/ports/driven"
)

// digestStore implements driven.DigestStore.
type digestStore struct {
	store *Store
}

var _ driven.DigestStore = (*digestStore)(nil)

// dayFormat keys digests by local calendar day.
const dayFormat = "2006-01-02"

// Save stores a digest record. Saving again for the same day replaces
// the record; a day has at most one digest.
func (s *digestStore) Save(ctx context.Context, digest domain.Digest) error {
	if digest.ID == "" {
		return fmt.Errorf("digest id is empty: %w", domain.ErrInvalidInput)
	}

	idsJSON, err := json.Marshal(digest.PendingTaskIDs)
	if err != nil {
		return fmt.Errorf("marshalling pending task ids: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO digests (id, day, summary, pending_task_ids, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			id = excluded.id,
			summary = excluded.summary,
			pending_task_ids = excluded.pending_task_ids,
			created_at = excluded.created_at
	`, digest.ID, digest.Date.Format(dayFormat), digest.SummaryText,
		string(idsJSON), digest.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving digest: %w", err)
	}
	return nil
}

// Latest returns the most recent digest.
func (s *digestStore) Latest(ctx context.Context) (*domain.Digest, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, day, summary, pending_task_ids, created_at
		FROM digests ORDER BY day DESC LIMIT 1
	`)
	return scanDigest(row)
}

// Get retrieves the digest for a calendar day (YYYY-MM-DD).
func (s *digestStore) Get(ctx context.Context, day string) (*domain.Digest, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, day, summary, pending_task_ids, created_at
		FROM digests WHERE day = ?
	`, day)
	return scanDigest(row)
}

// List returns the most recent digests, newest first.
func (s *digestStore) List(ctx context.Context, limit int) ([]domain.Digest, error) {
	if limit <= 0 {
		limit = 30
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, day, summary, pending_task_ids, created_at
		FROM digests ORDER BY day DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing digests: %w", err)
	}
	defer rows.Close()

	var digests []domain.Digest
	for rows.Next() {
		var d domain.Digest
		var day, idsJSON string
		if err := rows.Scan(&d.ID, &day, &d.SummaryText, &idsJSON, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning digest: %w", err)
		}
		if d.Date, err = time.ParseInLocation(dayFormat, day, time.Local); err != nil {
			return nil, fmt.Errorf("parsing digest day: %w", err)
		}
		if err := json.Unmarshal([]byte(idsJSON), &d.PendingTaskIDs); err != nil {
			return nil, fmt.Errorf("unmarshalling pending task ids: %w", err)
		}
		digests = append(digests, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating digests: %w", err)
	}
	return digests, nil
}

// scanDigest scans a single digest row.
func scanDigest(row *sql.Row) (*domain.Digest, error) {
	var d domain.Digest
	var day, idsJSON string

	if err := row.Scan(&d.ID, &day, &d.SummaryText, &idsJSON, &d.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning digest: %w", err)
	}

	var err error
	if d.Date, err = time.ParseInLocation(dayFormat, day, time.Local); err != nil {
		return nil, fmt.Errorf("parsing digest day: %w", err)
	}
	if err := json.Unmarshal([]byte(idsJSON), &d.PendingTaskIDs); err != nil {
		return nil, fmt.Errorf("unmarshalling pending task ids: %w", err)
	}

	return &d, nil
}

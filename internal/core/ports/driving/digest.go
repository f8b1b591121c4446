package driving

import (
	"context"

	"github.com/noteward/noteward/internal/core/domain"
)

// DigestService produces and serves daily digests.
type DigestService interface {
	// RunOnce produces a digest for today immediately, regardless of
	// the schedule. The record supersedes any earlier digest for the
	// same day.
	RunOnce(ctx context.Context) (*domain.Digest, error)

	// Latest returns the most recent digest.
	Latest(ctx context.Context) (*domain.Digest, error)

	// Start runs the scheduler loop until the context is cancelled.
	// A run missed while the process was down is made up once at
	// startup when the newest digest predates the current day.
	Start(ctx context.Context) error

	// Stop shuts the scheduler down and waits for a running job.
	Stop() error
}

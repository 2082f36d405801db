// Package staging holds the single pending transaction batch per owner
// between the extraction and confirmation phases of an import.
package staging

import (
	"context"
	"errors"

	"github.com/insightdelivered/statement-importer/internal/models"
)

// ErrNotStaged is returned by Get when no batch is staged for the owner.
var ErrNotStaged = errors.New("no batch staged for owner")

// Store keeps at most one pending batch per owner with last-write-wins
// replace semantics. Concurrent Puts for the same owner race; the later
// write silently replaces the earlier batch (single pending import per
// user — same-owner use across two sessions is unsupported). Different
// owners never share state.
type Store interface {
	// Put atomically replaces any existing batch for owner. No merge.
	Put(ctx context.Context, owner string, items []models.TransactionCandidate) error
	// Get returns the pending batch for owner, or ErrNotStaged.
	Get(ctx context.Context, owner string) (*models.PendingBatch, error)
	// Clear removes the pending batch for owner. Idempotent.
	Clear(ctx context.Context, owner string) error
}

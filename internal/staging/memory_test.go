package staging

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-importer/internal/models"
)

func candidate(id, title string) models.TransactionCandidate {
	return models.TransactionCandidate{
		ID:            id,
		Owner:         "alice",
		Title:         title,
		Amount:        decimal.RequireFromString("100.00"),
		Category:      "Food",
		Kind:          models.KindExpense,
		Date:          "2024-03-01",
		PaymentMethod: models.PaymentMethodUnspecified,
	}
}

func TestMemoryStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	items := []models.TransactionCandidate{candidate("1", "Shop A"), candidate("2", "Shop B")}
	require.NoError(t, s.Put(ctx, "alice", items))

	batch, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", batch.Owner)
	require.Len(t, batch.Items, 2)
	assert.Equal(t, "Shop A", batch.Items[0].Title)
	assert.False(t, batch.StagedAt.IsZero())
}

func TestMemoryStore_GetAbsent(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotStaged)
}

func TestMemoryStore_PutReplaces(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "alice", []models.TransactionCandidate{candidate("1", "Old")}))
	require.NoError(t, s.Put(ctx, "alice", []models.TransactionCandidate{candidate("2", "New")}))

	batch, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	// Last write wins: never a merge of the two batches.
	require.Len(t, batch.Items, 1)
	assert.Equal(t, "New", batch.Items[0].Title)
}

func TestMemoryStore_ClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "alice", []models.TransactionCandidate{candidate("1", "Shop")}))
	require.NoError(t, s.Clear(ctx, "alice"))
	require.NoError(t, s.Clear(ctx, "alice"))

	_, err := s.Get(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotStaged)
}

func TestMemoryStore_OwnersAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "alice", []models.TransactionCandidate{candidate("1", "Alice Shop")}))
	require.NoError(t, s.Put(ctx, "bob", []models.TransactionCandidate{candidate("2", "Bob Shop")}))
	require.NoError(t, s.Clear(ctx, "bob"))

	batch, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, batch.Items, 1)
	assert.Equal(t, "Alice Shop", batch.Items[0].Title)
}

func TestMemoryStore_CopiesOnPutAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	items := []models.TransactionCandidate{candidate("1", "Original")}
	require.NoError(t, s.Put(ctx, "alice", items))

	// Mutating the caller's slice must not change the staged batch.
	items[0].Title = "Mutated"

	batch, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Original", batch.Items[0].Title)

	// Mutating a returned batch must not change the staged state either.
	batch.Items[0].Title = "Mutated again"
	again, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Original", again.Items[0].Title)
}

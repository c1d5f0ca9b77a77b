package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replysight/server/internal/agent/model"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	ctx := context.Background()

	rs := model.NewRunState("sess-1", "my order is late")
	rs.IterationCount = 2
	require.NoError(t, s.Put(ctx, "sess-1", rs))

	got, err := s.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "my order is late", got.Complaint)
	assert.Equal(t, 2, got.IterationCount)
}

func TestMemoryStoreMissingSession(t *testing.T) {
	s := NewMemoryStore(time.Minute)

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreEvict(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "sess-1", model.NewRunState("sess-1", "c")))
	require.NoError(t, s.Evict(ctx, "sess-1"))

	_, err := s.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Evicting an unknown session is not an error.
	assert.NoError(t, s.Evict(ctx, "sess-1"))
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	s := NewMemoryStore(15 * time.Minute)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base
	s.now = func() time.Time { return current }

	require.NoError(t, s.Put(ctx, "sess-1", model.NewRunState("sess-1", "c")))

	current = base.Add(14 * time.Minute)
	_, err := s.Get(ctx, "sess-1")
	assert.NoError(t, err)

	current = base.Add(16 * time.Minute)
	_, err = s.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreOverwriteRefreshesTTL(t *testing.T) {
	s := NewMemoryStore(10 * time.Minute)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base
	s.now = func() time.Time { return current }

	require.NoError(t, s.Put(ctx, "sess-1", model.NewRunState("sess-1", "c")))

	current = base.Add(8 * time.Minute)
	require.NoError(t, s.Put(ctx, "sess-1", model.NewRunState("sess-1", "c")))

	current = base.Add(15 * time.Minute)
	_, err := s.Get(ctx, "sess-1")
	assert.NoError(t, err, "the second Put restarts the clock")
}

// Package session checkpoints run state so an interrupted orchestration run
// can be resumed by its opaque session identifier. Retention is TTL-bound;
// completed runs are evicted eagerly.
package session

import (
	"context"
	"errors"

	"github.com/replysight/server/internal/agent/model"
)

// ErrNotFound reports a missing or expired checkpoint.
var ErrNotFound = errors.New("session: checkpoint not found")

// Store is the checkpoint contract keyed by opaque session identifiers.
type Store interface {
	Get(ctx context.Context, sessionID string) (*model.RunState, error)
	Put(ctx context.Context, sessionID string, state *model.RunState) error
	Evict(ctx context.Context, sessionID string) error
}

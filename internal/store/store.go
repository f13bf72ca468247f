// Package store persists application snapshots as JSON documents in a local
// key/value area. The store is a mirror of the in-memory state, not a source
// of truth during a session: callers write through on every mutation and read
// only at startup.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
)

// Snapshot keys. Each collection is persisted independently.
const (
	KeyTransactions = "transactions"
	KeyUpcoming     = "upcomingExpenses"
	KeyFixed        = "fixedExpenses"
	KeySettings     = "settings"
)

// ErrNoSnapshot is returned by Load when no value has been saved under a key.
var ErrNoSnapshot = errors.New("no snapshot for key")

// Snapshots is the persistence contract the core depends on: a synchronous,
// process-local map from string keys to JSON documents that survives
// restarts.
type Snapshots interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Close() error
}

// LoadJSON reads and decodes the snapshot under key into out. Missing or
// corrupt data leaves out at its fallback value: the caller's default wins
// and the corruption is logged rather than hidden, at the documented cost of
// losing the unreadable snapshot on the next save.
func LoadJSON[T any](ctx context.Context, s Snapshots, key string, out *T) {
	raw, err := s.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNoSnapshot) {
			slog.WarnContext(ctx, "Snapshot unreadable, starting from default",
				"key", key, "error", err)
		}
		return
	}
	// Decode into a scratch value so a mid-document failure cannot leave out
	// partially populated.
	var decoded T
	if err := json.Unmarshal(raw, &decoded); err != nil {
		slog.WarnContext(ctx, "Snapshot corrupt, starting from default",
			"key", key, "error", err)
		return
	}
	*out = decoded
}

// SaveJSON encodes value and writes it under key.
func SaveJSON(ctx context.Context, s Snapshots, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Save(ctx, key, raw)
}

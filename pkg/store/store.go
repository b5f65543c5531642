// Package store wraps the remote task collection behind four
// operations: subscribe, add, update-completion and delete.
package store

import (
	"context"
	"errors"

	"github.com/AugustoBSimionato/toodo/pkg/task"
)

// Sentinel errors for store operations. Implementations map whatever
// the underlying service returns onto these.
var (
	ErrEmptyText        = errors.New("task text is empty")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNetwork          = errors.New("network unavailable")
	ErrNotFound         = errors.New("task not found")
	ErrInternal         = errors.New("internal store error")
)

// CancelFunc tears down a subscription. It is idempotent; no callbacks
// fire after it returns.
type CancelFunc func()

// Store is the remote task collection.
//
// Subscribe opens a live query for the given owner and completion flag
// and invokes onSnapshot with a full, consistent, newest-first snapshot
// on every change, starting with the current state (possibly empty).
// Callbacks are invoked from an internal goroutine; callers must hand
// them off to their own scheduling before touching shared state.
type Store interface {
	Subscribe(ownerID string, completed bool, onSnapshot func([]task.Task), onError func(error)) CancelFunc
	Add(ctx context.Context, ownerID, text string) error
	SetCompleted(ctx context.Context, id task.ID, completed bool) error
	Remove(ctx context.Context, id task.ID) error
}

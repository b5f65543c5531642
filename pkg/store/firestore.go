package store

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/AugustoBSimionato/toodo/pkg/task"
)

const collection = "tasks"

// Firestore implements Store on top of a Cloud Firestore client.
type Firestore struct {
	client *firestore.Client
	log    *slog.Logger
}

var _ Store = (*Firestore)(nil)

func NewFirestore(client *firestore.Client, log *slog.Logger) *Firestore {
	if log == nil {
		log = slog.Default()
	}
	return &Firestore{client: client, log: log}
}

// Subscribe opens a live query for the owner's tasks with the given
// completion flag. Snapshots are delivered in arrival order from a
// single goroutine; the first one reflects the current state even when
// the result is empty.
func (s *Firestore) Subscribe(ownerID string, completed bool, onSnapshot func([]task.Task), onError func(error)) CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())

	query := s.client.Collection(collection).
		Where("ownerId", "==", ownerID).
		Where("completed", "==", completed).
		OrderBy("createdAt", firestore.Desc)

	go func() {
		it := query.Snapshots(ctx)
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || ctx.Err() != nil {
					return
				}
				s.log.Error("task subscription failed", "owner", ownerID, "completed", completed, "err", err)
				onError(mapError(err))
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.log.Error("task snapshot read failed", "owner", ownerID, "err", err)
				onError(mapError(err))
				return
			}
			if docs == nil {
				// The platform occasionally hands back a nil result.
				// Log and keep the previous snapshot until the cause
				// is characterised.
				s.log.Warn("dropping nil snapshot", "owner", ownerID, "completed", completed)
				continue
			}
			ts := make([]task.Task, 0, len(docs))
			for _, d := range docs {
				var t task.Task
				if err := d.DataTo(&t); err != nil {
					s.log.Warn("skipping malformed task document", "id", d.Ref.ID, "err", err)
					continue
				}
				t.ID = task.ID(d.Ref.ID)
				ts = append(ts, t)
			}
			// The server orders by createdAt only; re-sort for the ID
			// tie-break.
			task.SortNewest(ts)
			if ctx.Err() != nil {
				return
			}
			onSnapshot(ts)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(cancel)
	}
}

// Add inserts a new pending task with a server-generated timestamp. The
// new task is not returned; it arrives through the subscription.
func (s *Firestore) Add(ctx context.Context, ownerID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	_, _, err := s.client.Collection(collection).Add(ctx, map[string]any{
		"text":      text,
		"completed": false,
		"createdAt": firestore.ServerTimestamp,
		"ownerId":   ownerID,
	})
	return mapError(err)
}

// SetCompleted updates only the completed flag of a task.
func (s *Firestore) SetCompleted(ctx context.Context, id task.ID, completed bool) error {
	_, err := s.client.Collection(collection).Doc(string(id)).Update(ctx, []firestore.Update{
		{Path: "completed", Value: completed},
	})
	return mapError(err)
}

// Remove deletes a task document.
func (s *Firestore) Remove(ctx context.Context, id task.ID) error {
	_, err := s.client.Collection(collection).Doc(string(id)).Delete(ctx)
	return mapError(err)
}

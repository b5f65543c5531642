package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AugustoBSimionato/toodo/pkg/task"
)

// Memory is an in-memory Store. It backs the -memory development mode
// and the tests: snapshots are published synchronously from the
// mutating call, so behaviour is deterministic.
type Memory struct {
	mu      sync.Mutex
	now     func() time.Time
	docs    map[task.ID]task.Task
	subs    map[int]*memorySub
	nextSub int
}

type memorySub struct {
	ownerID    string
	completed  bool
	onSnapshot func([]task.Task)
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		now:  time.Now,
		docs: map[task.ID]task.Task{},
		subs: map[int]*memorySub{},
	}
}

// SetClock replaces the timestamp source, for deterministic tests.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) Subscribe(ownerID string, completed bool, onSnapshot func([]task.Task), onError func(error)) CancelFunc {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	sub := &memorySub{ownerID: ownerID, completed: completed, onSnapshot: onSnapshot}
	m.subs[id] = sub
	snap := m.snapshotLocked(sub)
	m.mu.Unlock()

	// First snapshot is delivered on subscription, even when empty.
	onSnapshot(snap)

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

func (m *Memory) Add(ctx context.Context, ownerID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	m.mu.Lock()
	id := task.ID(uuid.NewString())
	m.docs[id] = task.Task{
		ID:        id,
		Text:      text,
		Completed: false,
		CreatedAt: m.now(),
		OwnerID:   ownerID,
	}
	m.publishLocked()
	m.mu.Unlock()
	return nil
}

func (m *Memory) SetCompleted(ctx context.Context, id task.ID, completed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}
	t.Completed = completed
	m.docs[id] = t
	m.publishLocked()
	return nil
}

func (m *Memory) Remove(ctx context.Context, id task.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return ErrNotFound
	}
	delete(m.docs, id)
	m.publishLocked()
	return nil
}

// Get returns a stored task, for tests.
func (m *Memory) Get(id task.ID) (task.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.docs[id]
	return t, ok
}

func (m *Memory) snapshotLocked(sub *memorySub) []task.Task {
	out := []task.Task{}
	for _, t := range m.docs {
		if t.OwnerID == sub.ownerID && t.Completed == sub.completed {
			out = append(out, t)
		}
	}
	task.SortNewest(out)
	return out
}

func (m *Memory) publishLocked() {
	for _, sub := range m.subs {
		sub.onSnapshot(m.snapshotLocked(sub))
	}
}

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/AugustoBSimionato/toodo/pkg/task"
)

func TestMemory_Subscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("first snapshot is delivered even when empty", func(t *testing.T) {
		is := is.New(t)
		m := NewMemory()
		var got [][]task.Task
		cancel := m.Subscribe("u1", false, func(ts []task.Task) { got = append(got, ts) }, nil)
		defer cancel()
		is.Equal(len(got), 1)
		is.Equal(len(got[0]), 0)
	})

	t.Run("only matching owner and flag are visible", func(t *testing.T) {
		is := is.New(t)
		m := NewMemory()
		is.NoErr(m.Add(ctx, "u1", "mine"))
		is.NoErr(m.Add(ctx, "u2", "theirs"))

		var last []task.Task
		cancel := m.Subscribe("u1", false, func(ts []task.Task) { last = ts }, nil)
		defer cancel()
		is.Equal(len(last), 1)
		is.Equal(last[0].Text, "mine")
		is.Equal(last[0].OwnerID, "u1")
		is.Equal(last[0].Completed, false)
	})

	t.Run("snapshots are newest first", func(t *testing.T) {
		is := is.New(t)
		m := NewMemory()
		now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		m.SetClock(func() time.Time { now = now.Add(time.Minute); return now })
		is.NoErr(m.Add(ctx, "u1", "first"))
		is.NoErr(m.Add(ctx, "u1", "second"))

		var last []task.Task
		cancel := m.Subscribe("u1", false, func(ts []task.Task) { last = ts }, nil)
		defer cancel()
		is.Equal(last[0].Text, "second")
		is.Equal(last[1].Text, "first")
	})

	t.Run("cancel stops callbacks and is idempotent", func(t *testing.T) {
		is := is.New(t)
		m := NewMemory()
		calls := 0
		cancel := m.Subscribe("u1", false, func([]task.Task) { calls++ }, nil)
		is.Equal(calls, 1)
		cancel()
		cancel()
		is.NoErr(m.Add(ctx, "u1", "after cancel"))
		is.Equal(calls, 1)
	})
}

func TestMemory_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("trims text", func(t *testing.T) {
		is := is.New(t)
		m := NewMemory()
		var last []task.Task
		cancel := m.Subscribe("u1", false, func(ts []task.Task) { last = ts }, nil)
		defer cancel()
		is.NoErr(m.Add(ctx, "u1", "  hi  "))
		is.Equal(len(last), 1)
		is.Equal(last[0].Text, "hi")
	})

	t.Run("rejects empty text", func(t *testing.T) {
		is := is.New(t)
		m := NewMemory()
		err := m.Add(ctx, "u1", "   ")
		is.True(errors.Is(err, ErrEmptyText))
	})
}

func TestMemory_SetCompleted(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	m := NewMemory()
	is.NoErr(m.Add(ctx, "u1", "move me"))

	var pending, done []task.Task
	cancelPending := m.Subscribe("u1", false, func(ts []task.Task) { pending = ts }, nil)
	defer cancelPending()
	cancelDone := m.Subscribe("u1", true, func(ts []task.Task) { done = ts }, nil)
	defer cancelDone()

	is.Equal(len(pending), 1)
	is.Equal(len(done), 0)

	// completing republishes to both subscriptions
	id := pending[0].ID
	is.NoErr(m.SetCompleted(ctx, id, true))
	is.Equal(len(pending), 0)
	is.Equal(len(done), 1)
	is.Equal(done[0].ID, id)
	is.True(done[0].Completed)

	// and back
	is.NoErr(m.SetCompleted(ctx, id, false))
	is.Equal(len(pending), 1)
	is.Equal(len(done), 0)
	is.Equal(pending[0].Completed, false)

	t.Run("unknown id", func(t *testing.T) {
		is := is.New(t)
		is.True(errors.Is(m.SetCompleted(ctx, "missing", true), ErrNotFound))
	})
}

func TestMemory_Remove(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	m := NewMemory()
	is.NoErr(m.Add(ctx, "u1", "bye"))

	var last []task.Task
	cancel := m.Subscribe("u1", false, func(ts []task.Task) { last = ts }, nil)
	defer cancel()
	id := last[0].ID

	is.NoErr(m.Remove(ctx, id))
	is.Equal(len(last), 0)

	// second delete surfaces ErrNotFound; callers treat it as success
	is.True(errors.Is(m.Remove(ctx, id), ErrNotFound))
}

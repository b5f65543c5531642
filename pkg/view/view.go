// Package view holds the per-screen task list state: the live snapshot
// from the store, the free-text query, and the derived visible list.
package view

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/AugustoBSimionato/toodo/pkg/auth"
	"github.com/AugustoBSimionato/toodo/pkg/store"
	"github.com/AugustoBSimionato/toodo/pkg/task"
)

// Mode is the input mode of a screen.
type Mode int

const (
	// ModeCompose shows the new-task input (pending screen).
	ModeCompose Mode = iota
	// ModeList shows no input row (done screen).
	ModeList
	// ModeSearch shows the query input.
	ModeSearch
)

// Phase is the subscription lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubscribing
	PhaseLive
	PhaseError
)

// Event is a callback from the store or the session, handed off to the
// owning goroutine through Events. Pass it back via Handle.
type Event interface{ isEvent() }

type authEvent struct{ principal *auth.Principal }
type snapshotEvent struct {
	gen   int
	tasks []task.Task
}
type subErrorEvent struct {
	gen int
	err error
}
type createDoneEvent struct{ err error }
type mutationDoneEvent struct{ err error }

func (authEvent) isEvent()         {}
func (snapshotEvent) isEvent()     {}
func (subErrorEvent) isEvent()     {}
func (createDoneEvent) isEvent()   {}
func (mutationDoneEvent) isEvent() {}

// Model is the state machine behind one task screen. It is not safe
// for concurrent use: all methods must be called from one goroutine,
// which also drains Events and feeds each event to Handle. Store and
// session callbacks never mutate state directly; they only enqueue.
type Model struct {
	completed bool
	store     store.Store
	session   auth.Session
	log       *slog.Logger

	events     chan Event
	gen        int
	owner      string
	phase      Phase
	cancelSub  store.CancelFunc
	cancelAuth auth.CancelFunc

	all      []task.Task
	query    string
	visible  []task.Task
	mode     Mode
	inFlight bool
	err      error
}

// New builds a view-model for one completion flag: false for the
// pending screen, true for the done screen.
func New(completed bool, st store.Store, ses auth.Session, log *slog.Logger) *Model {
	if log == nil {
		log = slog.Default()
	}
	mode := ModeCompose
	if completed {
		mode = ModeList
	}
	return &Model{
		completed: completed,
		store:     st,
		session:   ses,
		log:       log,
		events:    make(chan Event, 32),
		mode:      mode,
	}
}

// Start begins observing the auth session. The current principal is
// enqueued immediately.
func (m *Model) Start() {
	m.cancelAuth = m.session.Subscribe(func(p *auth.Principal) {
		m.events <- authEvent{principal: p}
	})
}

// Close cancels the auth and store subscriptions. Enqueued events may
// still be drained afterwards; they are ignored as stale.
func (m *Model) Close() {
	if m.cancelAuth != nil {
		m.cancelAuth()
		m.cancelAuth = nil
	}
	m.unsubscribe()
}

// Events is the mailbox of pending callbacks.
func (m *Model) Events() <-chan Event { return m.events }

// Handle applies one event from the mailbox.
func (m *Model) Handle(ev Event) {
	switch ev := ev.(type) {
	case authEvent:
		m.onAuth(ev.principal)
	case snapshotEvent:
		if ev.gen != m.gen {
			return // from a cancelled subscription
		}
		m.all = ev.tasks
		m.refilter()
		m.phase = PhaseLive
	case subErrorEvent:
		if ev.gen != m.gen {
			return
		}
		m.unsubscribe()
		m.err = ev.err
		m.phase = PhaseError
	case createDoneEvent:
		m.inFlight = false
		if ev.err != nil {
			m.err = ev.err
		}
	case mutationDoneEvent:
		if ev.err != nil {
			m.err = ev.err
		}
	}
}

func (m *Model) onAuth(p *auth.Principal) {
	m.unsubscribe()
	m.all = nil
	m.visible = nil
	if p == nil {
		m.owner = ""
		m.phase = PhaseIdle
		return
	}
	m.owner = p.UID
	m.subscribe()
}

func (m *Model) subscribe() {
	m.gen++
	gen := m.gen
	m.phase = PhaseSubscribing
	m.cancelSub = m.store.Subscribe(m.owner, m.completed,
		func(ts []task.Task) { m.events <- snapshotEvent{gen: gen, tasks: ts} },
		func(err error) { m.events <- subErrorEvent{gen: gen, err: err} },
	)
}

func (m *Model) unsubscribe() {
	if m.cancelSub != nil {
		m.cancelSub()
		m.cancelSub = nil
	}
}

// Refresh re-enters the subscription after an error. No-op while
// signed out.
func (m *Model) Refresh() {
	if m.owner == "" {
		return
	}
	m.unsubscribe()
	m.err = nil
	m.subscribe()
}

// SetQuery updates the free-text filter.
func (m *Model) SetQuery(q string) {
	m.query = strings.ToLower(strings.TrimSpace(q))
	m.refilter()
}

// SetMode switches the input mode. Leaving search clears the query.
func (m *Model) SetMode(mode Mode) {
	m.mode = mode
	if mode != ModeSearch {
		m.query = ""
		m.refilter()
	}
}

// ToggleMode flips between search and the screen's resting mode.
func (m *Model) ToggleMode() {
	if m.mode == ModeSearch {
		if m.completed {
			m.SetMode(ModeList)
		} else {
			m.SetMode(ModeCompose)
		}
		return
	}
	m.SetMode(ModeSearch)
}

// Create issues an add for the pending screen. Returns false without
// touching the store when the text is empty, another create is in
// flight, or this is the done screen. The new task arrives through the
// subscription; nothing is inserted optimistically.
func (m *Model) Create(text string) bool {
	if m.completed {
		return false
	}
	text = strings.TrimSpace(text)
	if text == "" || m.inFlight || m.owner == "" {
		return false
	}
	m.inFlight = true
	owner := m.owner
	go func() {
		err := m.store.Add(context.Background(), owner, text)
		if err != nil {
			m.log.Error("create task failed", "err", err)
		}
		m.events <- createDoneEvent{err: err}
	}()
	return true
}

// Complete marks a task done.
func (m *Model) Complete(id task.ID) { m.setCompleted(id, true) }

// Uncomplete moves a task back to pending.
func (m *Model) Uncomplete(id task.ID) { m.setCompleted(id, false) }

func (m *Model) setCompleted(id task.ID, completed bool) {
	go func() {
		err := m.store.SetCompleted(context.Background(), id, completed)
		if err != nil {
			m.log.Error("set completed failed", "id", id, "err", err)
		}
		m.events <- mutationDoneEvent{err: err}
	}()
}

// Destroy deletes a task. Deleting an already-deleted task counts as
// success. Confirmation is the presenter's job.
func (m *Model) Destroy(id task.ID) {
	go func() {
		err := m.store.Remove(context.Background(), id)
		if errors.Is(err, store.ErrNotFound) {
			err = nil
		}
		if err != nil {
			m.log.Error("delete task failed", "id", id, "err", err)
		}
		m.events <- mutationDoneEvent{err: err}
	}()
}

func (m *Model) refilter() {
	m.visible = task.Filter(m.all, m.query)
}

func (m *Model) All() []task.Task     { return m.all }
func (m *Model) Visible() []task.Task { return m.visible }
func (m *Model) Query() string        { return m.query }
func (m *Model) Mode() Mode           { return m.mode }
func (m *Model) Phase() Phase         { return m.phase }
func (m *Model) InFlight() bool       { return m.inFlight }
func (m *Model) Completed() bool      { return m.completed }

// Err is the last surfaced failure, if any.
func (m *Model) Err() error { return m.err }

// ClearErr acknowledges the surfaced failure.
func (m *Model) ClearErr() { m.err = nil }

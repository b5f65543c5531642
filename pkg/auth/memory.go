package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Memory is an in-memory Session for tests and the -memory development
// mode. Any email/password pair signs in; accounts are created on
// first use.
type Memory struct {
	mu       sync.Mutex
	now      func() time.Time
	accounts map[string]*Principal
	current  *Principal
	subs     map[int]func(*Principal)
	nextSub  int
	nextUID  int

	// SignOutErr, when set, is returned by SignOut after the local
	// session has been cleared.
	SignOutErr error
}

var _ Session = (*Memory)(nil)

func NewMemorySession() *Memory {
	return &Memory{
		now:      time.Now,
		accounts: map[string]*Principal{},
		subs:     map[int]func(*Principal){},
	}
}

// SetClock replaces the timestamp source, for deterministic tests.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) Current() *Principal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Memory) Subscribe(fn func(*Principal)) CancelFunc {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	current := m.current
	m.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

func (m *Memory) SignIn(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return ErrInvalidCredentials
	}
	m.mu.Lock()
	p, ok := m.accounts[email]
	if !ok {
		m.nextUID++
		p = &Principal{
			UID:       fmt.Sprintf("u%d", m.nextUID),
			Email:     email,
			CreatedAt: m.now(),
		}
		m.accounts[email] = p
	}
	signedIn := *p
	signedIn.LastLoginAt = m.now()
	m.current = &signedIn
	m.mu.Unlock()
	m.notify(&signedIn)
	return nil
}

func (m *Memory) SignUp(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	m.mu.Lock()
	if _, ok := m.accounts[email]; ok {
		m.mu.Unlock()
		return ErrEmailInUse
	}
	m.mu.Unlock()
	return m.SignIn(ctx, email, password)
}

func (m *Memory) SendPasswordReset(ctx context.Context, email string) error {
	return nil
}

func (m *Memory) SignOut(ctx context.Context) error {
	m.mu.Lock()
	m.current = nil
	err := m.SignOutErr
	m.mu.Unlock()
	m.notify(nil)
	return err
}

func (m *Memory) notify(p *Principal) {
	m.mu.Lock()
	fns := make([]func(*Principal), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(p)
	}
}

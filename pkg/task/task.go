package task

import (
	"sort"
	"strings"
	"time"
)

// ID of a task document, assigned by the store.
type ID string

// Task is one to-do item owned by a single user.
type Task struct {
	ID        ID        `firestore:"-" json:"id"`
	Text      string    `firestore:"text" json:"text"`
	Completed bool      `firestore:"completed" json:"completed"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	OwnerID   string    `firestore:"ownerId" json:"ownerId"`
}

// SortNewest orders tasks by creation time, newest first. Tasks created
// at the same instant keep a stable order by falling back to ID, so rows
// don't reshuffle between snapshots.
func SortNewest(ts []Task) {
	sort.SliceStable(ts, func(i, j int) bool {
		a, b := ts[i], ts[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// Filter returns the tasks whose text contains query, case-insensitively,
// preserving order. An empty query matches everything.
func Filter(ts []Task, query string) []Task {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		out := make([]Task, len(ts))
		copy(out, ts)
		return out
	}
	out := []Task{}
	for _, t := range ts {
		if strings.Contains(strings.ToLower(t.Text), q) {
			out = append(out, t)
		}
	}
	return out
}

package task

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestSortNewest(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("newest first", func(t *testing.T) {
		is := is.New(t)
		ts := []Task{
			{ID: "a", CreatedAt: t0},
			{ID: "b", CreatedAt: t0.Add(time.Minute)},
			{ID: "c", CreatedAt: t0.Add(time.Hour)},
		}
		SortNewest(ts)
		is.Equal(ids(ts), []ID{"c", "b", "a"})
	})

	t.Run("ties broken by id ascending", func(t *testing.T) {
		is := is.New(t)
		ts := []Task{
			{ID: "z", CreatedAt: t0},
			{ID: "a", CreatedAt: t0},
			{ID: "m", CreatedAt: t0.Add(time.Second)},
		}
		SortNewest(ts)
		is.Equal(ids(ts), []ID{"m", "a", "z"})
	})
}

func TestFilter(t *testing.T) {
	all := []Task{
		{ID: "a", Text: "Buy milk"},
		{ID: "b", Text: "Call mom"},
		{ID: "c", Text: "milk run"},
	}

	t.Run("case insensitive, order preserved", func(t *testing.T) {
		is := is.New(t)
		is.Equal(ids(Filter(all, "MILK")), []ID{"a", "c"})
	})

	t.Run("empty query returns everything", func(t *testing.T) {
		is := is.New(t)
		is.Equal(ids(Filter(all, "")), []ID{"a", "b", "c"})
	})

	t.Run("query is trimmed", func(t *testing.T) {
		is := is.New(t)
		is.Equal(ids(Filter(all, "  mom ")), []ID{"b"})
	})

	t.Run("no matches", func(t *testing.T) {
		is := is.New(t)
		is.Equal(len(Filter(all, "xyz")), 0)
	})

	t.Run("does not mutate input", func(t *testing.T) {
		is := is.New(t)
		out := Filter(all, "")
		out[0].Text = "changed"
		is.Equal(all[0].Text, "Buy milk")
	})
}

func ids(ts []Task) []ID {
	out := make([]ID, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

package history

import (
	"errors"
	"testing"
	"time"
)

var base = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

func TestRecordAndList(t *testing.T) {
	s := New(DefaultRetention)

	s.Record("12+3", 15, base)
	s.Record("15÷4", 3.75, base.Add(time.Minute))

	got := s.List(base.Add(time.Hour))
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Formula != "12+3" || got[0].Result != "15" {
		t.Fatalf("unexpected first entry %+v", got[0])
	}
	if got[1].Result != "3.75" || got[1].Value != 3.75 {
		t.Fatalf("unexpected second entry %+v", got[1])
	}
}

func TestListDropsExpiredEntries(t *testing.T) {
	s := New(DefaultRetention)

	s.Record("1+1", 2, base)
	s.Record("2+2", 4, base.Add(48*time.Hour))

	got := s.List(base.Add(DefaultRetention + time.Hour))
	if len(got) != 1 || got[0].Formula != "2+2" {
		t.Fatalf("expected only the fresh entry, got %+v", got)
	}
	if s.Len() != 1 {
		t.Fatalf("expected expired entry to be removed, got %d entries", s.Len())
	}
}

func TestZeroRetentionKeepsEverything(t *testing.T) {
	s := New(0)
	s.Record("1+1", 2, base)

	if got := s.List(base.Add(365 * 24 * time.Hour)); len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
}

func TestGet(t *testing.T) {
	s := New(DefaultRetention)
	s.Record("2×3", 6, base)

	e, err := s.Get(0, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Result != "6" {
		t.Fatalf("expected %q, got %q", "6", e.Result)
	}

	for _, index := range []int{-1, 1} {
		if _, err := s.Get(index, base); !errors.Is(err, ErrIndex) {
			t.Fatalf("expected ErrIndex for %d, got %v", index, err)
		}
	}
}

func TestListReturnsCopy(t *testing.T) {
	s := New(DefaultRetention)
	s.Record("1+1", 2, base)

	got := s.List(base)
	got[0].Formula = "changed"

	if s.List(base)[0].Formula != "1+1" {
		t.Fatal("expected List to return a copy")
	}
}

func TestClear(t *testing.T) {
	s := New(DefaultRetention)
	s.Record("1+1", 2, base)
	s.Clear()

	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d entries", s.Len())
	}
}

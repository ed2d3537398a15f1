// history/history_test.go
// Copyright(c) 2025 fixcalc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package history

import (
	"path/filepath"
	"testing"
	"time"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.msgpack")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load missing file: %v", err)
	}
	if len(s.Entries()) != 0 {
		t.Fatalf("new store not empty")
	}

	t0 := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	s.Add(Entry{Time: t0, Kind: "waypoint", Input: "JFK 090 10", Code: "code-a"})
	s.Add(Entry{Time: t0.Add(time.Minute), Kind: "fix", Input: "JFK 057 / DPK 25", Code: "code-b"})
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s2, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := s2.Entries()
	if len(got) != 2 {
		t.Fatalf("loaded %d entries, expected 2", len(got))
	}
	// Newest first.
	if got[0].Code != "code-b" || got[1].Code != "code-a" {
		t.Errorf("unexpected order: %+v", got)
	}
	if !got[1].Time.Equal(t0) {
		t.Errorf("timestamp %v, expected %v", got[1].Time, t0)
	}
}

func TestStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.msgpack")
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s.Add(Entry{Kind: "waypoint", Input: "x", Code: "y"})
	s.Clear()
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s2, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s2.Entries()) != 0 {
		t.Errorf("cleared store still has entries")
	}
}

func TestAddStampsTime(t *testing.T) {
	s := &Store{}
	s.Add(Entry{Kind: "waypoint"})
	if s.Entries()[0].Time.IsZero() {
		t.Error("Add should fill in a zero time")
	}
}

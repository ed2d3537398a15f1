// history/history.go
// Copyright(c) 2025 fixcalc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package history keeps a small append-only record of computed waypoint
// and fix codes so a batch of related calculations can be reviewed or
// re-emitted later. Records are msgpack encoded on disk.
package history

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

type Entry struct {
	Time  time.Time `msgpack:"time"`
	Kind  string    `msgpack:"kind"` // "waypoint", "fix", or "intersection"
	Input string    `msgpack:"input"`
	Code  string    `msgpack:"code"`
}

type Store struct {
	Path    string
	entries []Entry
}

// Load reads the history at path; a missing file gives an empty store.
func Load(path string) (*Store, error) {
	s := &Store{Path: path}

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	} else if err != nil {
		return nil, err
	}

	dec := msgpack.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&s.entries); err != nil {
		return nil, fmt.Errorf("%s: msgpack decode: %w", path, err)
	}
	return s, nil
}

// Old entries are discarded once the store reaches this size.
const maxEntries = 1000

func (s *Store) Add(e Entry) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	s.entries = append(s.entries, e)
	if n := len(s.entries); n > maxEntries {
		s.entries = slices.Delete(s.entries, 0, n-maxEntries)
	}
}

// Entries returns the recorded entries, newest first.
func (s *Store) Entries() []Entry {
	r := slices.Clone(s.entries)
	slices.Reverse(r)
	return r
}

func (s *Store) Clear() {
	s.entries = nil
}

func (s *Store) Save() error {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.Encode(s.entries); err != nil {
		return fmt.Errorf("msgpack encode: %w", err)
	}
	return os.WriteFile(s.Path, buf.Bytes(), 0o644)
}

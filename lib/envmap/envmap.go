// Copyright 2026 The Ridgeline Authors
// SPDX-License-Identifier: Apache-2.0

package envmap

import "strings"

// Map is a process environment held as NAME=value entries in their
// original order. The zero value is an empty environment.
type Map struct {
	entries []string
}

// FromEnviron snapshots an environment in the form returned by
// os.Environ. The input slice is copied; later mutation of either side
// does not affect the other.
func FromEnviron(entries []string) Map {
	snapshot := make([]string, len(entries))
	copy(snapshot, entries)
	return Map{entries: snapshot}
}

// Environ rebuilds the environment as a NAME=value slice suitable for
// exec. The returned slice is an owned copy.
func (m Map) Environ() []string {
	rebuilt := make([]string, len(m.entries))
	copy(rebuilt, m.entries)
	return rebuilt
}

// Clone returns an independent copy of the map.
func (m Map) Clone() Map {
	return FromEnviron(m.entries)
}

// Len returns the number of entries, counting duplicates and malformed
// entries.
func (m Map) Len() int {
	return len(m.entries)
}

// Lookup returns the value of the first entry for name. The match is
// exact and case-sensitive: an entry whose key merely starts with name
// (such as LD_LIBRARY_PATH_EXTRA when looking up LD_LIBRARY_PATH) is
// not a match. The second return reports whether the variable is
// present at all.
func (m Map) Lookup(name string) (string, bool) {
	for _, entry := range m.entries {
		if value, ok := matchEntry(entry, name); ok {
			return value, true
		}
	}
	return "", false
}

// Set rewrites the first entry for name to NAME=value, appending a new
// entry when the variable is absent. Later duplicate entries for the
// same name are left alone: consumers (the dynamic loader included)
// honor the first occurrence, and rewriting the rest would change an
// environment the launcher has no business changing.
func (m *Map) Set(name, value string) {
	for i, entry := range m.entries {
		if _, ok := matchEntry(entry, name); ok {
			m.entries[i] = name + "=" + value
			return
		}
	}
	m.entries = append(m.entries, name+"="+value)
}

// matchEntry reports whether entry is an assignment to name, returning
// the value when it is. Entries without '=' never match.
func matchEntry(entry, name string) (string, bool) {
	key, value, found := strings.Cut(entry, "=")
	if !found || key != name {
		return "", false
	}
	return value, true
}

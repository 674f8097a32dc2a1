// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package kmod

// Set is a set of module names.
type Set map[string]struct{}

// NewSet creates a new [Set] with the given names normalized.
func NewSet(names ...string) Set {
	set := make(Set, len(names))
	set.Add(names...)

	return set
}

// Add adds the given names.
func (s Set) Add(names ...string) {
	for _, name := range names {
		s[Normalize(name)] = struct{}{}
	}
}

// Contains returns true if the given name is in the set.
func (s Set) Contains(name string) bool {
	_, exists := s[Normalize(name)]
	return exists
}

// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package kmod

import (
	"errors"
	"strings"
)

var (
	// ErrDependencyCycle is returned if the requested modules depend on each
	// other in a circle. There is no valid load order in this case.
	ErrDependencyCycle = errors.New("dependency cycle")

	// ErrModuleNotFound is returned if a module is neither in the index nor
	// built into the kernel.
	ErrModuleNotFound = errors.New("module not found")

	// ErrInvalidIndex is returned if the dependency index can not be parsed.
	ErrInvalidIndex = errors.New("invalid index")
)

// CycleError records the module names forming a dependency cycle. The first
// and the last name are the same.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return ErrDependencyCycle.Error() + ": " + strings.Join(e.Cycle, " -> ")
}

func (*CycleError) Is(other error) bool {
	return other == ErrDependencyCycle
}

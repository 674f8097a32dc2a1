// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package kmod

import (
	"path"
	"strings"
)

// Extensions known for module files, longest first.
var extensions = []string{
	".ko.zst",
	".ko.gz",
	".ko.xz",
	".ko",
}

// Name returns the module name for the given module file path.
//
// The name is the base name without module file extension. Dashes are
// replaced by underscores, like the kernel does.
func Name(modulePath string) string {
	name := path.Base(modulePath)

	for _, ext := range extensions {
		if trimmed, found := strings.CutSuffix(name, ext); found {
			name = trimmed
			break
		}
	}

	return Normalize(name)
}

// Normalize returns the canonical form of the given module name.
func Normalize(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

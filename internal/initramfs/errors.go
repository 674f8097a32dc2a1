// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs

import (
	"errors"
	"io/fs"
)

var (
	// ErrEntryExists is returned if an entry exists that was not expected.
	ErrEntryExists = fs.ErrExist

	// ErrEntryNotDir is returned if an entry is supposed to be a directory but
	// is not.
	ErrEntryNotDir = errors.New("entry is not a directory")

	// ErrInvalidPath is returned for paths that can not be used in the archive.
	ErrInvalidPath = errors.New("invalid path")

	// ErrNotRegular is returned if the source of a file is not a regular file.
	ErrNotRegular = errors.New("source is not a regular file")

	// ErrUnknownCompression is returned for unsupported compression names.
	ErrUnknownCompression = errors.New("unknown compression")
)

// PathError records an error and the operation and path that caused it.
type PathError = fs.PathError

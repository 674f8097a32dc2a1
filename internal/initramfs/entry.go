// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs

import (
	"fmt"
	"io/fs"
)

// EntryType defines the type of an [Entry].
type EntryType int

const (
	// EntryTypeDirectory is a directory.
	EntryTypeDirectory EntryType = iota

	// EntryTypeRegular is a regular file. Its content is read from the source
	// when the archive is written.
	EntryTypeRegular

	// EntryTypeLink is a symbolic link.
	EntryTypeLink
)

// OpenFunc opens the source of a regular file.
type OpenFunc func() (fs.File, error)

// Entry is a single archive entry.
type Entry struct {
	Type EntryType

	// Mode are the permission bits of a regular file.
	Mode fs.FileMode

	// Target is the target of a symbolic link.
	Target string

	open OpenFunc
}

func (e *Entry) String() string {
	switch e.Type {
	case EntryTypeDirectory:
		return "directory"
	case EntryTypeRegular:
		return fmt.Sprintf("regular file (%s)", e.Mode)
	case EntryTypeLink:
		return "link (" + e.Target + ")"
	default:
		return "invalid type"
	}
}

// writeTo writes the entry into the given [Writer] with the given path.
func (e *Entry) writeTo(writer Writer, path string) error {
	switch e.Type {
	case EntryTypeDirectory:
		//nolint:wrapcheck
		return writer.WriteDirectory(path)
	case EntryTypeRegular:
		source, err := e.open()
		if err != nil {
			return fmt.Errorf("open source for %s: %w", path, err)
		}
		defer source.Close()

		//nolint:wrapcheck
		return writer.WriteRegular(path, source, e.Mode)
	case EntryTypeLink:
		//nolint:wrapcheck
		return writer.WriteLink(path, e.Target)
	default:
		return fmt.Errorf("unknown entry type %d", e.Type)
	}
}

// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Archive is an ordered file tree that is written as initramfs.
//
// Entries are written in the order they are added. Missing parent
// directories are added implicitly right before their first child, so the
// kernel always unpacks a directory before its content.
type Archive struct {
	entries map[string]*Entry
	paths   []string
}

// New creates an empty [Archive].
func New() *Archive {
	return &Archive{
		entries: make(map[string]*Entry),
	}
}

// clean returns the archive path for the given path. Archive paths are
// relative to the archive root. Leading separators are removed.
func clean(path string) (string, error) {
	cleaned := strings.TrimLeft(filepath.Clean("/"+path), string(filepath.Separator))
	if cleaned == "" || !fs.ValidPath(cleaned) {
		return "", &PathError{Op: "clean", Path: path, Err: ErrInvalidPath}
	}

	return cleaned, nil
}

// Entry returns the entry for the given path.
func (a *Archive) Entry(path string) (*Entry, bool) {
	cleaned, err := clean(path)
	if err != nil {
		return nil, false
	}

	entry, exists := a.entries[cleaned]

	return entry, exists
}

// Paths returns the paths of all entries in the order they are written.
func (a *Archive) Paths() []string {
	return slices.Clone(a.paths)
}

// MkdirAll adds a directory entry for the given path and all its missing
// parents. Existing directories are accepted.
func (a *Archive) MkdirAll(path string) error {
	cleaned, err := clean(path)
	if err != nil {
		return err
	}

	return a.mkdirAll(cleaned)
}

func (a *Archive) mkdirAll(cleaned string) error {
	if entry, exists := a.entries[cleaned]; exists {
		if entry.Type != EntryTypeDirectory {
			return &PathError{Op: "mkdir", Path: cleaned, Err: ErrEntryNotDir}
		}

		return nil
	}

	if parent := filepath.Dir(cleaned); parent != "." {
		if err := a.mkdirAll(parent); err != nil {
			return err
		}
	}

	a.insert(cleaned, &Entry{Type: EntryTypeDirectory})

	return nil
}

func (a *Archive) insert(cleaned string, entry *Entry) {
	a.entries[cleaned] = entry
	a.paths = append(a.paths, cleaned)
}

func (a *Archive) add(op, path string, entry *Entry) error {
	cleaned, err := clean(path)
	if err != nil {
		return err
	}

	if _, exists := a.entries[cleaned]; exists {
		return &PathError{Op: op, Path: cleaned, Err: ErrEntryExists}
	}

	if parent := filepath.Dir(cleaned); parent != "." {
		if err := a.mkdirAll(parent); err != nil {
			return err
		}
	}

	a.insert(cleaned, entry)

	return nil
}

// AddFile adds a regular file whose content is read with the given
// [OpenFunc] when the archive is written.
func (a *Archive) AddFile(path string, mode fs.FileMode, open OpenFunc) error {
	if open == nil {
		return &PathError{Op: "add", Path: path, Err: fs.ErrInvalid}
	}

	return a.add("add", path, &Entry{
		Type: EntryTypeRegular,
		Mode: mode.Perm(),
		open: open,
	})
}

// AddLocalFile adds the regular file at source of the local file system. The
// source must exist and is read when the archive is written.
func (a *Archive) AddLocalFile(path, source string, mode fs.FileMode) error {
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("add %s: %w", path, err)
	}

	if !info.Mode().IsRegular() {
		return &PathError{Op: "add", Path: source, Err: ErrNotRegular}
	}

	return a.AddFile(path, mode, func() (fs.File, error) {
		return os.Open(source)
	})
}

// AddBytes adds a regular file with the given content.
func (a *Archive) AddBytes(path string, mode fs.FileMode, data []byte) error {
	name := filepath.Base(path)
	content := slices.Clone(data)

	return a.AddFile(path, mode, func() (fs.File, error) {
		return newMemFile(name, content), nil
	})
}

// Symlink adds a symbolic link at path pointing to target.
func (a *Archive) Symlink(target, path string) error {
	return a.add("symlink", path, &Entry{
		Type:   EntryTypeLink,
		Target: target,
	})
}

// WriteTo writes all entries into the given [Writer].
func (a *Archive) WriteTo(writer Writer) error {
	for _, path := range a.paths {
		if err := a.entries[path].writeTo(writer, path); err != nil {
			return err
		}
	}

	return nil
}

// WriteCPIO writes the complete archive as CPIO archive with the given
// [Compression] into w.
func (a *Archive) WriteCPIO(w io.Writer, compression Compression) error {
	compressWriter, err := newCompressWriter(w, compression)
	if err != nil {
		return err
	}

	cpioWriter := NewCPIOWriter(compressWriter)

	if err := a.WriteTo(cpioWriter); err != nil {
		_ = cpioWriter.Close()
		_ = compressWriter.Close()

		return err
	}

	if err := cpioWriter.Close(); err != nil {
		_ = compressWriter.Close()
		return err
	}

	if err := compressWriter.Close(); err != nil {
		return fmt.Errorf("close %s writer: %w", compression, err)
	}

	return nil
}

// WriteFile writes the archive into a new file at the given path. The file is
// removed on failure.
func (a *Archive) WriteFile(path string, compression Compression) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive file: %w", err)
	}

	err = a.WriteCPIO(file, compression)
	if err == nil {
		err = file.Close()
	} else {
		_ = file.Close()
	}

	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("write archive: %w", err)
	}

	return nil
}

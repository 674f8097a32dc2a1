// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: MIT

package initramfs

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/cavaliergopher/cpio"
)

const (
	dirLinks  = 2
	dirMode   = 0o755
	linkMode  = 0o777
	fileLinks = 1
)

var _ Writer = (*CPIOWriter)(nil)

// CPIOWriter implements [Writer] for the SVR4 "newc" CPIO format the kernel
// unpacks.
//
// All entries are owned by root and have no modification time, so archives
// built from the same input are identical.
type CPIOWriter struct {
	cpioWriter *cpio.Writer
}

// NewCPIOWriter creates a new archive writer.
func NewCPIOWriter(w io.Writer) *CPIOWriter {
	return &CPIOWriter{cpio.NewWriter(w)}
}

// Close writes the archive trailer. It does not close the underlying
// [io.Writer].
func (w *CPIOWriter) Close() error {
	if err := w.cpioWriter.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	return nil
}

func (w *CPIOWriter) writeHeader(hdr *cpio.Header) error {
	if err := w.cpioWriter.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write header for %s: %w", hdr.Name, err)
	}

	return nil
}

// WriteDirectory adds a directory entry for the given path.
func (w *CPIOWriter) WriteDirectory(path string) error {
	return w.writeHeader(&cpio.Header{
		Name:  path,
		Mode:  cpio.TypeDir | dirMode,
		Links: dirLinks,
	})
}

// WriteLink adds a symbolic link for the given path pointing to the given
// target.
func (w *CPIOWriter) WriteLink(path, target string) error {
	err := w.writeHeader(&cpio.Header{
		Name:  path,
		Mode:  cpio.TypeSymlink | linkMode,
		Links: fileLinks,
		Size:  int64(len(target)),
	})
	if err != nil {
		return err
	}

	// Body of a link is the path of the target file.
	if _, err := io.WriteString(w.cpioWriter, target); err != nil {
		return fmt.Errorf("write body for %s: %w", path, err)
	}

	return nil
}

// WriteRegular copies the content of source into the archive as regular file
// with the given permission bits.
func (w *CPIOWriter) WriteRegular(path string, source fs.File, mode fs.FileMode) error {
	info, err := source.Stat()
	if err != nil {
		return fmt.Errorf("stat source for %s: %w", path, err)
	}

	if !info.Mode().IsRegular() {
		return &PathError{Op: "write", Path: path, Err: ErrNotRegular}
	}

	err = w.writeHeader(&cpio.Header{
		Name:  path,
		Mode:  cpio.TypeReg | cpio.FileMode(mode.Perm()),
		Links: fileLinks,
		Size:  info.Size(),
	})
	if err != nil {
		return err
	}

	if _, err := io.Copy(w.cpioWriter, source); err != nil {
		return fmt.Errorf("write body for %s: %w", path, err)
	}

	return nil
}

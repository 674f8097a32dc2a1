// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs

import (
	"bytes"
	"io/fs"
	"time"
)

// memFile is a read-only regular [fs.File] with in-memory content.
type memFile struct {
	*bytes.Reader
	info memFileInfo
}

var _ fs.File = (*memFile)(nil)

func newMemFile(name string, data []byte) *memFile {
	return &memFile{
		Reader: bytes.NewReader(data),
		info: memFileInfo{
			name: name,
			size: int64(len(data)),
		},
	}
}

func (f *memFile) Stat() (fs.FileInfo, error) {
	return f.info, nil
}

func (*memFile) Close() error {
	return nil
}

type memFileInfo struct {
	name string
	size int64
}

var _ fs.FileInfo = memFileInfo{}

func (i memFileInfo) Name() string { return i.name }
func (i memFileInfo) Size() int64 { return i.size }
func (memFileInfo) Mode() fs.FileMode { return 0o444 }
func (memFileInfo) ModTime() time.Time { return time.Time{} }
func (memFileInfo) IsDir() bool { return false }
func (memFileInfo) Sys() any { return nil }

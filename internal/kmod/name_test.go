// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package kmod_test

import (
	"testing"

	"github.com/aibor/virtinit/internal/kmod"
	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{
			name:     "plain name",
			path:     "virtiofs",
			expected: "virtiofs",
		},
		{
			name:     "plain",
			path:     "kernel/fs/fuse/virtiofs.ko",
			expected: "virtiofs",
		},
		{
			name:     "gzip",
			path:     "kernel/fs/fuse/fuse.ko.gz",
			expected: "fuse",
		},
		{
			name:     "xz",
			path:     "kernel/drivers/virtio/virtio_ring.ko.xz",
			expected: "virtio_ring",
		},
		{
			name:     "zst with dashes",
			path:     "kernel/drivers/block/virtio-blk.ko.zst",
			expected: "virtio_blk",
		},
		{
			name:     "unknown extension kept",
			path:     "some/file.txt",
			expected: "file.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, kmod.Name(tt.path))
		})
	}
}

func TestSet(t *testing.T) {
	set := kmod.NewSet("virtio-blk")
	set.Add("fuse")

	assert.True(t, set.Contains("virtio_blk"))
	assert.True(t, set.Contains("virtio-blk"))
	assert.True(t, set.Contains("fuse"))
	assert.False(t, set.Contains("virtiofs"))

	var empty kmod.Set
	assert.False(t, empty.Contains("fuse"))
}

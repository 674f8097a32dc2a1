// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByKey(t *testing.T) {
	t.Run("parents first", func(t *testing.T) {
		actual := []string{}
		nodes := StaticDeviceNodes()
		nodes["/dev/vfio/vfio"] = DeviceNode{}
		nodes["/dev/vfio"] = DeviceNode{}

		for path := range byKey(nodes) {
			actual = append(actual, path)
		}

		assert.Equal(t, []string{
			"/dev/fuse",
			"/dev/kvm",
			"/dev/loop-control",
			"/dev/vfio",
			"/dev/vfio/vfio",
		}, actual)
	})

	t.Run("stop early", func(t *testing.T) {
		actual := []string{}
		for path := range byKey(SystemMountPoints()) {
			if path == "/run" {
				break
			}

			actual = append(actual, path)
		}

		assert.Equal(t, []string{"/dev", "/proc"}, actual)
	})
}

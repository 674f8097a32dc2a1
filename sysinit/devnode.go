// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// DeviceNode is a character device node.
type DeviceNode struct {
	Major uint32
	Minor uint32
	Perm  uint32
}

// DeviceNodes is a collection of character device nodes by path.
type DeviceNodes map[string]DeviceNode

// StaticDeviceNodes returns device nodes for misc devices commonly used in
// the guest that devtmpfs only creates once the driver is used.
func StaticDeviceNodes() DeviceNodes {
	return DeviceNodes{
		"/dev/fuse":         {Major: 10, Minor: 229, Perm: 0o666},
		"/dev/kvm":          {Major: 10, Minor: 232, Perm: 0o660},
		"/dev/loop-control": {Major: 10, Minor: 237, Perm: 0o660},
	}
}

// CreateDeviceNodes creates the given character device nodes. Existing files
// are left alone.
//
// It tries all nodes and returns the joined errors of the failed ones.
func CreateDeviceNodes(state *State, nodes DeviceNodes) error {
	var errs []error

	for path, node := range byKey(nodes) {
		state.Logger().Debug("Create device node",
			slog.String("path", path),
			slog.Uint64("major", uint64(node.Major)),
			slog.Uint64("minor", uint64(node.Minor)),
		)

		if err := createDeviceNode(state, path, node); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func createDeviceNode(state *State, path string, node DeviceNode) error {
	if dir := filepath.Dir(path); dir != "/dev" {
		if err := state.sys.mkdirAll(dir); err != nil {
			return err
		}
	}

	dev := unix.Mkdev(node.Major, node.Minor)

	err := state.sys.mknod(path, unix.S_IFCHR|node.Perm, int(dev)) //nolint:gosec
	if err != nil && !errors.Is(err, fs.ErrExist) {
		return err
	}

	return nil
}

// WithDeviceNodes returns a setup [Func] that wraps [CreateDeviceNodes] and
// can be used with [Run].
//
// It logs device nodes that could not be created.
func WithDeviceNodes(nodes DeviceNodes) Func {
	return func(state *State) error {
		if err := CreateDeviceNodes(state, nodes); err != nil {
			state.Logger().Warn("Device nodes missing", slog.Any("error", err))
		}

		return nil
	}
}

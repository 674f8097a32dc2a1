// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"fmt"
	"log/slog"

	"golang.org/x/sys/unix"
)

// FSType is a file system type.
type FSType string

// File system types used during boot.
const (
	FSTypeDevTmp   FSType = "devtmpfs"
	FSTypeProc     FSType = "proc"
	FSTypeSys      FSType = "sysfs"
	FSTypeTmp      FSType = "tmpfs"
	FSTypeVirtioFS FSType = "virtiofs"

	defaultDirMode = 0o755
)

const (
	flagsNoExec = unix.MS_NOSUID | unix.MS_NOEXEC | unix.MS_NODEV
	flagsNoDev  = unix.MS_NOSUID | unix.MS_NODEV
)

// ProcMountPoints returns the proc file system mount point. It is required
// before anything else to read the kernel command line.
func ProcMountPoints() MountPoints {
	return MountPoints{
		"/proc": {FSType: FSTypeProc, Flags: flagsNoExec},
	}
}

// SystemMountPoints returns the pseudo and virtual file systems required for
// loading modules, accessing devices and mounting shares.
func SystemMountPoints() MountPoints {
	return MountPoints{
		"/dev": {
			FSType: FSTypeDevTmp,
			Flags:  unix.MS_NOSUID,
			Data:   "mode=0755,size=4m",
		},
		"/proc": {FSType: FSTypeProc, Flags: flagsNoExec},
		"/run": {
			FSType: FSTypeTmp,
			Flags:  flagsNoDev,
			Data:   "mode=0755,size=64m",
		},
		"/sys": {FSType: FSTypeSys, Flags: flagsNoExec},
		"/tmp": {
			FSType: FSTypeTmp,
			Flags:  flagsNoDev,
			Data:   "mode=1777,size=128m",
		},
	}
}

// MountOptions contains parameters for a mount point.
type MountOptions struct {
	// FSType is the files system type. It must be set to an available [FSType].
	FSType FSType

	// Source is the source device to mount. Can be empty for all the special
	// file system types [FSType]s. If empty it is set to the string of the
	// type.
	Source string

	// Flags are optional mount flags as defined by mount(2).
	Flags uintptr

	// Data are optional additional parameters that depend of the [FSType] used.
	Data string
}

// MountPoints is a collection of mount points by path.
type MountPoints map[string]MountOptions

// Mount mounts the file system described by opts at the given path.
//
// If path does not exist, it is created. If something is mounted at path
// already, nothing is done.
func Mount(state *State, path string, opts MountOptions) error {
	log := state.Logger().With(
		slog.String("path", path),
		slog.String("fstype", string(opts.FSType)),
	)

	if err := state.sys.mkdirAll(path); err != nil {
		return err
	}

	// A failed check is not conclusive, the mount call reports the real error.
	if mounted, err := state.sys.mounted(path); err == nil && mounted {
		log.Debug("Already mounted")
		return nil
	}

	source := opts.Source
	if source == "" {
		source = string(opts.FSType)
	}

	log.Debug("Mount")

	return state.sys.mount(source, path, string(opts.FSType), opts.Flags, opts.Data)
}

// MountAll mounts the given set of file systems.
//
// The mounts are executed in lexicographic order of the paths, so parent
// mount points are mounted before their children. The first failure stops
// and is returned.
func MountAll(state *State, mountPoints MountPoints) error {
	for path, opts := range byKey(mountPoints) {
		if err := Mount(state, path, opts); err != nil {
			return fmt.Errorf("essential mount: %w", err)
		}
	}

	return nil
}

// WithMountPoints returns a setup [Func] that wraps [MountAll] and can be used
// with [Run].
func WithMountPoints(mountPoints MountPoints) Func {
	return func(state *State) error {
		return MountAll(state, mountPoints)
	}
}

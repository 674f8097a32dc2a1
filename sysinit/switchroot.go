// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// SurvivingMountPoints returns the mount points that are moved into the new
// root. [SharesDir] is below /run, so additional shares move along.
func SurvivingMountPoints() []string {
	return []string{"/run", "/dev", "/proc", "/sys", "/tmp"}
}

// SwitchRoot makes newRoot the root of the file system hierarchy.
//
// The given mount points are moved below newRoot if the directory exists
// there. Otherwise they are detached. The working directory is "/" of the new
// root afterwards.
func SwitchRoot(state *State, newRoot string, mountPoints []string) error {
	for _, path := range mountPoints {
		dest := filepath.Join(newRoot, path)
		log := state.Logger().With(slog.String("path", path))

		if !state.sys.exists(dest) {
			log.Debug("Detach mount, no target in new root")

			if err := state.sys.unmount(path, unix.MNT_DETACH); err != nil {
				return err
			}

			continue
		}

		log.Debug("Move mount", slog.String("dest", dest))

		if err := state.sys.mount(path, dest, "", unix.MS_MOVE, ""); err != nil {
			return fmt.Errorf("move: %w", err)
		}
	}

	state.Logger().Debug("Switch root", slog.String("path", newRoot))

	if err := state.sys.chdir(newRoot); err != nil {
		return err
	}

	if err := state.sys.mount(".", "/", "", unix.MS_MOVE, ""); err != nil {
		return fmt.Errorf("move root: %w", err)
	}

	if err := state.sys.chroot("."); err != nil {
		return err
	}

	return state.sys.chdir("/")
}

// WithSwitchRoot returns a setup [Func] that wraps [SwitchRoot] and can be
// used with [Run].
func WithSwitchRoot(newRoot string, mountPoints []string) Func {
	return func(state *State) error {
		if err := SwitchRoot(state, newRoot, mountPoints); err != nil {
			return fmt.Errorf("switch root: %w", err)
		}

		return nil
	}
}

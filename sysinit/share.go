// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sys/unix"
)

// StagingDir is where the root share is mounted before it becomes the root
// of the file system hierarchy.
const StagingDir = "/sysroot"

// MountShare mounts the virtiofs share with the given tag at the given path.
//
// If path does not exist, it is created.
func MountShare(state *State, tag, path string, mode MountMode) error {
	state.Logger().Debug("Mount share",
		slog.String("tag", tag),
		slog.String("path", path),
		slog.String("mode", mode.String()),
	)

	if err := state.sys.mkdirAll(path); err != nil {
		return err
	}

	var flags uintptr
	if mode == ReadOnly {
		flags |= unix.MS_RDONLY
	}

	return state.sys.mount(tag, path, string(FSTypeVirtioFS), flags, "")
}

// MountShares mounts the root share read-write at [StagingDir] and then all
// additional shares of the [BootConfig] in the given order.
//
// If the root share can not be mounted, an error wrapping [ErrRootMount] is
// returned and no other share is tried. If only additional shares failed, it
// returns an [OptionalMountError] with all errors.
func MountShares(state *State) error {
	cfg := state.Config()

	err := MountShare(state, cfg.RootfsTag, StagingDir, ReadWrite)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRootMount, cfg.RootfsTag, err)
	}

	var optionalErrs OptionalMountError

	for _, spec := range cfg.Mounts {
		err := MountShare(state, spec.Tag, spec.Path(), spec.Mode)
		if err != nil {
			optionalErrs = append(optionalErrs, fmt.Errorf("share %s: %w", spec.Tag, err))
		}
	}

	if optionalErrs != nil {
		return optionalErrs
	}

	return nil
}

// WithShares returns a setup [Func] that wraps [MountShares] and can be used
// with [Run].
//
// It logs additional shares that failed.
func WithShares() Func {
	return func(state *State) error {
		err := MountShares(state)

		var optionalErrs OptionalMountError
		if errors.As(err, &optionalErrs) {
			for _, err := range optionalErrs {
				state.Logger().Warn("Share skipped", slog.Any("error", err))
			}

			return nil
		}

		return err
	}
}

// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
)

// Exec replaces the process with the given init program. The program keeps
// PID 1 and inherits the environment and standard streams.
//
// If the program can not be executed and it is not [DefaultInit], it retries
// once with [DefaultInit]. It only returns if both fail.
func Exec(state *State, path string) error {
	err := execInit(state, path)
	if err == nil || path == DefaultInit {
		return err
	}

	state.Logger().Error("Init failed, trying fallback",
		slog.String("path", path),
		slog.String("fallback", DefaultInit),
		slog.Any("error", err),
	)

	fallbackErr := execInit(state, DefaultInit)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrExec, errors.Join(err, fallbackErr))
}

func execInit(state *State, path string) error {
	state.Logger().Debug("Execute init", slog.String("path", path))

	if err := state.sys.exec(path, []string{filepath.Base(path)}); err != nil {
		return fmt.Errorf("%w: %w", ErrExec, err)
	}

	return nil
}

// WithExec returns a [Func] that wraps [Exec] for the init program of the
// [BootConfig]. It must be the last [Func] given to [Run].
func WithExec() Func {
	return func(state *State) error {
		return Exec(state, state.Config().Init)
	}
}

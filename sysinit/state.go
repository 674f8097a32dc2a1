// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"io"
	"log/slog"

	"github.com/aibor/virtinit/internal/kmod"
)

// State is the boot context passed to every [Func] run by [Run].
//
// It carries the [BootConfig] once the command line is parsed and the set of
// kernel modules a load call was issued for.
type State struct {
	config BootConfig
	loaded kmod.Set
	level  *slog.LevelVar
	logger *slog.Logger
	sys    syscalls
}

// NewState creates a new [State] with the default [BootConfig] that logs to
// the given writer.
func NewState(out io.Writer) *State {
	return newState(out, hostSyscalls())
}

func newState(out io.Writer, sys syscalls) *State {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)

	return &State{
		config: DefaultBootConfig(),
		loaded: make(kmod.Set),
		level:  level,
		logger: newLogger(out, level),
		sys:    sys,
	}
}

// Config returns the current [BootConfig].
func (s *State) Config() BootConfig {
	return s.config
}

// SetConfig replaces the [BootConfig]. Debug output is enabled if the config
// has Debug set.
func (s *State) SetConfig(cfg BootConfig) {
	s.config = cfg

	if cfg.Debug {
		s.level.Set(slog.LevelDebug)
	} else {
		s.level.Set(slog.LevelWarn)
	}
}

// Logger returns the console logger.
func (s *State) Logger() *slog.Logger {
	return s.logger
}

// IsLoaded returns true if a load call was issued for the named module.
func (s *State) IsLoaded(name string) bool {
	return s.loaded.Contains(name)
}

// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"log/slog"
)

// ConsoleDevice is the kernel console device.
const ConsoleDevice = "/dev/console"

// AttachConsole connects standard input, output and error to the given
// console device.
//
// The kernel opens the console for the init process only if the device node
// is present in the initramfs. Otherwise the standard file descriptors are
// closed and nothing would be printed. If standard error is open already,
// nothing is done.
func AttachConsole(state *State, path string) error {
	if state.sys.stdioOpen() {
		return nil
	}

	return state.sys.attach(path)
}

// WithConsole returns a setup [Func] that wraps [AttachConsole] and can be
// used with [Run]. It must run after /dev is mounted. Failure is not fatal.
func WithConsole(path string) Func {
	return func(state *State) error {
		if err := AttachConsole(state, path); err != nil {
			state.Logger().Warn("Console not attached", slog.Any("error", err))
		}

		return nil
	}
}

// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"fmt"
	"log/slog"
	"os"
)

// Func is a function run by [Run].
type Func func(*State) error

// Run is the entry point for an actual init system.
//
// It runs the given functions in the order given with a shared [State]. The
// last function is supposed to replace the process, like [WithExec] does. Run
// never returns. If a function fails, the error is printed to the console
// and the process halts. PID 1 must not exit, as the kernel panics if it
// does. Panics are recovered from.
//
// It must be run as PID 1, otherwise it reports [ErrNotPidOne] and halts as
// well.
//
// A typical example mounting a root share would be:
//
//	Run(
//		WithMountPoints(ProcMountPoints()),
//		WithCmdline(CmdlineFile),
//		WithMountPoints(SystemMountPoints()),
//		WithModules(ModulesDir, TransportModule),
//		WithShares(),
//		WithSwitchRoot(StagingDir, SurvivingMountPoints()),
//		WithExec(),
//	)
//
// See [BootStages] for the complete default sequence.
func Run(funcs ...Func) {
	state := NewState(os.Stderr)

	run(state, funcs)
	halt(state)
}

func run(state *State, funcs []Func) {
	err := ErrNotPidOne
	if state.sys.getpid() == 1 {
		err = runFuncs(state, funcs)
	}

	if err == nil {
		err = ErrNoHandoff
	}

	state.Logger().Error("Boot failed", slog.Any("error", err))
}

func runFuncs(state *State, funcs []Func) (err error) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}

		if recoveredErr, ok := rec.(error); ok {
			err = fmt.Errorf("%w: %w", ErrPanic, recoveredErr)
		} else {
			err = fmt.Errorf("%w: %v", ErrPanic, rec)
		}
	}()

	for _, fn := range funcs {
		if err = fn(state); err != nil {
			return err
		}
	}

	return nil
}

// halt parks the process forever.
func halt(state *State) {
	state.Logger().Error("System halted")

	for {
		state.sys.pause()
	}
}

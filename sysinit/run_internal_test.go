// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunFuncs(t *testing.T) {
	t.Run("stops on error", func(t *testing.T) {
		state, _ := newTestState(t, &fakeSystem{})
		called := 0

		err := runFuncs(state, []Func{
			func(*State) error { called++; return nil },
			func(*State) error { called++; return assert.AnError },
			func(*State) error { called++; return nil },
		})
		require.ErrorIs(t, err, assert.AnError)

		assert.Equal(t, 2, called)
	})

	t.Run("panic with error", func(t *testing.T) {
		state, _ := newTestState(t, &fakeSystem{})

		err := runFuncs(state, []Func{
			func(*State) error { panic(assert.AnError) },
		})
		require.ErrorIs(t, err, ErrPanic)
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("panic with value", func(t *testing.T) {
		state, _ := newTestState(t, &fakeSystem{})

		err := runFuncs(state, []Func{
			func(*State) error { panic("boom") },
		})
		require.ErrorIs(t, err, ErrPanic)
		assert.ErrorContains(t, err, "boom")
	})
}

func TestRun(t *testing.T) {
	tests := []struct {
		name        string
		pid         int
		funcs       []Func
		expectedLog string
	}{
		{
			name:        "not pid one",
			pid:         42,
			funcs:       []Func{func(*State) error { panic("must not run") }},
			expectedLog: "process does not have ID 1",
		},
		{
			name:        "no handoff",
			funcs:       []Func{func(*State) error { return nil }},
			expectedLog: "boot sequence ended without handoff",
		},
		{
			name:        "failure",
			funcs:       []Func{func(*State) error { return assert.AnError }},
			expectedLog: assert.AnError.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &fakeSystem{pid: tt.pid}
			state, out := newTestState(t, sys)

			run(state, tt.funcs)

			assert.Contains(t, out.String(), `level=ERROR msg="Boot failed"`)
			assert.Contains(t, out.String(), tt.expectedLog)
		})
	}
}

func TestHalt(t *testing.T) {
	sys := &fakeSystem{}
	state, out := newTestState(t, sys)

	assert.PanicsWithValue(t, errHalted, func() {
		halt(state)
	})

	assert.Equal(t, []string{"pause"}, sys.calls)
	assert.Contains(t, out.String(), `msg="System halted"`)
}

func TestRun_RootFailurePreventsExec(t *testing.T) {
	sys := &fakeSystem{
		mountErrs: map[string]error{StagingDir: assert.AnError},
	}
	state, out := newTestState(t, sys)

	run(state, []Func{
		WithShares(),
		WithSwitchRoot(StagingDir, SurvivingMountPoints()),
		WithExec(),
	})

	assert.Empty(t, sys.callsWith("exec"))
	assert.Empty(t, sys.callsWith("chroot"))
	assert.Contains(t, out.String(), "root share mount failed")
}

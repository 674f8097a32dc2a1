// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestExec(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		sys           *fakeSystem
		expectedCalls []string
		expectedErr   error
	}{
		{
			name:          "configured init",
			path:          "/usr/bin/bash",
			sys:           &fakeSystem{},
			expectedCalls: []string{"exec /usr/bin/bash bash"},
		},
		{
			name: "fallback",
			path: "/sbin/init",
			sys: &fakeSystem{
				execErrs: map[string]error{"/sbin/init": unix.ENOENT},
			},
			expectedCalls: []string{
				"exec /sbin/init init",
				"exec /bin/sh sh",
			},
		},
		{
			name: "fallback fails",
			path: "/sbin/init",
			sys: &fakeSystem{
				execErrs: map[string]error{
					"/sbin/init": unix.ENOENT,
					"/bin/sh":    unix.EACCES,
				},
			},
			expectedCalls: []string{
				"exec /sbin/init init",
				"exec /bin/sh sh",
			},
			expectedErr: unix.EACCES,
		},
		{
			name: "default not retried",
			path: DefaultInit,
			sys: &fakeSystem{
				execErrs: map[string]error{"/bin/sh": unix.ENOENT},
			},
			expectedCalls: []string{"exec /bin/sh sh"},
			expectedErr:   unix.ENOENT,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, _ := newTestState(t, tt.sys)

			err := Exec(state, tt.path)
			require.ErrorIs(t, err, tt.expectedErr)

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, ErrExec)
			}

			assert.Equal(t, tt.expectedCalls, tt.sys.calls)
		})
	}
}

func TestExec_BothErrorsReported(t *testing.T) {
	sys := &fakeSystem{
		execErrs: map[string]error{
			"/sbin/init": unix.ENOENT,
			"/bin/sh":    unix.EACCES,
		},
	}
	state, out := newTestState(t, sys)

	err := Exec(state, "/sbin/init")
	require.ErrorIs(t, err, unix.ENOENT)
	require.ErrorIs(t, err, unix.EACCES)

	assert.Contains(t, out.String(), `level=ERROR msg="Init failed, trying fallback"`)
}

func TestWithExec(t *testing.T) {
	sys := &fakeSystem{}
	state, _ := newTestState(t, sys)
	state.SetConfig(ParseCmdline("init=/usr/lib/systemd/systemd"))

	err := WithExec()(state)
	require.NoError(t, err)

	assert.Equal(t, []string{"exec /usr/lib/systemd/systemd systemd"}, sys.calls)
}

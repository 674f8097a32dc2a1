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

func TestWithConsole(t *testing.T) {
	tests := []struct {
		name          string
		sys           *fakeSystem
		expectedCalls []string
		expectedLog   string
	}{
		{
			name: "already open",
			sys:  &fakeSystem{},
		},
		{
			name:          "attach",
			sys:           &fakeSystem{stdioClosed: true},
			expectedCalls: []string{"console /dev/console"},
		},
		{
			name: "attach fails",
			sys: &fakeSystem{
				stdioClosed: true,
				attachErr:   unix.ENOENT,
			},
			expectedCalls: []string{"console /dev/console"},
			expectedLog:   `level=WARN msg="Console not attached"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, out := newTestState(t, tt.sys)

			err := WithConsole(ConsoleDevice)(state)
			require.NoError(t, err)

			assert.Equal(t, tt.expectedCalls, tt.sys.calls)

			if tt.expectedLog == "" {
				assert.Empty(t, out.String())
			} else {
				assert.Contains(t, out.String(), tt.expectedLog)
			}
		})
	}
}

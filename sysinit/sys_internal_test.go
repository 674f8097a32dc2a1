// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// errHalted is raised by the fake pause to leave the halt loop.
var errHalted = errors.New("halted")

// fakeSystem records all system operations instead of executing them.
type fakeSystem struct {
	calls []string

	// Errors by target path.
	mountErrs   map[string]error
	unmountErrs map[string]error
	mkdirErrs   map[string]error
	symlinkErrs map[string]error
	mknodErrs   map[string]error
	loadErrs    map[string]error
	execErrs    map[string]error
	chdirErrs   map[string]error
	linkErr     error
	chrootErr   error
	attachErr   error

	stdioClosed bool

	filesystems    []string
	filesystemsErr error

	existing map[string]bool
	mounted  map[string]bool
	pid      int
}

func (f *fakeSystem) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

// callsWith returns all recorded calls with the given prefix.
func (f *fakeSystem) callsWith(prefix string) []string {
	calls := []string{}

	for _, call := range f.calls {
		if strings.HasPrefix(call, prefix) {
			calls = append(calls, call)
		}
	}

	return calls
}

func (f *fakeSystem) syscalls() syscalls {
	return syscalls{
		mount: func(source, target, fsType string, flags uintptr, data string) error {
			f.record("mount %s %s %s %#x %s", source, target, fsType, flags, data)
			return f.mountErrs[target]
		},
		unmount: func(target string, flags int) error {
			f.record("unmount %s %#x", target, flags)
			return f.unmountErrs[target]
		},
		mounted: func(path string) (bool, error) {
			return f.mounted[path], nil
		},
		mkdirAll: func(path string) error {
			f.record("mkdir %s", path)
			return f.mkdirErrs[path]
		},
		exists: func(path string) bool {
			return f.existing[path]
		},
		symlink: func(target, link string) error {
			f.record("symlink %s %s", link, target)
			return f.symlinkErrs[link]
		},
		mknod: func(path string, mode uint32, dev int) error {
			f.record("mknod %s %#o %d", path, mode, dev)
			return f.mknodErrs[path]
		},
		loadModule: func(path, _ string) error {
			f.record("load %s", path)
			return f.loadErrs[path]
		},
		linkUp: func(name string) error {
			f.record("linkup %s", name)
			return f.linkErr
		},
		chdir: func(path string) error {
			f.record("chdir %s", path)
			return f.chdirErrs[path]
		},
		chroot: func(path string) error {
			f.record("chroot %s", path)
			return f.chrootErr
		},
		exec: func(path string, argv []string) error {
			f.record("exec %s %s", path, strings.Join(argv, " "))
			return f.execErrs[path]
		},
		getpid: func() int {
			return f.pid
		},
		pause: func() {
			f.record("pause")
			panic(errHalted)
		},
		stdioOpen: func() bool {
			return !f.stdioClosed
		},
		attach: func(path string) error {
			f.record("console %s", path)
			return f.attachErr
		},
		filesystems: func() ([]string, error) {
			return f.filesystems, f.filesystemsErr
		},
	}
}

func newTestState(t *testing.T, sys *fakeSystem) (*State, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer

	if sys.pid == 0 {
		sys.pid = 1
	}

	return newState(&out, sys.syscalls()), &out
}

// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/aibor/virtinit/internal/kmod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bootTestFiles(t *testing.T, cmdline string) (string, string) {
	t.Helper()

	cmdlineFile := filepath.Join(t.TempDir(), "cmdline")
	err := os.WriteFile(cmdlineFile, []byte(cmdline+"\n"), 0o600)
	require.NoError(t, err)

	dir := modulesDir(t, map[string]string{
		kmod.IndexFile: virtiofsIndex,
	})

	return cmdlineFile, dir
}

// bootTestSystem has all surviving mount points present in the new root.
func bootTestSystem() *fakeSystem {
	existing := map[string]bool{}
	for _, path := range SurvivingMountPoints() {
		existing[filepath.Join(StagingDir, path)] = true
	}

	return &fakeSystem{existing: existing}
}

// shareMounts returns the recorded virtiofs mounts.
func shareMounts(sys *fakeSystem) []string {
	mounts := []string{}

	for _, call := range sys.callsWith("mount ") {
		if strings.Contains(call, " "+string(FSTypeVirtioFS)+" ") {
			mounts = append(mounts, call)
		}
	}

	return mounts
}

func assertCallOrder(t *testing.T, calls []string, expected ...string) {
	t.Helper()

	last := -1

	for _, call := range expected {
		idx := slices.Index(calls, call)
		if !assert.Greater(t, idx, last, "call %q out of order", call) {
			return
		}

		last = idx
	}
}

func TestBootStages(t *testing.T) {
	t.Run("full command line", func(t *testing.T) {
		cmdlineFile, dir := bootTestFiles(t,
			"console=ttyS0 init=/usr/bin/bash rootfs=myroot mount=data mount-ro=cache debug")

		sys := bootTestSystem()
		state, out := newTestState(t, sys)

		run(state, bootStages(cmdlineFile, dir))

		assert.Equal(t, []string{
			"mount myroot /sysroot virtiofs 0x0 ",
			"mount data /run/mnt/data virtiofs 0x0 ",
			"mount cache /run/mnt/cache virtiofs 0x1 ",
		}, shareMounts(sys))
		assert.Equal(t, []string{
			"load " + dir + "/kernel/fs/fuse/fuse.ko",
			"load " + dir + "/kernel/drivers/virtio/virtio_ring.ko",
			"load " + dir + "/kernel/fs/fuse/virtiofs.ko",
		}, sys.callsWith("load "))
		assert.Equal(t, []string{"exec /usr/bin/bash bash"}, sys.callsWith("exec "))

		assertCallOrder(t, sys.calls,
			"mount proc /proc proc 0xe ",
			"mount devtmpfs /dev devtmpfs 0x2 mode=0755,size=4m",
			"symlink /dev/fd /proc/self/fd",
			"linkup lo",
			"load "+dir+"/kernel/fs/fuse/virtiofs.ko",
			"mount myroot /sysroot virtiofs 0x0 ",
			"mount cache /run/mnt/cache virtiofs 0x1 ",
			"mount /run /sysroot/run  0x2000 ",
			"chroot .",
			"exec /usr/bin/bash bash",
		)
		assert.Equal(t, "exec /usr/bin/bash bash", sys.calls[len(sys.calls)-1])
		assert.Contains(t, out.String(), `level=DEBUG msg="Boot parameters parsed"`)
	})

	t.Run("empty command line", func(t *testing.T) {
		cmdlineFile, dir := bootTestFiles(t, "")

		sys := bootTestSystem()
		state, out := newTestState(t, sys)

		run(state, bootStages(cmdlineFile, dir))

		assert.Equal(t, []string{
			"mount rootfs /sysroot virtiofs 0x0 ",
		}, shareMounts(sys))
		assert.Equal(t, []string{"exec /bin/sh sh"}, sys.callsWith("exec "))
		assert.NotContains(t, out.String(), "level=DEBUG")
	})

	t.Run("missing command line", func(t *testing.T) {
		_, dir := bootTestFiles(t, "")

		sys := bootTestSystem()
		state, out := newTestState(t, sys)

		run(state, bootStages(filepath.Join(dir, "missing"), dir))

		assert.Equal(t, []string{"exec /bin/sh sh"}, sys.callsWith("exec "))
		assert.Contains(t, out.String(), `level=WARN msg="Using default boot config"`)
	})

	t.Run("root share fails", func(t *testing.T) {
		cmdlineFile, dir := bootTestFiles(t, "mount=data")

		sys := bootTestSystem()
		sys.mountErrs = map[string]error{StagingDir: assert.AnError}
		state, out := newTestState(t, sys)

		run(state, bootStages(cmdlineFile, dir))

		assert.Equal(t, []string{
			"mount rootfs /sysroot virtiofs 0x0 ",
		}, shareMounts(sys))
		assert.Empty(t, sys.callsWith("chroot"))
		assert.Empty(t, sys.callsWith("exec "))
		assert.Contains(t, out.String(), "root share mount failed")
	})

	t.Run("transport module missing", func(t *testing.T) {
		cmdlineFile := filepath.Join(t.TempDir(), "cmdline")
		require.NoError(t, os.WriteFile(cmdlineFile, nil, 0o600))

		sys := bootTestSystem()
		state, out := newTestState(t, sys)

		run(state, bootStages(cmdlineFile, modulesDir(t, nil)))

		assert.Empty(t, shareMounts(sys))
		assert.Empty(t, sys.callsWith("exec "))
		assert.Contains(t, out.String(), "module not found")
	})

	t.Run("transport built in without module files", func(t *testing.T) {
		cmdlineFile := filepath.Join(t.TempDir(), "cmdline")
		require.NoError(t, os.WriteFile(cmdlineFile, []byte("mount=data"), 0o600))

		sys := bootTestSystem()
		sys.filesystems = []string{"proc", "fuse", "virtiofs"}
		state, _ := newTestState(t, sys)

		run(state, bootStages(cmdlineFile, modulesDir(t, nil)))

		assert.Empty(t, sys.callsWith("load "))
		assert.Equal(t, []string{
			"mount rootfs /sysroot virtiofs 0x0 ",
			"mount data /run/mnt/data virtiofs 0x0 ",
		}, shareMounts(sys))
		assert.Equal(t, []string{"exec /bin/sh sh"}, sys.callsWith("exec "))
	})
}

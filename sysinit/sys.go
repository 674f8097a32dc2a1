// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"errors"
	"fmt"
	"os"

	"github.com/moby/sys/mountinfo"
	"golang.org/x/sys/unix"
)

type finitFlags int

const finitFlagCompressedFile finitFlags = unix.MODULE_INIT_COMPRESSED_FILE

// syscalls is the set of system operations the boot stages are built on.
type syscalls struct {
	mount       func(source, target, fsType string, flags uintptr, data string) error
	unmount     func(target string, flags int) error
	mounted     func(path string) (bool, error)
	mkdirAll    func(path string) error
	exists      func(path string) bool
	symlink     func(target, link string) error
	mknod       func(path string, mode uint32, dev int) error
	loadModule  func(path, params string) error
	linkUp      func(name string) error
	chdir       func(path string) error
	chroot      func(path string) error
	exec        func(path string, argv []string) error
	getpid      func() int
	pause       func()
	stdioOpen   func() bool
	attach      func(path string) error
	filesystems func() ([]string, error)
}

func hostSyscalls() syscalls {
	return syscalls{
		mount:       mount,
		unmount:     unmount,
		mounted:     mountinfo.Mounted,
		mkdirAll:    mkdirAll,
		exists:      exists,
		symlink:     os.Symlink,
		mknod:       mknod,
		loadModule:  LoadModule,
		linkUp:      setLinkUp,
		chdir:       chdir,
		chroot:      chroot,
		exec:        execve,
		getpid:      os.Getpid,
		pause:       pause,
		stdioOpen:   stdioOpen,
		attach:      attachConsole,
		filesystems: registeredFilesystems,
	}
}

func mount(source, target, fsType string, flags uintptr, data string) error {
	if err := unix.Mount(source, target, fsType, flags, data); err != nil {
		return fmt.Errorf("mount %s: %w", target, err)
	}

	return nil
}

func unmount(target string, flags int) error {
	if err := unix.Unmount(target, flags); err != nil {
		return fmt.Errorf("unmount %s: %w", target, err)
	}

	return nil
}

func mkdirAll(path string) error {
	if err := os.MkdirAll(path, defaultDirMode); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}

	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func mknod(path string, mode uint32, dev int) error {
	if err := unix.Mknod(path, mode, dev); err != nil {
		return fmt.Errorf("mknod %s: %w", path, err)
	}

	return nil
}

func initModule(data []byte, params string) error {
	if err := unix.InitModule(data, params); err != nil {
		return fmt.Errorf("init_module: %w", err)
	}

	return nil
}

func finitModule(fd int, params string, flags finitFlags) error {
	if err := unix.FinitModule(fd, params, int(flags)); err != nil {
		// If finit_module is not available, EOPNOTSUPP is returned.
		if errors.Is(err, unix.EOPNOTSUPP) {
			err = errors.ErrUnsupported
		}

		return fmt.Errorf("finit_module: %w", err)
	}

	return nil
}

func chdir(path string) error {
	if err := unix.Chdir(path); err != nil {
		return fmt.Errorf("chdir %s: %w", path, err)
	}

	return nil
}

func chroot(path string) error {
	if err := unix.Chroot(path); err != nil {
		return fmt.Errorf("chroot %s: %w", path, err)
	}

	return nil
}

// execve replaces the process image. It only returns in case of error.
func execve(path string, argv []string) error {
	if err := unix.Exec(path, argv, os.Environ()); err != nil {
		return fmt.Errorf("exec %s: %w", path, err)
	}

	return nil
}

func pause() {
	_ = unix.Pause()
}

// stdioOpen checks if standard error is an open file descriptor.
func stdioOpen() bool {
	_, err := unix.FcntlInt(uintptr(unix.Stderr), unix.F_GETFD, 0)
	return err == nil
}

// attachConsole opens the console device and duplicates it onto standard
// input, output and error.
func attachConsole(path string) error {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	// With all standard descriptors closed, the console gets one of them.
	for _, stdFd := range []int{unix.Stdin, unix.Stdout, unix.Stderr} {
		if stdFd == fd {
			continue
		}

		if err := unix.Dup3(fd, stdFd, 0); err != nil {
			_ = unix.Close(fd)
			return fmt.Errorf("dup %d: %w", stdFd, err)
		}
	}

	if fd > unix.Stderr {
		_ = unix.Close(fd)
	}

	return nil
}

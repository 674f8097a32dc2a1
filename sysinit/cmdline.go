// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	// CmdlineFile is the file the kernel exposes its command line in.
	CmdlineFile = "/proc/cmdline"

	// DefaultInit is the program run if no init is given. It is also the
	// fallback if the given init can not be executed.
	DefaultInit = "/bin/sh"

	// DefaultRootfsTag is the virtiofs tag of the root share if no other is
	// given.
	DefaultRootfsTag = "rootfs"

	// SharesDir is the directory additional shares are mounted in. Each share
	// is mounted in a sub directory named like its tag.
	SharesDir = "/run/mnt"
)

// Boot parameter keys.
const (
	paramInit    = "init"
	paramDebug   = "debug"
	paramRootfs  = "rootfs"
	paramMount   = "mount"
	paramMountRO = "mount-ro"
)

// MountMode defines if a share is mounted writable.
type MountMode int

const (
	// ReadWrite mounts a share writable.
	ReadWrite MountMode = iota
	// ReadOnly mounts a share read-only.
	ReadOnly
)

func (m MountMode) String() string {
	if m == ReadOnly {
		return "ro"
	}

	return "rw"
}

// MountSpec is an additional share to mount.
type MountSpec struct {
	Tag  string
	Mode MountMode
}

// Path returns the path the share is mounted at.
func (m MountSpec) Path() string {
	return filepath.Join(SharesDir, m.Tag)
}

// BootConfig is the configuration read from the kernel command line.
type BootConfig struct {
	// Init is the program that replaces this process once the root share is
	// set up.
	Init string

	// Debug enables diagnostic output for every boot step.
	Debug bool

	// RootfsTag is the virtiofs tag of the root share.
	RootfsTag string

	// Mounts are additional shares in the order given.
	Mounts []MountSpec
}

// DefaultBootConfig returns the [BootConfig] used for an empty command line.
func DefaultBootConfig() BootConfig {
	return BootConfig{
		Init:      DefaultInit,
		RootfsTag: DefaultRootfsTag,
	}
}

// LogValue implements [slog.LogValuer].
func (c BootConfig) LogValue() slog.Value {
	mounts := make([]string, 0, len(c.Mounts))
	for _, mount := range c.Mounts {
		mounts = append(mounts, mount.Tag+":"+mount.Mode.String())
	}

	return slog.GroupValue(
		slog.String("init", c.Init),
		slog.Bool("debug", c.Debug),
		slog.String("rootfs", c.RootfsTag),
		slog.Any("mounts", mounts),
	)
}

// ParseCmdline parses the given kernel command line into a [BootConfig].
//
// Parameters are separated by white space. Each is either "key=value" or a
// bare "key". Unknown parameters are ignored, as the kernel passes its own
// parameters as well. Parsing never fails. Parameters with invalid values are
// ignored and the default is kept. For "init" and "rootfs" the first valid
// occurrence wins. "debug" is enabled by its presence, whatever its value.
// "mount" and "mount-ro" may be given multiple times and are kept in order.
func ParseCmdline(cmdline string) BootConfig {
	cfg := DefaultBootConfig()

	var initSet, rootfsSet bool

	for _, param := range strings.Fields(cmdline) {
		key, value, _ := strings.Cut(param, "=")

		switch key {
		case paramInit:
			if value != "" && !initSet {
				cfg.Init = value
				initSet = true
			}
		case paramDebug:
			cfg.Debug = true
		case paramRootfs:
			if value != "" && !rootfsSet {
				cfg.RootfsTag = value
				rootfsSet = true
			}
		case paramMount:
			cfg.Mounts = appendMount(cfg.Mounts, value, ReadWrite)
		case paramMountRO:
			cfg.Mounts = appendMount(cfg.Mounts, value, ReadOnly)
		}
	}

	return cfg
}

func appendMount(mounts []MountSpec, tag string, mode MountMode) []MountSpec {
	if !isValidTag(tag) {
		return mounts
	}

	return append(mounts, MountSpec{Tag: tag, Mode: mode})
}

// isValidTag checks that the tag can be used as a single directory name in
// [SharesDir].
func isValidTag(tag string) bool {
	return tag != "" && tag != "." && tag != ".." && !strings.Contains(tag, "/")
}

// ReadCmdline reads the kernel command line from the given file.
func ReadCmdline(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read cmdline: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

// WithCmdline returns a setup [Func] that reads the kernel command line from
// the given file and sets the parsed [BootConfig] for all following [Func]s.
//
// If the file can not be read, the default config is used.
func WithCmdline(path string) Func {
	return func(state *State) error {
		cmdline, err := ReadCmdline(path)
		if err != nil {
			state.Logger().Warn("Using default boot config", slog.Any("error", err))
		}

		state.SetConfig(ParseCmdline(cmdline))
		state.Logger().Debug("Boot parameters parsed",
			slog.String("cmdline", cmdline),
			slog.Any("config", state.Config()),
		)

		return nil
	}
}

// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/aibor/virtinit/internal/initramfs"
	"golang.org/x/sys/unix"
)

const (
	defaultInitName = "init"
	defaultOutput   = "initramfs.img"
	hostModulesDir  = "/lib/modules"
)

// Config is the build configuration.
type Config struct {
	// Init is the path of the init binary. It is added as /init.
	Init string

	// ModulesDir is the kernel module directory the modules are taken from.
	ModulesDir string

	// Modules are the names of the modules to add and load on boot in
	// addition to the virtiofs module.
	Modules []string

	// Compression of the archive.
	Compression initramfs.Compression

	// Output is the path of the archive file to write.
	Output string

	// Debug enables debug log messages.
	Debug bool
}

// DefaultConfig returns a [Config] that uses the init binary next to the
// running executable and the module directory of the running kernel.
// Defaults that can not be determined are left empty.
func DefaultConfig() Config {
	cfg := Config{
		Compression: initramfs.CompressionGzip,
		Output:      defaultOutput,
	}

	if executable, err := os.Executable(); err == nil {
		cfg.Init = filepath.Join(filepath.Dir(executable), defaultInitName)
	}

	if release, err := kernelRelease(); err == nil {
		cfg.ModulesDir = filepath.Join(hostModulesDir, release)
	}

	return cfg
}

// kernelRelease returns the release of the running kernel.
func kernelRelease() (string, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", fmt.Errorf("uname: %w", err)
	}

	return unix.ByteSliceToString(uts.Release[:]), nil
}

type fileConfig struct {
	Init        string                `toml:"init"`
	ModulesDir  string                `toml:"modules_dir"`
	Modules     []string              `toml:"modules"`
	Compression initramfs.Compression `toml:"compression"`
	Output      string                `toml:"output"`
	Debug       bool                  `toml:"debug"`
}

// loadConfigFile reads the TOML file at path and overrides the values of cfg
// that are defined in the file.
func loadConfigFile(path string, cfg *Config) error {
	var raw fileConfig

	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config: unknown keys: %v", undecoded)
	}

	if meta.IsDefined("init") {
		cfg.Init = strings.TrimSpace(raw.Init)
	}

	if meta.IsDefined("modules_dir") {
		cfg.ModulesDir = strings.TrimSpace(raw.ModulesDir)
	}

	if meta.IsDefined("modules") {
		cfg.Modules = raw.Modules
	}

	if meta.IsDefined("compression") {
		cfg.Compression = raw.Compression
	}

	if meta.IsDefined("output") {
		cfg.Output = strings.TrimSpace(raw.Output)
	}

	if meta.IsDefined("debug") {
		cfg.Debug = raw.Debug
	}

	return nil
}

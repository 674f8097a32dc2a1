// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"flag"
	"io"
	"slices"
	"strings"
)

const (
	name = "mkinitramfs"

	usageMessage = `Usage of 'mkinitramfs':
    mkinitramfs [flags...] [module...]

Builds an initramfs archive with the virtiofs init as /init, the virtiofs
kernel module and the given modules with all their dependencies. Modules are
loaded in the given order on boot.

Flags given on the command line override values from the config file.

`
)

// moduleList is a [flag.Value] for a list of module names. Names may be
// separated by comma. An empty value resets the list.
type moduleList []string

func (m *moduleList) String() string {
	return strings.Join(*m, ",")
}

func (m *moduleList) Set(s string) error {
	if s == "" {
		*m = nil
		return nil
	}

	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			*m = append(*m, name)
		}
	}

	return nil
}

type flags struct {
	cfg        Config
	defaults   Config
	configFile string
	version    bool
	flagSet    *flag.FlagSet
}

func newFlags(defaults Config, output io.Writer) *flags {
	flags := &flags{
		cfg:      defaults,
		defaults: defaults,
	}
	flags.cfg.Modules = slices.Clone(defaults.Modules)

	flags.initFlagset(output)

	return flags
}

func (f *flags) initFlagset(output io.Writer) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(
		&f.configFile,
		"config",
		"",
		"TOML `file` with build configuration",
	)

	fs.StringVar(
		&f.cfg.Init,
		"init",
		f.cfg.Init,
		"init `binary` to add as /init",
	)

	fs.StringVar(
		&f.cfg.ModulesDir,
		"modules-dir",
		f.cfg.ModulesDir,
		"kernel module `directory` with modules.dep",
	)

	fs.Var(
		(*moduleList)(&f.cfg.Modules),
		"module",
		"kernel `module` to add. May be used more than once, empty value resets",
	)

	fs.TextVar(
		&f.cfg.Compression,
		"compression",
		f.cfg.Compression,
		"archive compression: none, gzip, zstd",
	)

	fs.StringVar(
		&f.cfg.Output,
		"o",
		f.cfg.Output,
		"output `file`",
	)

	fs.BoolVar(
		&f.cfg.Debug,
		"debug",
		f.cfg.Debug,
		"enable debug output",
	)

	fs.BoolVar(
		&f.version,
		"version",
		false,
		"show version and exit",
	)

	fs.Usage = func() {
		_, _ = io.WriteString(fs.Output(), usageMessage)
		fs.PrintDefaults()
	}

	f.flagSet = fs
}

func (f *flags) fail(msg string, err error) error {
	_, _ = io.WriteString(f.flagSet.Output(), msg+"\n")
	f.flagSet.Usage()

	return &ParseArgsError{msg: msg, err: err}
}

// parseArgs parses the given arguments without program name.
func (f *flags) parseArgs(args []string) error {
	err := f.flagSet.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ErrHelp
		}

		return &ParseArgsError{msg: "flag parse", err: err}
	}

	if f.version {
		return nil
	}

	if f.configFile != "" {
		if err := f.applyConfigFile(); err != nil {
			return f.fail("config file", err)
		}
	}

	// Positional arguments are additional module names.
	f.cfg.Modules = append(f.cfg.Modules, f.flagSet.Args()...)

	if f.cfg.Init == "" {
		return f.fail("no init binary given (use -init)", nil)
	}

	if f.cfg.ModulesDir == "" {
		return f.fail("no modules directory given (use -modules-dir)", nil)
	}

	if f.cfg.Output == "" {
		return f.fail("no output file given (use -o)", nil)
	}

	return nil
}

// applyConfigFile loads the config file on top of the defaults and applies
// the flags given on the command line again, so they take precedence.
func (f *flags) applyConfigFile() error {
	cfg := f.defaults

	if err := loadConfigFile(f.configFile, &cfg); err != nil {
		return err
	}

	f.flagSet.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "init":
			cfg.Init = f.cfg.Init
		case "modules-dir":
			cfg.ModulesDir = f.cfg.ModulesDir
		case "module":
			cfg.Modules = f.cfg.Modules
		case "compression":
			cfg.Compression = f.cfg.Compression
		case "o":
			cfg.Output = f.cfg.Output
		case "debug":
			cfg.Debug = f.cfg.Debug
		}
	})

	f.cfg = cfg

	return nil
}

// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
)

// IO provides output details for the command.
type IO struct {
	Stdout io.Writer
	Stderr io.Writer
}

func handleParseArgsError(err error, stderr io.Writer) int {
	// [ErrHelp] is returned when help is requested. So exit without error
	// in this case.
	if errors.Is(err, ErrHelp) {
		return 0
	}

	// Argument errors are printed with the usage already.
	if !errors.Is(err, &ParseArgsError{}) {
		newLogger(stderr, false).Error(err.Error())
	}

	return 2
}

// Run is the main entry point for the CLI command. The args must not contain
// the program name.
func Run(args []string, defaults Config, cfg IO) int {
	flags := newFlags(defaults, cfg.Stderr)

	if err := flags.parseArgs(args); err != nil {
		return handleParseArgsError(err, cfg.Stderr)
	}

	log := newLogger(cfg.Stderr, flags.cfg.Debug)

	if flags.version {
		buildInfo, err := getBuildInfo()
		if err != nil {
			log.Error(err.Error())
			return 1
		}

		fmt.Fprintf(cfg.Stdout, "Version: %s\n", buildInfo.Main.Version)

		return 0
	}

	log.Debug("Build configuration",
		slog.String("init", flags.cfg.Init),
		slog.String("modules_dir", flags.cfg.ModulesDir),
		slog.Any("modules", flags.cfg.Modules),
	)

	if err := Build(flags.cfg, log); err != nil {
		log.Error("Build failed", slog.Any("error", err))
		return 1
	}

	return 0
}

func getBuildInfo() (*debug.BuildInfo, error) {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, ErrReadBuildInfo
	}

	return buildInfo, nil
}

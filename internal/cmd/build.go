// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aibor/virtinit/internal/initramfs"
	"github.com/aibor/virtinit/internal/kmod"
	"github.com/aibor/virtinit/sysinit"
)

const (
	initMode   = 0o755
	moduleMode = 0o644

	// usrModulesDir links to the module directory for tools that expect a
	// merged /usr layout.
	usrModulesDir = "usr/lib/modules"
)

// archiveModulesDir is the module directory in the archive. It is the
// directory the init reads from.
var archiveModulesDir = strings.TrimPrefix(sysinit.ModulesDir, "/")

// Build creates the archive as described by the given [Config].
//
// The archive contains the init binary as /init and the module files of the
// virtiofs module and the configured modules with all their dependencies.
// Next to it, a dependency index restricted to the added modules, the
// built-in list of the source directory and the list of the configured
// modules are added, so the init loads the same modules in the same order.
func Build(cfg Config, log *slog.Logger) error {
	archive, err := newArchive(cfg, log)
	if err != nil {
		return err
	}

	if err := archive.WriteFile(cfg.Output, cfg.Compression); err != nil {
		return err
	}

	log.Info("Archive written",
		slog.String("path", cfg.Output),
		slog.String("compression", cfg.Compression.String()),
	)

	return nil
}

func newArchive(cfg Config, log *slog.Logger) (*initramfs.Archive, error) {
	graph, builtinList, err := readModulesDir(cfg.ModulesDir)
	if err != nil {
		return nil, err
	}

	requested := slices.Concat([]string{sysinit.TransportModule}, cfg.Modules)

	plan, err := graph.Plan(requested, nil)
	if err != nil {
		return nil, fmt.Errorf("plan modules: %w", err)
	}

	archive := initramfs.New()

	if err := archive.AddLocalFile("init", cfg.Init, initMode); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	for _, dir := range rootLayout() {
		if err := archive.MkdirAll(dir); err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
	}

	for _, module := range plan {
		log.Debug("Add module",
			slog.String("name", module.Name),
			slog.String("path", module.Path),
		)

		err := archive.AddLocalFile(
			path.Join(archiveModulesDir, filepath.ToSlash(module.Path)),
			filepath.Join(cfg.ModulesDir, module.Path),
			moduleMode,
		)
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", module.Name, err)
		}
	}

	var index bytes.Buffer
	if err := graph.WriteIndex(&index, plan); err != nil {
		return nil, fmt.Errorf("write index: %w", err)
	}

	metadata := map[string][]byte{
		kmod.IndexFile:   index.Bytes(),
		kmod.BuiltinFile: builtinList,
		kmod.RequestFile: []byte(moduleListFile(cfg.Modules)),
	}

	for _, name := range []string{kmod.IndexFile, kmod.BuiltinFile, kmod.RequestFile} {
		err := archive.AddBytes(path.Join(archiveModulesDir, name), moduleMode, metadata[name])
		if err != nil {
			return nil, fmt.Errorf("add %s: %w", name, err)
		}
	}

	relTarget, err := filepath.Rel(path.Dir(usrModulesDir), archiveModulesDir)
	if err != nil {
		return nil, fmt.Errorf("modules link: %w", err)
	}

	if err := archive.Symlink(filepath.ToSlash(relTarget), usrModulesDir); err != nil {
		return nil, fmt.Errorf("modules link: %w", err)
	}

	logEntries(log, archive)

	log.Debug("Archive assembled",
		slog.Int("modules", len(plan)),
		slog.Int("entries", len(archive.Paths())),
	)

	return archive, nil
}

// rootLayout returns the directories the init mounts on. The kernel opens
// the console below /dev before the init runs.
func rootLayout() []string {
	return slices.Concat(
		[]string{sysinit.StagingDir, sysinit.SharesDir},
		sysinit.SurvivingMountPoints(),
	)
}

func logEntries(log *slog.Logger, archive *initramfs.Archive) {
	for _, entryPath := range archive.Paths() {
		entry, _ := archive.Entry(entryPath)
		log.Debug("Archive entry",
			slog.String("path", entryPath),
			slog.String("type", entry.String()),
		)
	}
}

// readModulesDir reads the dependency index and the raw built-in list of the
// given module directory. The index is required, the built-in list is
// optional.
func readModulesDir(dir string) (*kmod.Graph, []byte, error) {
	indexFile, err := os.Open(filepath.Join(dir, kmod.IndexFile))
	if err != nil {
		return nil, nil, fmt.Errorf("open index: %w", err)
	}
	defer indexFile.Close()

	graph, err := kmod.ParseIndex(indexFile)
	if err != nil {
		return nil, nil, fmt.Errorf("parse index: %w", err)
	}

	builtinList, err := os.ReadFile(filepath.Join(dir, kmod.BuiltinFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("read built-in list: %w", err)
	}

	builtin, err := kmod.ParseList(bytes.NewReader(builtinList))
	if err != nil {
		return nil, nil, fmt.Errorf("parse built-in list: %w", err)
	}

	graph.AddBuiltin(builtin...)

	return graph, builtinList, nil
}

func moduleListFile(names []string) string {
	var builder strings.Builder

	for _, name := range names {
		builder.WriteString(kmod.Normalize(name))
		builder.WriteByte('\n')
	}

	return builder.String()
}

// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: MIT

package sysinit

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/aibor/virtinit/internal/kmod"
	"golang.org/x/sys/unix"
)

const (
	// ModulesDir is the directory kernel modules and their metadata files are
	// looked up in.
	ModulesDir = "/lib/modules"

	// TransportModule is the kernel module providing the virtiofs file
	// system. It is always requested.
	TransportModule = "virtiofs"

	sysModuleDir = "/sys/module"
)

// LoadModules loads the required modules and the modules listed in the
// request file of the given modules directory, each with all its
// dependencies in dependency order.
//
// The directory may contain the dependency index, the list of built-in
// modules and the request list. See [kmod.IndexFile], [kmod.BuiltinFile] and
// [kmod.RequestFile]. Missing files are treated as empty. Modules that are
// built into the kernel are skipped. The complete load plan is computed
// before the first module is loaded, so dependency cycles and unknown modules
// fail before anything is loaded.
func LoadModules(state *State, dir string, required ...string) error {
	graph, err := readModuleGraph(dir)
	if err != nil {
		return err
	}

	listed, err := readModuleList(filepath.Join(dir, kmod.RequestFile))
	if err != nil {
		return err
	}

	requested := slices.Concat(required, listed)

	// Modules without index entry might still be present in the kernel.
	for _, name := range requested {
		if _, exists := graph.Module(name); !exists && isPresent(state, name) {
			graph.AddBuiltin(name)
		}
	}

	plan, err := graph.Plan(requested, state.loaded)
	if err != nil {
		return fmt.Errorf("plan modules: %w", err)
	}

	for _, module := range plan {
		err := loadPlannedModule(state, graph, dir, module)
		if err != nil {
			return fmt.Errorf("load module %s: %w", module.Name, err)
		}
	}

	return nil
}

func loadPlannedModule(
	state *State,
	graph *kmod.Graph,
	dir string,
	module kmod.Module,
) error {
	log := state.Logger().With(
		slog.String("name", module.Name),
		slog.String("path", module.Path),
	)

	log.Debug("Load module")
	state.loaded.Add(module.Name)

	err := state.sys.loadModule(filepath.Join(dir, module.Path), "")

	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.EEXIST):
		log.Debug("Module already present")
		return nil
	case errors.Is(err, fs.ErrNotExist) &&
		(graph.IsBuiltin(module.Name) || isPresent(state, module.Name)):
		log.Debug("Module is built-in")
		return nil
	default:
		return err
	}
}

// isPresent checks if the kernel knows the named module already. This is
// the case for loaded modules and for built-in modules that have parameters.
// Built-in file system modules are found by their registered type.
func isPresent(state *State, name string) bool {
	return state.sys.exists(filepath.Join(sysModuleDir, name)) ||
		isRegisteredFilesystem(state, name)
}

func readModuleGraph(dir string) (*kmod.Graph, error) {
	var graph *kmod.Graph

	index, err := os.Open(filepath.Join(dir, kmod.IndexFile))

	switch {
	case err == nil:
		defer index.Close()

		graph, err = kmod.ParseIndex(index)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", kmod.IndexFile, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		graph = kmod.NewGraph()
	default:
		return nil, fmt.Errorf("open index: %w", err)
	}

	builtin, err := readModuleList(filepath.Join(dir, kmod.BuiltinFile))
	if err != nil {
		return nil, err
	}

	graph.AddBuiltin(builtin...)

	return graph, nil
}

// readModuleList reads a module list file. A missing file is an empty list.
func readModuleList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("open module list: %w", err)
	}
	defer file.Close()

	names, err := kmod.ParseList(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return names, nil
}

// WithModules returns a setup [Func] that wraps [LoadModules] and can be used
// with [Run].
func WithModules(dir string, required ...string) Func {
	return func(state *State) error {
		return LoadModules(state, dir, required...)
	}
}

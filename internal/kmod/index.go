// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package kmod

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Well-known file names in a modules directory.
const (
	IndexFile   = "modules.dep"
	BuiltinFile = "modules.builtin"
	RequestFile = "modules.load"
)

// ParseIndex parses a dependency index in the format depmod writes into
// modules.dep:
//
//	kernel/fs/fuse/virtiofs.ko.zst: kernel/fs/fuse/fuse.ko.zst
//
// Each line lists a module file followed by a colon and the space separated
// module files it directly depends on. Paths are relative to the modules
// directory. Empty lines and lines starting with "#" are ignored.
func ParseIndex(reader io.Reader) (*Graph, error) {
	graph := NewGraph()
	scanner := bufio.NewScanner(reader)

	lineNum := 0
	for scanner.Scan() {
		lineNum++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		modulePath, deps, found := strings.Cut(line, ":")
		modulePath = strings.TrimSpace(modulePath)

		if !found || modulePath == "" {
			return nil, fmt.Errorf("%w: line %d: %q", ErrInvalidIndex, lineNum, line)
		}

		module := Module{
			Name: Name(modulePath),
			Path: modulePath,
		}

		for _, dep := range strings.Fields(deps) {
			module.Deps = append(module.Deps, Name(dep))
		}

		graph.Add(module)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	return graph, nil
}

// ParseList parses a file with one entry per line, like modules.builtin or
// modules.load. Entries may be module names or module file paths. The
// returned names are normalized. Empty lines and lines starting with "#" are
// ignored.
func ParseList(reader io.Reader) ([]string, error) {
	var names []string

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		names = append(names, Name(line))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read list: %w", err)
	}

	return names, nil
}

// WriteIndex writes the given modules in dependency index format.
//
// Dependencies are written as the file paths known by the [Graph]. Unknown
// dependencies, like built-in ones, are omitted.
func (g *Graph) WriteIndex(writer io.Writer, modules []Module) error {
	for _, module := range modules {
		deps := make([]string, 0, len(module.Deps))

		for _, dep := range module.Deps {
			if depModule, exists := g.Module(dep); exists {
				deps = append(deps, depModule.Path)
			}
		}

		line := module.Path + ":"
		if len(deps) > 0 {
			line += " " + strings.Join(deps, " ")
		}

		if _, err := fmt.Fprintln(writer, line); err != nil {
			return fmt.Errorf("write %s: %w", module.Name, err)
		}
	}

	return nil
}

// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package kmod

import (
	"fmt"
	"slices"
)

// Module is a loadable kernel module as listed in the dependency index.
type Module struct {
	// Name is the normalized module name.
	Name string

	// Path is the module file path relative to the modules directory.
	Path string

	// Deps are the names of the modules that must be loaded before this one.
	Deps []string
}

// Graph is the dependency graph of kernel modules.
type Graph struct {
	modules map[string]Module
	builtin Set
}

// NewGraph creates an empty [Graph].
func NewGraph() *Graph {
	return &Graph{
		modules: make(map[string]Module),
		builtin: make(Set),
	}
}

// Add adds the given module. A module with the same name is replaced.
func (g *Graph) Add(module Module) {
	g.modules[module.Name] = module
}

// AddBuiltin marks the given module names as built into the kernel.
func (g *Graph) AddBuiltin(names ...string) {
	g.builtin.Add(names...)
}

// IsBuiltin returns true if the named module is built into the kernel.
func (g *Graph) IsBuiltin(name string) bool {
	return g.builtin.Contains(name)
}

// Module returns the module with the given name.
func (g *Graph) Module(name string) (Module, bool) {
	module, exists := g.modules[Normalize(name)]
	return module, exists
}

// Len returns the number of modules in the graph.
func (g *Graph) Len() int {
	return len(g.modules)
}

// Plan returns the modules to load for the requested module names.
//
// The plan contains every requested module and all its transitive
// dependencies exactly once. Dependencies always come before the modules that
// require them. Modules in loaded and built-in modules are omitted. Requested
// modules come in the given order as far as their dependencies permit.
//
// The complete plan is computed before it is returned, so a [CycleError] or
// [ErrModuleNotFound] is reported before anything could be loaded.
func (g *Graph) Plan(requested []string, loaded Set) ([]Module, error) {
	planner := planner{
		graph:  g,
		loaded: loaded,
		marks:  make(map[string]mark),
	}

	for _, name := range requested {
		if err := planner.visit(Normalize(name), nil); err != nil {
			return nil, err
		}
	}

	return planner.plan, nil
}

type mark int

const (
	unvisited mark = iota
	visiting
	visited
)

type planner struct {
	graph  *Graph
	loaded Set
	marks  map[string]mark
	plan   []Module
}

// visit adds the named module after all its dependencies. The trail is the
// chain of modules currently being visited.
func (p *planner) visit(name string, trail []string) error {
	if p.loaded.Contains(name) {
		return nil
	}

	switch p.marks[name] {
	case visited:
		return nil
	case visiting:
		start := slices.Index(trail, name)
		cycle := slices.Clone(trail[start:])

		return &CycleError{Cycle: append(cycle, name)}
	case unvisited:
	}

	module, exists := p.graph.modules[name]
	if !exists {
		if p.graph.IsBuiltin(name) {
			p.marks[name] = visited
			return nil
		}

		return fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}

	p.marks[name] = visiting
	trail = append(trail, name)

	for _, dep := range module.Deps {
		if err := p.visit(dep, trail); err != nil {
			return err
		}
	}

	p.marks[name] = visited
	p.plan = append(p.plan, module)

	return nil
}

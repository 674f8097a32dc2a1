// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package kmod reads the kernel module metadata files produced by depmod and
// resolves the order in which modules must be loaded.
//
// The dependency index (modules.dep) maps each module file to the module
// files it requires. A [Graph] built from it computes load plans that list
// every dependency before the module that needs it.
package kmod

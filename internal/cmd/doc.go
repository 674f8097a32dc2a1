// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cmd implements the mkinitramfs command that builds the boot
// archive for the virtiofs init.
package cmd

// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package initramfs provides a simple in-memory file tree that is written as
// optionally compressed CPIO archive usable as initramfs for the Linux kernel.
package initramfs

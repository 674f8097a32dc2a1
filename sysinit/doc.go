// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: MIT

// Package sysinit provides the building blocks of an init program for virtual
// machines that boot from a virtiofs share.
//
// The init runs as PID 1 from the initramfs. It mounts the essential pseudo
// file systems, reads the kernel command line, loads the kernel modules the
// virtiofs transport needs in dependency order, mounts the root share and
// any additional shares, switches into the root share and finally replaces
// itself with the configured init program. See [BootStages] and [Run].
package sysinit

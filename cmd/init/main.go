// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Init boots a guest from a virtiofs root share. It must be run as PID 1 from
// an initramfs built by mkinitramfs.
package main

import (
	"github.com/aibor/virtinit/sysinit"
)

func main() {
	// Never returns. Either the real init replaces this process or the
	// system halts.
	sysinit.Run(sysinit.BootStages()...)
}

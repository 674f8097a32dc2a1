// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Mkinitramfs builds the initramfs archive for the virtiofs init.
package main

import (
	"os"

	"github.com/aibor/virtinit/internal/cmd"
)

func main() {
	os.Exit(cmd.Run(os.Args[1:], cmd.DefaultConfig(), cmd.IO{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}))
}

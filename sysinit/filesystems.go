// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
)

// FilesystemsFile lists the file system types registered in the kernel.
const FilesystemsFile = "/proc/filesystems"

// parseFilesystems parses the format of [FilesystemsFile]. Each line has the
// type name as last field, optionally preceded by "nodev".
func parseFilesystems(reader io.Reader) ([]string, error) {
	var names []string

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		names = append(names, fields[len(fields)-1])
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read filesystems: %w", err)
	}

	return names, nil
}

func registeredFilesystems() ([]string, error) {
	file, err := os.Open(FilesystemsFile)
	if err != nil {
		return nil, fmt.Errorf("open filesystems: %w", err)
	}
	defer file.Close()

	return parseFilesystems(file)
}

// isRegisteredFilesystem checks if the kernel provides a file system type
// with the given name. Modules like virtiofs that are built in without
// parameters have no entry in [sysModuleDir], but their file system type is
// registered.
func isRegisteredFilesystem(state *State, name string) bool {
	names, err := state.sys.filesystems()
	if err != nil {
		state.Logger().Debug("Filesystems not readable", slog.Any("error", err))
		return false
	}

	return slices.Contains(names, name)
}

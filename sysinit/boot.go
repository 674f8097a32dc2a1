// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

// BootStages returns the complete boot sequence for an init that boots from
// a virtiofs root share, for use with [Run]:
//
//   - Mount /proc and read the boot parameters from the kernel command line.
//   - Mount the remaining essential file systems and attach the console if
//     the kernel could not open it.
//   - Create well-known symbolic links and device nodes and bring the
//     loopback interface up.
//   - Load the virtiofs module and all requested modules from [ModulesDir].
//   - Mount the root share at [StagingDir] and additional shares below
//     [SharesDir].
//   - Make [StagingDir] the root and execute the configured init.
func BootStages() []Func {
	return bootStages(CmdlineFile, ModulesDir)
}

func bootStages(cmdlineFile, modulesDir string) []Func {
	return []Func{
		WithMountPoints(ProcMountPoints()),
		WithCmdline(cmdlineFile),
		WithMountPoints(SystemMountPoints()),
		WithConsole(ConsoleDevice),
		WithSymlinks(DevSymlinks()),
		WithDeviceNodes(StaticDeviceNodes()),
		WithLoopback(),
		WithModules(modulesDir, TransportModule),
		WithShares(),
		WithSwitchRoot(StagingDir, SurvivingMountPoints()),
		WithExec(),
	}
}

// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"fmt"
	"log/slog"

	"github.com/vishvananda/netlink"
)

// LoopbackInterface is the name of the loopback interface.
const LoopbackInterface = "lo"

// WithLoopback returns a setup [Func] that brings the loopback interface up.
//
// The kernel configures the addresses already. Failure is logged only, the
// boot does not depend on it.
func WithLoopback() Func {
	return func(state *State) error {
		state.Logger().Debug("Set interface up",
			slog.String("name", LoopbackInterface))

		if err := state.sys.linkUp(LoopbackInterface); err != nil {
			state.Logger().Warn("Loopback interface not up", slog.Any("error", err))
		}

		return nil
	}
}

func setLinkUp(name string) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return fmt.Errorf("get link %s: %w", name, err)
	}

	if err := netlink.LinkSetUp(link); err != nil {
		return fmt.Errorf("set link %s up: %w", name, err)
	}

	return nil
}

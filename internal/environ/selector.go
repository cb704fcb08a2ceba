// SPDX-License-Identifier: MPL-2.0

package environ

import (
	"fmt"

	"dsw-cli/internal/issue"
	"dsw-cli/pkg/types"
)

// Request carries the already-validated inputs the selector needs.
// The explicit environment is optional; the zero value means "let dsw pick".
type Request struct {
	// Explicit is the user-supplied environment token, already parsed.
	Explicit Environment
	// HasExplicit distinguishes "no token given" from the zero value.
	HasExplicit bool
	// Version is the requested toolchain version.
	Version types.ToolchainVersion
	// Install is true when the requested task is an installation.
	Install bool
}

// Select chooses exactly one environment for this run.
//
// Decision rule, in order:
//  1. An explicit environment wins after validation: it must be a member of
//     the closed set, present on this host, and compatible with a floating
//     version (floating is local-only).
//  2. An install task, or a host where no environment has the version
//     usable, selects local: installation can only be initiated there.
//  3. Otherwise the first environment in Registry order with the version
//     installed wins. The container environment is unconditionally
//     installed, so this step always finds one.
func Select(req Request, reg Registry, state InstallationState) (Environment, error) {
	if req.HasExplicit {
		if err := req.Explicit.Validate(); err != nil {
			return "", err
		}
		if !reg.Contains(req.Explicit) {
			return "", &UnavailableEnvironmentError{
				Env:     req.Explicit,
				Missing: prerequisiteFor(req.Explicit),
			}
		}
		if req.Version.IsFloating() && req.Explicit != EnvLocal {
			return "", &FloatingEnvironmentError{Version: req.Version, Env: req.Explicit}
		}
		return req.Explicit, nil
	}

	if req.Install || state.NoneUsable() {
		return EnvLocal, nil
	}

	for _, env := range reg.Environments() {
		if state[env] {
			return env, nil
		}
	}

	// NoneUsable above already routed the nothing-installed case to local
	return "", fmt.Errorf("no usable environment despite installation state %v: %w", state, issue.ErrInternal)
}

// prerequisiteFor names the host capability an environment depends on.
func prerequisiteFor(env Environment) string {
	switch env {
	case EnvSDK:
		return "an SDKMAN installation"
	case EnvContainer:
		return "a container engine (docker or podman)"
	default:
		return "nothing"
	}
}

// SPDX-License-Identifier: MPL-2.0

package environ

import (
	"os"
	"slices"

	"dsw-cli/internal/capability"
	"dsw-cli/internal/layout"
	"dsw-cli/pkg/types"
)

type (
	// Registry is the ordered set of environments usable on this host.
	// The order doubles as the default preference when no explicit choice
	// is made: local first, then sdk, then container.
	Registry struct {
		envs []Environment
	}

	// InstallationState records, per environment in the Registry, whether
	// the requested toolchain version is already usable there. The
	// container environment is always usable because the image is pulled
	// on first use.
	InstallationState map[Environment]bool

	// StatFunc is the filesystem probe signature, injectable for tests.
	StatFunc func(name string) (os.FileInfo, error)
)

// DetectRegistry builds the Registry from probed capabilities.
// Local is always listed; absence of the other environments is a normal,
// silent outcome.
func DetectRegistry(caps capability.Capabilities) Registry {
	envs := []Environment{EnvLocal}
	if caps.SDKManInstalled {
		envs = append(envs, EnvSDK)
	}
	if caps.HasContainerEngine() {
		envs = append(envs, EnvContainer)
	}
	return Registry{envs: envs}
}

// Environments returns the registered environments in preference order.
func (r Registry) Environments() []Environment {
	return slices.Clone(r.envs)
}

// Contains reports whether env is usable on this host.
func (r Registry) Contains(env Environment) bool {
	return slices.Contains(r.envs, env)
}

// ProbeInstallations checks, for each environment in the Registry, whether a
// launchable toolchain entry point exists for the requested version.
func ProbeInstallations(r Registry, lay layout.Layout, version types.ToolchainVersion, stat StatFunc) InstallationState {
	if stat == nil {
		stat = os.Stat
	}

	state := make(InstallationState, len(r.envs))
	for _, env := range r.envs {
		switch env {
		case EnvLocal:
			state[env] = launchable(stat, lay.Launcher(version))
		case EnvSDK:
			state[env] = launchable(stat, lay.SDKLauncher(version))
		case EnvContainer:
			// The image is pulled on first use; nothing to install locally
			state[env] = true
		}
	}
	return state
}

// NoneUsable reports the distinguished "nothing installed anywhere" state
// that forces selection back to local, where installation can happen.
// The container environment is excluded: its unconditional availability
// would otherwise mask a host with no real install at all.
func (s InstallationState) NoneUsable() bool {
	for env, installed := range s {
		if env != EnvContainer && installed {
			return false
		}
	}
	return true
}

// launchable reports whether path exists as a regular file.
func launchable(stat StatFunc, path string) bool {
	info, err := stat(path)
	return err == nil && info.Mode().IsRegular()
}

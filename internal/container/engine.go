// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"os/exec"
)

// EngineType identifies the container engine type.
type EngineType string

const (
	EngineTypeDocker EngineType = "docker"
	EngineTypePodman EngineType = "podman"
)

// Engine defines the operations dsw needs from a container engine.
type Engine interface {
	// Name returns the engine name (docker or podman)
	Name() string
	// Available checks if the engine is available on the system
	Available() bool
	// Version returns the engine version
	Version(ctx context.Context) (string, error)
	// RunArgs builds the argv for a 'run' invocation without executing it
	RunArgs(opts RunOptions) []string
	// CreateRunCommand creates an exec.Cmd for a 'run' invocation. The
	// caller wires stdio and owns execution, so the toolchain's output
	// streams through and its exit code is observable.
	CreateRunCommand(ctx context.Context, opts RunOptions) *exec.Cmd
}

// Detect tries to find an available container engine.
// Docker is tried first, then Podman. The boolean result makes absence a
// normal outcome: a host without an engine simply has no container
// environment, which is not an error during capability probing.
func Detect() (Engine, bool) {
	docker := NewDockerEngine()
	if docker.Available() {
		return docker, true
	}

	podman := NewPodmanEngine()
	if podman.Available() {
		return podman, true
	}

	return nil, false
}

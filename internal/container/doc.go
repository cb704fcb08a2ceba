// SPDX-License-Identifier: MPL-2.0

// Package container provides a unified abstraction layer for container engines (Docker/Podman).
//
// The Engine interface covers exactly what dsw needs: availability probing
// and synthesis of a single 'run' invocation. Two implementations are
// provided, DockerEngine and PodmanEngine, both embedding BaseCLIEngine for
// shared argv construction and command creation.
//
// Engine selection uses Detect() (Docker first, then Podman); absence is a
// normal probing outcome, not an error.
// The engine owns the image lifecycle: the toolchain image is pulled
// automatically on first use, so the container environment never needs a
// local install step.
package container

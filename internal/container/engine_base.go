// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os/exec"
	"slices"
	"strconv"
	"strings"
)

const (
	// SELinuxLabelNone means no SELinux label is applied to volume mounts.
	SELinuxLabelNone SELinuxLabel = ""
	// SELinuxLabelShared allows sharing the volume between containers.
	SELinuxLabelShared SELinuxLabel = "z"
	// SELinuxLabelPrivate restricts the volume to a single container.
	SELinuxLabelPrivate SELinuxLabel = "Z"
)

var (
	// ErrInvalidNetworkPort is the sentinel error wrapped by InvalidNetworkPortError.
	ErrInvalidNetworkPort = errors.New("invalid network port")

	// ErrInvalidVolumeMount is the sentinel error wrapped by InvalidVolumeMountError.
	ErrInvalidVolumeMount = errors.New("invalid volume mount")
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// VolumeFormatFunc formats a volume mount as a -v argument. Podman uses
	// this to add SELinux labels (:z) which SELinux-enforcing hosts require
	// for container processes to access bind-mounted paths.
	VolumeFormatFunc func(volume VolumeMount) string

	// BaseCLIEngineOption configures a BaseCLIEngine.
	BaseCLIEngineOption func(*BaseCLIEngine)

	// BaseCLIEngine provides the shared implementation for CLI-based
	// container engines. Docker and Podman engines embed this struct;
	// argv construction and command creation live here, while
	// engine-specific probing (Available, Version) stays on the
	// concrete types.
	BaseCLIEngine struct {
		name            string // Engine name for error messages (e.g., "docker")
		binaryPath      string // Resolved at construction via exec.LookPath
		execCommand     ExecCommandFunc
		volumeFormatter VolumeFormatFunc
	}

	// SELinuxLabel represents an SELinux volume labeling option.
	// The zero value ("") means no SELinux label is applied.
	SELinuxLabel string

	// NetworkPort represents a TCP port number for container port mappings.
	// A valid port must be greater than zero.
	NetworkPort uint16

	// InvalidNetworkPortError is returned when a NetworkPort value is zero.
	InvalidNetworkPortError struct {
		Value NetworkPort
	}

	// VolumeMount represents a bind mount specification.
	VolumeMount struct {
		HostPath      string
		ContainerPath string
		ReadOnly      bool
		SELinux       SELinuxLabel
	}

	// InvalidVolumeMountError is returned when a VolumeMount has an empty path.
	InvalidVolumeMountError struct {
		Value VolumeMount
	}

	// PortMapping represents a host-to-container port mapping.
	PortMapping struct {
		HostPort      NetworkPort
		ContainerPort NetworkPort
	}

	// RunOptions contains everything needed to synthesize a 'run' invocation.
	RunOptions struct {
		// Image is the image reference to run
		Image string
		// Entrypoint overrides the image entry point when non-empty
		Entrypoint string
		// Command is passed to the entry point inside the container
		Command []string
		// WorkDir is the working directory inside the container
		WorkDir string
		// Platform pins the image platform (e.g., "linux/amd64"); the
		// engine is responsible for emulation on other hosts
		Platform string
		// User is the uid:gid mapping for the container process
		User string
		// Name is the container name
		Name string
		// Env contains environment variables set inside the container
		Env map[string]string
		// Volumes are bind mounts
		Volumes []VolumeMount
		// Ports are port mappings
		Ports []PortMapping
		// Remove enables the ephemeral --rm lifecycle
		Remove bool
		// Interactive keeps stdin attached
		Interactive bool
		// TTY allocates a pseudo-TTY
		TTY bool
	}
)

// String returns the decimal string representation of the NetworkPort.
func (p NetworkPort) String() string { return strconv.Itoa(int(p)) }

// Validate returns an error if the NetworkPort is zero.
func (p NetworkPort) Validate() error {
	if p == 0 {
		return &InvalidNetworkPortError{Value: p}
	}
	return nil
}

// Error implements the error interface for InvalidNetworkPortError.
func (e *InvalidNetworkPortError) Error() string {
	return fmt.Sprintf("invalid network port %d: must be greater than zero", e.Value)
}

// Unwrap returns ErrInvalidNetworkPort for errors.Is() compatibility.
func (e *InvalidNetworkPortError) Unwrap() error { return ErrInvalidNetworkPort }

// Validate returns an error if either path of the VolumeMount is empty.
func (v VolumeMount) Validate() error {
	if strings.TrimSpace(v.HostPath) == "" || strings.TrimSpace(v.ContainerPath) == "" {
		return &InvalidVolumeMountError{Value: v}
	}
	return nil
}

// String returns the volume mount in "host:container[:options]" format.
func (v VolumeMount) String() string {
	s := v.HostPath + ":" + v.ContainerPath

	var options []string
	if v.ReadOnly {
		options = append(options, "ro")
	}
	if v.SELinux != SELinuxLabelNone {
		options = append(options, string(v.SELinux))
	}
	if len(options) > 0 {
		s += ":" + strings.Join(options, ",")
	}
	return s
}

// Error implements the error interface for InvalidVolumeMountError.
func (e *InvalidVolumeMountError) Error() string {
	return fmt.Sprintf("invalid volume mount %q: host and container paths must be non-empty", e.Value.String())
}

// Unwrap returns ErrInvalidVolumeMount for errors.Is() compatibility.
func (e *InvalidVolumeMountError) Unwrap() error { return ErrInvalidVolumeMount }

// String returns the port mapping in "host:container" format.
func (p PortMapping) String() string {
	return fmt.Sprintf("%d:%d", p.HostPort, p.ContainerPort)
}

// Validate returns an error if either port of the mapping is zero.
func (p PortMapping) Validate() error {
	if err := p.HostPort.Validate(); err != nil {
		return err
	}
	return p.ContainerPort.Validate()
}

// Validate checks all typed fields of the RunOptions.
func (o RunOptions) Validate() error {
	var errs []error
	if strings.TrimSpace(o.Image) == "" {
		errs = append(errs, errors.New("image reference must be non-empty"))
	}
	for _, v := range o.Volumes {
		if err := v.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, p := range o.Ports {
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// --- Option Functions ---

// WithName sets the engine name used in error messages.
func WithName(name string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.name = name
	}
}

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.execCommand = fn
	}
}

// WithVolumeFormatter sets a custom volume formatter function.
// This is used by Podman to add SELinux labels on Linux.
func WithVolumeFormatter(fn VolumeFormatFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.volumeFormatter = fn
	}
}

// --- Constructor ---

// NewBaseCLIEngine creates a new base engine with the given binary path.
func NewBaseCLIEngine(binaryPath string, opts ...BaseCLIEngineOption) *BaseCLIEngine {
	e := &BaseCLIEngine{
		binaryPath:      binaryPath,
		execCommand:     exec.CommandContext,
		volumeFormatter: func(v VolumeMount) string { return v.String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the engine name used in error messages.
func (e *BaseCLIEngine) Name() string {
	return e.name
}

// BinaryPath returns the path to the container engine binary.
func (e *BaseCLIEngine) BinaryPath() string {
	return e.binaryPath
}

// RunArgs constructs arguments for a container run command.
//
// Generated command: <binary> run [options] <image> [command...]
func (e *BaseCLIEngine) RunArgs(opts RunOptions) []string {
	args := []string{"run"}

	if opts.Remove {
		args = append(args, "--rm")
	}

	if opts.Name != "" {
		args = append(args, "--name", opts.Name)
	}

	if opts.Platform != "" {
		args = append(args, "--platform", opts.Platform)
	}

	if opts.User != "" {
		args = append(args, "-u", opts.User)
	}

	if opts.WorkDir != "" {
		args = append(args, "-w", opts.WorkDir)
	}

	if opts.Interactive {
		args = append(args, "-i")
	}

	if opts.TTY {
		args = append(args, "-t")
	}

	// Sorted so the synthesized argv is stable across runs
	for _, k := range slices.Sorted(maps.Keys(opts.Env)) {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, opts.Env[k]))
	}

	for _, v := range opts.Volumes {
		args = append(args, "-v", e.volumeFormatter(v))
	}

	for _, p := range opts.Ports {
		args = append(args, "-p", p.String())
	}

	if opts.Entrypoint != "" {
		args = append(args, "--entrypoint", opts.Entrypoint)
	}

	args = append(args, opts.Image)
	args = append(args, opts.Command...)

	return args
}

// CreateCommand creates an exec.Cmd for the given engine arguments.
// The caller customizes stdin/stdout/stderr before running it.
func (e *BaseCLIEngine) CreateCommand(ctx context.Context, args ...string) *exec.Cmd {
	return e.execCommand(ctx, e.binaryPath, args...)
}

// CreateRunCommand creates an exec.Cmd for a 'run' invocation.
func (e *BaseCLIEngine) CreateRunCommand(ctx context.Context, opts RunOptions) *exec.Cmd {
	return e.CreateCommand(ctx, e.RunArgs(opts)...)
}

// RunCommandWithOutput executes a command with stdout captured.
func (e *BaseCLIEngine) RunCommandWithOutput(ctx context.Context, args ...string) (string, error) {
	cmd := e.CreateCommand(ctx, args...)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("command %s %v failed: %w", e.binaryPath, args, err)
	}
	return string(out), nil
}

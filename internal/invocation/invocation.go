// SPDX-License-Identifier: MPL-2.0

// Package invocation synthesizes and runs the final toolchain command line.
//
// For the local and sdk environments the launcher script is invoked directly
// with the task list and a fixed option block. For the container environment
// a container-run invocation is synthesized against the version-pinned
// toolchain image with the working directory bind-mounted.
package invocation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"time"

	"dsw-cli/internal/config"
	"dsw-cli/internal/container"
	"dsw-cli/internal/environ"
	"dsw-cli/internal/issue"
	"dsw-cli/internal/jvm"
	"dsw-cli/internal/layout"
	"dsw-cli/pkg/types"
)

const (
	// imageRepo is the toolchain container image repository. The tag is
	// always the requested version with a leading "v".
	imageRepo = "docsmith/docsmith"

	// containerWorkDir is the in-container mount point for the project.
	containerWorkDir = "/project"

	// containerEntrypoint is the toolchain launcher inside the image.
	containerEntrypoint = "/opt/docsmith/bin/docsmith"

	// previewPort is the port of the toolchain's embedded preview server,
	// mapped one to one onto the host.
	previewPort = 8042
)

type (
	// Inputs carries everything the builder needs, produced by the earlier
	// pipeline phases.
	Inputs struct {
		// Env is the selected environment.
		Env environ.Environment
		// Version is the requested toolchain version.
		Version types.ToolchainVersion
		// Tasks are the task names passed through verbatim.
		Tasks []string
		// Settings is the resolved run configuration.
		Settings config.Settings
		// Layout resolves install paths.
		Layout layout.Layout
		// Runtime is the validated Java runtime; unused for container runs.
		Runtime jvm.RuntimeDescriptor
		// Engine is the container engine; nil unless Env is container.
		Engine container.Engine
	}

	// Plan is the fully synthesized invocation, ready to execute.
	Plan struct {
		// Env is the environment the plan runs in.
		Env environ.Environment
		// Cmd is the prepared command with argv and environment set.
		Cmd *exec.Cmd
	}

	// GetwdFunc is the working directory lookup, injectable for tests.
	GetwdFunc func() (string, error)

	// CurrentUserFunc is the user lookup, injectable for tests.
	CurrentUserFunc func() (*user.User, error)

	// NowFunc is the clock, injectable for tests.
	NowFunc func() time.Time

	// ExecCommandFunc is the command creation signature, injectable for tests.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Builder synthesizes invocation plans.
	Builder struct {
		getwd       GetwdFunc
		currentUser CurrentUserFunc
		now         NowFunc
		execCommand ExecCommandFunc
	}

	// Option configures a Builder.
	Option func(*Builder)
)

// WithGetwd injects a working directory lookup for testing.
func WithGetwd(fn GetwdFunc) Option {
	return func(b *Builder) { b.getwd = fn }
}

// WithCurrentUser injects a user lookup for testing.
func WithCurrentUser(fn CurrentUserFunc) Option {
	return func(b *Builder) { b.currentUser = fn }
}

// WithNow injects a clock for testing.
func WithNow(fn NowFunc) Option {
	return func(b *Builder) { b.now = fn }
}

// WithExecCommand injects a command factory for testing.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(b *Builder) { b.execCommand = fn }
}

// NewBuilder creates a Builder backed by the real host.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		getwd:       os.Getwd,
		currentUser: user.Current,
		now:         time.Now,
		execCommand: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build synthesizes the invocation plan for the selected environment.
func (b *Builder) Build(ctx context.Context, in Inputs) (*Plan, error) {
	switch in.Env {
	case environ.EnvLocal:
		return b.buildLauncher(ctx, in, in.Layout.Launcher(in.Version))
	case environ.EnvSDK:
		return b.buildLauncher(ctx, in, in.Layout.SDKLauncher(in.Version))
	case environ.EnvContainer:
		return b.buildContainer(ctx, in)
	default:
		return nil, fmt.Errorf("no invocation strategy for environment %q: %w", in.Env, issue.ErrInternal)
	}
}

// buildLauncher synthesizes a direct launcher invocation for the local and
// sdk environments.
func (b *Builder) buildLauncher(ctx context.Context, in Inputs, launcher string) (*Plan, error) {
	args := append([]string{"."}, in.Tasks...)
	args = append(args, b.optionBlock(in)...)

	cmd := b.execCommand(ctx, launcher, args...)
	cmd.Env = os.Environ()
	if in.Runtime.Home != "" {
		cmd.Env = append(cmd.Env, "JAVA_HOME="+in.Runtime.Home)
	}
	return &Plan{Env: in.Env, Cmd: cmd}, nil
}

// optionBlock is the fixed trailing option block of every launcher run:
// the active configuration file, quiet warnings and no persistent build
// daemon. Interactive sessions additionally share the build cache under the
// install root so repeated runs stay warm.
func (b *Builder) optionBlock(in Inputs) []string {
	opts := []string{
		"-PmainConfigFile=" + in.Settings.ConfigFile,
		"--warning-mode=none",
		"--no-daemon",
	}
	if in.Settings.Interactive() {
		opts = append(opts, "-Dgradle.user.home="+in.Layout.GradleHomeDir())
	}
	return opts
}

// buildContainer synthesizes a container-run invocation.
func (b *Builder) buildContainer(ctx context.Context, in Inputs) (*Plan, error) {
	if in.Engine == nil {
		return nil, fmt.Errorf("container environment selected without an engine: %w", issue.ErrInternal)
	}

	wd, err := b.getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}
	usr, err := b.currentUser()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve current user: %w", err)
	}

	command := append([]string{"."}, in.Tasks...)
	command = append(command,
		"-PmainConfigFile="+in.Settings.ConfigFile,
		"--warning-mode=none",
		"--no-daemon",
	)

	opts := container.RunOptions{
		Image:      fmt.Sprintf("%s:v%s", imageRepo, in.Version),
		Entrypoint: containerEntrypoint,
		Command:    command,
		WorkDir:    containerWorkDir,
		// The image only exists for its native architecture; the engine is
		// responsible for emulation on other hosts.
		Platform:    "linux/amd64",
		User:        usr.Uid + ":" + usr.Gid,
		Name:        fmt.Sprintf("%s-%d", layout.ToolchainName, b.now().Unix()),
		Env:         in.Settings.ContainerEnv(),
		Volumes:     []container.VolumeMount{{HostPath: wd, ContainerPath: containerWorkDir}},
		Ports:       []container.PortMapping{{HostPort: previewPort, ContainerPort: previewPort}},
		Remove:      true,
		Interactive: true,
		TTY:         in.Settings.Interactive(),
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid container run options (%v): %w", err, issue.ErrInternal)
	}

	return &Plan{Env: in.Env, Cmd: in.Engine.CreateRunCommand(ctx, opts)}, nil
}

// Execute runs the plan with the operator's terminal attached and returns
// the exit code of the underlying process verbatim.
func Execute(plan *Plan) (types.ExitCode, error) {
	plan.Cmd.Stdin = os.Stdin
	plan.Cmd.Stdout = os.Stdout
	plan.Cmd.Stderr = os.Stderr

	if err := plan.Cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return types.ExitCode(exitErr.ExitCode()), err
		}
		return types.ExitFailure, err
	}
	return types.ExitSuccess, nil
}

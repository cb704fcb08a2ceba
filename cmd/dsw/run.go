// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"dsw-cli/internal/capability"
	"dsw-cli/internal/config"
	"dsw-cli/internal/download"
	"dsw-cli/internal/environ"
	"dsw-cli/internal/install"
	"dsw-cli/internal/invocation"
	"dsw-cli/internal/issue"
	"dsw-cli/internal/jvm"
	"dsw-cli/internal/layout"
	"dsw-cli/internal/platform"
	"dsw-cli/pkg/types"
)

// Component names accepted by the install directive.
const (
	componentToolchain = "toolchain"
	componentRuntime   = "runtime"
)

// request is the parsed positional invocation.
type request struct {
	explicit    environ.Environment
	hasExplicit bool
	install     bool
	component   string
	tasks       []string
}

// parseArgs decodes the positional grammar: an optional environment token,
// then either "install <component>" or a non-empty verbatim task list.
func parseArgs(args []string) (request, error) {
	var req request

	if len(args) > 0 && environ.IsKnown(args[0]) {
		req.explicit = environ.Environment(args[0])
		req.hasExplicit = true
		args = args[1:]
	}

	if len(args) == 0 {
		return request{}, fmt.Errorf("no task given: %w", environ.ErrUsage)
	}

	if args[0] == "install" {
		req.install = true
		if len(args) != 2 {
			return request{}, fmt.Errorf("install needs exactly one component, %s or %s: %w",
				componentToolchain, componentRuntime, environ.ErrUsage)
		}
		switch args[1] {
		case componentToolchain, componentRuntime:
			req.component = args[1]
		default:
			return request{}, fmt.Errorf("unknown component %q, expected %s or %s: %w",
				args[1], componentToolchain, componentRuntime, environ.ErrUsage)
		}
		return req, nil
	}

	req.tasks = args
	return req, nil
}

// runRoot drives the whole pipeline: parse, probe, select, then install or
// dispatch.
func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		_ = cmd.Help()
		return &ExitError{Code: types.ExitUsage, Err: fmt.Errorf("no task given: %w", environ.ErrUsage)}
	}

	req, err := parseArgs(args)
	if err == nil {
		err = run(cmd.Context(), req)
	}
	if err != nil {
		renderHelp(cmd.ErrOrStderr(), err)
		return wrapRunError(err)
	}
	return nil
}

// run executes a parsed request against the real host.
func run(ctx context.Context, req request) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "dsw"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	settings := config.NewLoader().Load(ctx)
	if err := settings.Version.Validate(); err != nil {
		return err
	}

	lay, err := layout.Detect()
	if err != nil {
		return err
	}

	caps := capability.NewProber().Probe(lay)
	reg := environ.DetectRegistry(caps)
	state := environ.ProbeInstallations(reg, lay, settings.Version, nil)

	env, err := environ.Select(environ.Request{
		Explicit:    req.explicit,
		HasExplicit: req.hasExplicit,
		Version:     settings.Version,
		Install:     req.install,
	}, reg, state)
	if err != nil {
		return err
	}
	logger.Debug("environment selected",
		"environment", env, "version", settings.Version, "install", req.install)

	if req.install {
		return runInstall(ctx, req.component, lay, settings.Version)
	}

	in := invocation.Inputs{
		Env:      env,
		Version:  settings.Version,
		Tasks:    req.tasks,
		Settings: settings,
		Layout:   lay,
	}

	if env == environ.EnvContainer {
		in.Engine = caps.Engine
	} else {
		if !state[env] {
			return issue.NewErrorContext().
				WithOperation("run " + layout.ToolchainName).
				WithResource(string(settings.Version)).
				WithSuggestion("Run 'dsw install toolchain' to install the requested version").
				Wrap(fmt.Errorf("version %s is not installed in the %s environment", settings.Version, env)).
				BuildError()
		}
		rt, err := jvm.New().Resolve(ctx, lay)
		if err != nil {
			return err
		}
		in.Runtime = rt
	}

	plan, err := invocation.NewBuilder().Build(ctx, in)
	if err != nil {
		return err
	}

	code, err := invocation.Execute(plan)
	if err != nil {
		return &ExitError{Code: code, Err: err}
	}
	return nil
}

// runInstall installs the requested component into the local install root.
func runInstall(ctx context.Context, component string, lay layout.Layout, version types.ToolchainVersion) error {
	inst := install.New()
	switch component {
	case componentToolchain:
		return inst.InstallToolchain(ctx, lay, version)
	case componentRuntime:
		return inst.InstallRuntime(ctx, lay)
	default:
		// parseArgs only accepts the two known components
		return fmt.Errorf("no installer for component %q: %w", component, issue.ErrInternal)
	}
}

// wrapRunError maps errors onto the exit code taxonomy: argument errors exit
// with the usage code, internal invariant violations with their own distinct
// code, failed external tools with the tool's own code, everything else with
// the generic failure code.
func wrapRunError(err error) error {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	code := types.ExitFailure
	switch {
	case errors.Is(err, environ.ErrUsage):
		code = types.ExitUsage
	case errors.Is(err, issue.ErrInternal):
		code = types.ExitInternal
	}

	var toolErr *download.ToolError
	if errors.As(err, &toolErr) {
		code = toolErr.ExitCode
	}
	var cmdErr *install.CommandError
	if errors.As(err, &cmdErr) {
		code = cmdErr.ExitCode
	}

	return &ExitError{Code: code, Err: err}
}

// issueFor maps an error to its issue catalog entry, if one exists.
func issueFor(err error) issue.Id {
	var uae *environ.UnavailableEnvironmentError
	if errors.As(err, &uae) {
		if uae.Env == environ.EnvContainer {
			return issue.ContainerEngineNotFoundId
		}
		return issue.EnvironmentUnavailableId
	}

	switch {
	case errors.Is(err, jvm.ErrRuntimeNotFound):
		return issue.RuntimeNotFoundId
	case errors.Is(err, jvm.ErrUnsupportedRuntime):
		return issue.UnsupportedRuntimeVersionId
	case errors.Is(err, download.ErrNoDownloadTool):
		return issue.DownloadToolNotFoundId
	case errors.Is(err, install.ErrUnzipNotFound):
		return issue.ExtractorNotFoundId
	case errors.Is(err, install.ErrGitNotFound):
		return issue.GitNotFoundId
	case errors.Is(err, platform.ErrUnsupportedHost):
		return issue.UnsupportedHostId
	default:
		return 0
	}
}

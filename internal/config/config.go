// SPDX-License-Identifier: MPL-2.0

// Package config resolves the run configuration from the environment.
//
// Every setting is an optional DOCSMITH_* variable with a documented
// default. Two settings are auto-detected when unset: headless mode follows
// whether stdout is an interactive terminal, and the project branch is read
// from the working directory's git checkout, falling back to a sentinel.
package config

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"

	"dsw-cli/pkg/types"
)

const (
	// envPrefix is the prefix of every configuration variable.
	envPrefix = "docsmith"

	// DefaultVersion is the toolchain version used when none is requested.
	DefaultVersion = "2.3.1"

	// DefaultConfigFile is the toolchain configuration consumed by tasks.
	DefaultConfigFile = "docsmithConfig.groovy"

	// BranchUnknown is the sentinel branch name when detection fails.
	BranchUnknown = "-"

	// TemplateSlots is the number of numbered template override variables.
	TemplateSlots = 9
)

type (
	// Settings is the resolved run configuration.
	Settings struct {
		// Version is the requested toolchain version.
		Version types.ToolchainVersion
		// ConfigFile is the active toolchain configuration file.
		ConfigFile string
		// SiteTheme is an optional visual theme override URL.
		SiteTheme string
		// Templates holds the numbered template override URLs; unset slots
		// are empty strings so the slot number is preserved by index.
		Templates [TemplateSlots]string
		// Headless disables interactive behavior in the invoked toolchain.
		Headless bool
		// ProjectBranch is the current source-control branch, or
		// BranchUnknown when it cannot be determined.
		ProjectBranch string
	}

	// IsTerminalFunc reports whether the session is interactive.
	IsTerminalFunc func() bool

	// ExecCommandFunc is the command creation signature, injectable for tests.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Loader resolves Settings from the environment.
	Loader struct {
		isTerminal  IsTerminalFunc
		execCommand ExecCommandFunc
	}

	// Option configures a Loader.
	Option func(*Loader)
)

// WithIsTerminal injects the interactivity probe for testing.
func WithIsTerminal(fn IsTerminalFunc) Option {
	return func(l *Loader) { l.isTerminal = fn }
}

// WithExecCommand injects a command factory for testing.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(l *Loader) { l.execCommand = fn }
}

// NewLoader creates a Loader backed by the real terminal and git.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		isTerminal:  func() bool { return isatty.IsTerminal(os.Stdout.Fd()) },
		execCommand: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load resolves the Settings for this run.
func (l *Loader) Load(ctx context.Context) Settings {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("version", DefaultVersion)
	v.SetDefault("config_file", DefaultConfigFile)
	v.SetDefault("headless", !l.isTerminal())
	v.SetDefault("project_branch", l.detectBranch(ctx))

	s := Settings{
		Version:       types.ToolchainVersion(v.GetString("version")),
		ConfigFile:    v.GetString("config_file"),
		SiteTheme:     v.GetString("sitetheme"),
		Headless:      v.GetBool("headless"),
		ProjectBranch: v.GetString("project_branch"),
	}
	for n := 1; n <= TemplateSlots; n++ {
		s.Templates[n-1] = v.GetString(fmt.Sprintf("template%d", n))
	}
	return s
}

// detectBranch asks git for the current branch name.
// Any failure (no git, not a repository) yields the sentinel; branch
// detection must never fail a run.
func (l *Loader) detectBranch(ctx context.Context) string {
	cmd := l.execCommand(ctx, "git", "rev-parse", "--abbrev-ref", "HEAD")
	out, err := cmd.Output()
	if err != nil {
		return BranchUnknown
	}
	branch := strings.TrimSpace(string(out))
	if branch == "" {
		return BranchUnknown
	}
	return branch
}

// Interactive reports whether the toolchain may assume an attached session.
func (s Settings) Interactive() bool { return !s.Headless }

// ContainerEnv returns the whitelisted configuration variables to propagate
// into a container run. Headless is forced on: the toolchain inside the
// container never has a terminal attached.
func (s Settings) ContainerEnv() map[string]string {
	env := map[string]string{
		"DOCSMITH_VERSION":        string(s.Version),
		"DOCSMITH_CONFIG_FILE":    s.ConfigFile,
		"DOCSMITH_HEADLESS":       "true",
		"DOCSMITH_PROJECT_BRANCH": s.ProjectBranch,
	}
	if s.SiteTheme != "" {
		env["DOCSMITH_SITETHEME"] = s.SiteTheme
	}
	for n := 1; n <= TemplateSlots; n++ {
		if t := s.Templates[n-1]; t != "" {
			env[fmt.Sprintf("DOCSMITH_TEMPLATE%d", n)] = t
		}
	}
	return env
}

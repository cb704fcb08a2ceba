// SPDX-License-Identifier: MPL-2.0

// Package download abstracts over the host's download tools.
//
// dsw does not implement HTTP itself; it selects one of several candidate
// command-line tools in a fixed preference order and delegates the transfer.
// Only the first tool found on the host is ever invoked: a failure from a
// present tool is assumed to be a meaningful remote or network error that a
// different tool would hit just the same, so there is no fallback and no
// retry. The underlying tool's exit code is preserved for diagnosis.
package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"dsw-cli/internal/issue"
	"dsw-cli/pkg/types"
)

// toolOrder is the fixed preference order among candidate download tools.
var toolOrder = []string{"curl", "wget", "fetch"}

// ErrNoDownloadTool is returned when none of the candidate tools is present.
var ErrNoDownloadTool = errors.New("no download tool available")

type (
	// LookPathFunc is the executable lookup signature, injectable for tests.
	LookPathFunc func(file string) (string, error)

	// ExecCommandFunc is the command creation signature, injectable for tests.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Downloader fetches URLs to local files using the first available
	// candidate tool.
	Downloader struct {
		lookPath    LookPathFunc
		execCommand ExecCommandFunc
	}

	// ToolError reports a failed transfer together with the exit code of
	// the underlying tool, which dsw propagates verbatim.
	ToolError struct {
		Tool     string
		URL      string
		ExitCode types.ExitCode
		Cause    error
	}

	// Option configures a Downloader.
	Option func(*Downloader)
)

// Error implements the error interface.
func (e *ToolError) Error() string {
	return fmt.Sprintf("%s failed to download %s (exit code %s)", e.Tool, e.URL, e.ExitCode)
}

// Unwrap returns the underlying execution error.
func (e *ToolError) Unwrap() error { return e.Cause }

// WithLookPath injects an executable lookup for testing.
func WithLookPath(fn LookPathFunc) Option {
	return func(d *Downloader) { d.lookPath = fn }
}

// WithExecCommand injects a command factory for testing.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(d *Downloader) { d.execCommand = fn }
}

// New creates a Downloader backed by the real host toolset.
func New(opts ...Option) *Downloader {
	d := &Downloader{
		lookPath:    exec.LookPath,
		execCommand: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ToolNames returns the candidate tools in preference order.
// The capability probe and remediation messages use this list.
func ToolNames() []string {
	names := make([]string, len(toolOrder))
	copy(names, toolOrder)
	return names
}

// SelectTool returns the first candidate tool present on the host.
// The boolean result makes absence a normal probing outcome.
func (d *Downloader) SelectTool() (string, bool) {
	for _, tool := range toolOrder {
		if _, err := d.lookPath(tool); err == nil {
			return tool, true
		}
	}
	return "", false
}

// Fetch downloads url to dest using the first available tool.
// The tool's stderr streams through so the operator sees progress and
// diagnostics; stdout is suppressed (curl writes the payload via -o).
func (d *Downloader) Fetch(ctx context.Context, url, dest string) error {
	tool, ok := d.SelectTool()
	if !ok {
		return issue.NewErrorContext().
			WithOperation("download").
			WithResource(url).
			WithSuggestion("Install one of: curl, wget, fetch").
			Wrap(ErrNoDownloadTool).
			BuildError()
	}

	cmd := d.execCommand(ctx, tool, toolArgs(tool, url, dest)...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		code := types.ExitFailure
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = types.ExitCode(exitErr.ExitCode())
		}
		return &ToolError{Tool: tool, URL: url, ExitCode: code, Cause: err}
	}

	return nil
}

// toolArgs builds the tool-specific argv for a transfer to dest.
func toolArgs(tool, url, dest string) []string {
	switch tool {
	case "curl":
		return []string{"--fail", "--location", "--output", dest, url}
	case "wget":
		return []string{"--quiet", "--output-document", dest, url}
	case "fetch":
		return []string{"-o", dest, url}
	default:
		// SelectTool only returns members of toolOrder
		panic(fmt.Sprintf("unknown download tool %q", tool))
	}
}

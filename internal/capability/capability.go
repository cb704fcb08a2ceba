// SPDX-License-Identifier: MPL-2.0

// Package capability probes the host for optional tools that gate dsw
// environments and operations.
//
// Absence of a capability is a normal, silent outcome: a host without a
// container engine simply cannot offer the container environment. Errors are
// raised later, by the component that actually needs the missing tool.
package capability

import (
	"os"
	"os/exec"

	"dsw-cli/internal/container"
	"dsw-cli/internal/download"
	"dsw-cli/internal/layout"
)

type (
	// Capabilities is the result of one probe pass, computed once per run.
	Capabilities struct {
		// Engine is the detected container engine, nil when none is usable.
		Engine container.Engine
		// SDKManInstalled reports whether an SDKMAN directory exists.
		SDKManInstalled bool
		// DownloadTool is the first candidate download tool present on the
		// host ("" when none is).
		DownloadTool string
		// GitPath is the resolved git executable ("" when absent).
		GitPath string
		// UnzipPath is the resolved unzip executable ("" when absent).
		UnzipPath string
	}

	// LookPathFunc is the executable lookup signature, injectable for tests.
	LookPathFunc func(file string) (string, error)

	// StatFunc is the filesystem probe signature, injectable for tests.
	StatFunc func(name string) (os.FileInfo, error)

	// DetectEngineFunc is the container engine detection signature.
	DetectEngineFunc func() (container.Engine, bool)

	// Prober performs capability detection with injectable host lookups.
	Prober struct {
		lookPath     LookPathFunc
		stat         StatFunc
		detectEngine DetectEngineFunc
	}

	// Option configures a Prober.
	Option func(*Prober)
)

// WithLookPath injects an executable lookup for testing.
func WithLookPath(fn LookPathFunc) Option {
	return func(p *Prober) { p.lookPath = fn }
}

// WithStat injects a filesystem probe for testing.
func WithStat(fn StatFunc) Option {
	return func(p *Prober) { p.stat = fn }
}

// WithDetectEngine injects container engine detection for testing.
func WithDetectEngine(fn DetectEngineFunc) Option {
	return func(p *Prober) { p.detectEngine = fn }
}

// NewProber creates a Prober backed by the real host.
func NewProber(opts ...Option) *Prober {
	p := &Prober{
		lookPath:     exec.LookPath,
		stat:         os.Stat,
		detectEngine: container.Detect,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe detects all capabilities for this run. Probes are cheap, so the
// result is recomputed fresh on every run rather than cached anywhere.
func (p *Prober) Probe(lay layout.Layout) Capabilities {
	caps := Capabilities{}

	if engine, ok := p.detectEngine(); ok {
		caps.Engine = engine
	}

	if info, err := p.stat(lay.SDKManDir); err == nil && info.IsDir() {
		caps.SDKManInstalled = true
	}

	for _, tool := range download.ToolNames() {
		if _, err := p.lookPath(tool); err == nil {
			caps.DownloadTool = tool
			break
		}
	}

	if path, err := p.lookPath("git"); err == nil {
		caps.GitPath = path
	}

	if path, err := p.lookPath("unzip"); err == nil {
		caps.UnzipPath = path
	}

	return caps
}

// HasContainerEngine reports whether a container engine was detected.
func (c Capabilities) HasContainerEngine() bool { return c.Engine != nil }

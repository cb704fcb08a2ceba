// SPDX-License-Identifier: MPL-2.0

// Package platform provides host platform identification for dsw.
//
// The runtime distribution API expects its own OS and architecture tokens
// ("mac" instead of "darwin", "x64" instead of "amd64"); this package owns
// that mapping and the rejection of hosts the runtime installer cannot serve
// (native Windows and the MSYS/Cygwin compatibility layers).
package platform

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// OS name constants for runtime.GOOS comparisons.
// Centralizes the string literals to avoid scattered magic strings.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// ErrUnsupportedHost is the sentinel error wrapped by UnsupportedHostError.
var ErrUnsupportedHost = errors.New("unsupported host platform")

type (
	// Host describes the current machine in the tokens expected by the
	// runtime distribution API.
	Host struct {
		// OS is the distribution API operating system token ("linux", "mac").
		OS string
		// Arch is the distribution API architecture token ("x64", "aarch64").
		Arch string
	}

	// UnsupportedHostError is returned when the host OS/architecture
	// combination cannot be mapped to distribution API tokens.
	UnsupportedHostError struct {
		GOOS   string
		GOARCH string
		// CompatLayer names the detected Windows compatibility layer
		// ("msys", "cygwin") when that is the rejection reason.
		CompatLayer string
	}

	// GetenvFunc is the environment lookup signature. It allows injection
	// of fakes for testing compatibility layer detection.
	GetenvFunc func(string) string
)

// Error implements the error interface.
func (e *UnsupportedHostError) Error() string {
	if e.CompatLayer != "" {
		return fmt.Sprintf("unsupported host: %s compatibility layer detected (%s/%s)",
			e.CompatLayer, e.GOOS, e.GOARCH)
	}
	return fmt.Sprintf("unsupported host platform %s/%s", e.GOOS, e.GOARCH)
}

// Unwrap returns ErrUnsupportedHost so callers can use errors.Is for
// programmatic detection.
func (e *UnsupportedHostError) Unwrap() error { return ErrUnsupportedHost }

// DetectHost maps the current GOOS/GOARCH to distribution API tokens.
// It fails before any network access when the combination is unsupported.
func DetectHost(getenv GetenvFunc) (Host, error) {
	return detectHostFrom(runtime.GOOS, runtime.GOARCH, getenv)
}

// detectHostFrom is the injectable core of DetectHost.
func detectHostFrom(goos, goarch string, getenv GetenvFunc) (Host, error) {
	if layer := compatLayerFrom(getenv); layer != "" {
		return Host{}, &UnsupportedHostError{GOOS: goos, GOARCH: goarch, CompatLayer: layer}
	}

	var osToken string
	switch goos {
	case Linux:
		osToken = "linux"
	case Darwin:
		osToken = "mac"
	default:
		return Host{}, &UnsupportedHostError{GOOS: goos, GOARCH: goarch}
	}

	var archToken string
	switch goarch {
	case "amd64":
		archToken = "x64"
	case "arm64":
		archToken = "aarch64"
	default:
		return Host{}, &UnsupportedHostError{GOOS: goos, GOARCH: goarch}
	}

	return Host{OS: osToken, Arch: archToken}, nil
}

// compatLayerFrom detects MSYS/MinGW and Cygwin environments.
// Both leave marker variables in the environment regardless of the shell
// the process was started from.
func compatLayerFrom(getenv GetenvFunc) string {
	if getenv == nil {
		return ""
	}
	if getenv("MSYSTEM") != "" {
		return "msys"
	}
	if strings.Contains(strings.ToLower(getenv("OSTYPE")), "cygwin") {
		return "cygwin"
	}
	return ""
}

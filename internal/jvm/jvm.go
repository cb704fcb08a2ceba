// SPDX-License-Identifier: MPL-2.0

// Package jvm locates and validates the Java runtime for non-container runs.
//
// The search order is fixed: the dsw-managed runtime under the install root
// wins over JAVA_HOME, which wins over whatever java resolves on PATH. When
// the managed runtime shadows a JAVA_HOME that is also set, a warning is
// emitted so the operator understands which runtime is actually used.
package jvm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"dsw-cli/internal/issue"
	"dsw-cli/internal/layout"
)

// Supported major version range, inclusive on both ends.
const (
	MinSupportedMajor = 11
	MaxSupportedMajor = 17
)

var (
	// ErrRuntimeNotFound is returned when no java executable can be located.
	ErrRuntimeNotFound = errors.New("no java runtime found")

	// ErrUnsupportedRuntime is the sentinel wrapped by
	// UnsupportedRuntimeVersionError.
	ErrUnsupportedRuntime = errors.New("unsupported java runtime version")
)

type (
	// RuntimeDescriptor is the resolved runtime location and version.
	// It is created once per run and consumed only by the command builder.
	RuntimeDescriptor struct {
		// Home is the runtime installation directory, empty when the
		// executable was resolved from PATH without a known home.
		Home string
		// Exec is the absolute path of the java executable.
		Exec string
		// Major is the parsed major version number.
		Major int
	}

	// UnsupportedRuntimeVersionError reports a runtime outside the supported
	// major version range, or a version string that could not be parsed.
	UnsupportedRuntimeVersionError struct {
		// Detected is the raw version string reported by the runtime.
		Detected string
		// Major is the parsed major version, zero on parse failure.
		Major int
	}

	// LookPathFunc is the executable lookup signature, injectable for tests.
	LookPathFunc func(file string) (string, error)

	// ExecCommandFunc is the command creation signature, injectable for tests.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// GetenvFunc is the environment lookup signature, injectable for tests.
	GetenvFunc func(key string) string

	// StatFunc is the filesystem probe signature, injectable for tests.
	StatFunc func(name string) (os.FileInfo, error)

	// Validator resolves and version-checks the host's Java runtime.
	Validator struct {
		lookPath    LookPathFunc
		execCommand ExecCommandFunc
		getenv      GetenvFunc
		stat        StatFunc
		logger      *log.Logger
	}

	// Option configures a Validator.
	Option func(*Validator)
)

// Error implements the error interface.
func (e *UnsupportedRuntimeVersionError) Error() string {
	return fmt.Sprintf("java runtime version %q (major %d) is not supported, need %d-%d",
		e.Detected, e.Major, MinSupportedMajor, MaxSupportedMajor)
}

// Unwrap returns ErrUnsupportedRuntime.
func (e *UnsupportedRuntimeVersionError) Unwrap() error { return ErrUnsupportedRuntime }

// WithLookPath injects an executable lookup for testing.
func WithLookPath(fn LookPathFunc) Option {
	return func(v *Validator) { v.lookPath = fn }
}

// WithExecCommand injects a command factory for testing.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(v *Validator) { v.execCommand = fn }
}

// WithGetenv injects an environment lookup for testing.
func WithGetenv(fn GetenvFunc) Option {
	return func(v *Validator) { v.getenv = fn }
}

// WithStat injects a filesystem probe for testing.
func WithStat(fn StatFunc) Option {
	return func(v *Validator) { v.stat = fn }
}

// WithLogger injects the logger used for the shadowing warning.
func WithLogger(logger *log.Logger) Option {
	return func(v *Validator) { v.logger = logger }
}

// New creates a Validator backed by the real host.
func New(opts ...Option) *Validator {
	v := &Validator{
		lookPath:    exec.LookPath,
		execCommand: exec.CommandContext,
		getenv:      os.Getenv,
		stat:        os.Stat,
		logger:      log.NewWithOptions(os.Stderr, log.Options{Prefix: "dsw"}),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Resolve locates a java executable, queries its version and validates it
// against the supported major range.
func (v *Validator) Resolve(ctx context.Context, lay layout.Layout) (RuntimeDescriptor, error) {
	desc, err := v.locate(lay)
	if err != nil {
		return RuntimeDescriptor{}, err
	}

	detected, err := v.queryVersion(ctx, desc.Exec)
	if err != nil {
		return RuntimeDescriptor{}, fmt.Errorf("failed to query java version from %s: %w", desc.Exec, err)
	}

	major, ok := ParseMajor(detected)
	if !ok || major < MinSupportedMajor || major > MaxSupportedMajor {
		return RuntimeDescriptor{}, &UnsupportedRuntimeVersionError{Detected: detected, Major: major}
	}

	desc.Major = major
	return desc, nil
}

// locate finds the java executable without invoking it.
func (v *Validator) locate(lay layout.Layout) (RuntimeDescriptor, error) {
	javaHome := v.getenv("JAVA_HOME")

	if managed := lay.RuntimeJavaExec(); v.isExecutableFile(managed) {
		if javaHome != "" {
			v.logger.Warn("managed runtime shadows JAVA_HOME",
				"managed", lay.RuntimeDir(), "java_home", javaHome)
		}
		return RuntimeDescriptor{Home: lay.RuntimeDir(), Exec: managed}, nil
	}

	if javaHome != "" {
		exe := filepath.Join(javaHome, "bin", "java")
		if v.isExecutableFile(exe) {
			return RuntimeDescriptor{Home: javaHome, Exec: exe}, nil
		}
		return RuntimeDescriptor{}, issue.NewErrorContext().
			WithOperation("locate java runtime").
			WithResource(exe).
			WithSuggestion("JAVA_HOME is set but contains no bin/java; fix or unset it").
			WithSuggestion("Run 'dsw install runtime' to install a managed runtime").
			Wrap(ErrRuntimeNotFound).
			BuildError()
	}

	if path, err := v.lookPath("java"); err == nil {
		return RuntimeDescriptor{Exec: path}, nil
	}

	return RuntimeDescriptor{}, issue.NewErrorContext().
		WithOperation("locate java runtime").
		WithResource("java").
		WithSuggestion("Run 'dsw install runtime' to install a managed runtime").
		WithSuggestion("Or install a JDK (11-17) and export JAVA_HOME").
		Wrap(ErrRuntimeNotFound).
		BuildError()
}

// queryVersion runs `java -version` and returns its output.
// The JVM historically writes the banner to stderr, so both streams are read.
func (v *Validator) queryVersion(ctx context.Context, exe string) (string, error) {
	cmd := v.execCommand(ctx, exe, "-version")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ParseMajor extracts the major version number from a `java -version` banner.
// The first double-quoted token is taken as the version string. A leading
// "1." prefix (legacy numbering, e.g. "1.8.0_392") is stripped before the
// first dot-separated component is parsed.
func ParseMajor(banner string) (int, bool) {
	version, ok := quotedVersion(banner)
	if !ok {
		return 0, false
	}

	version = strings.TrimPrefix(version, "1.")
	major, _, _ := strings.Cut(version, ".")

	n, err := strconv.Atoi(major)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// quotedVersion returns the first double-quoted token in the banner.
func quotedVersion(banner string) (string, bool) {
	start := strings.IndexByte(banner, '"')
	if start < 0 {
		return "", false
	}
	rest := banner[start+1:]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// isExecutableFile reports whether path exists as a regular file.
// Executability itself is left to the exec call; a stat keeps probing cheap.
func (v *Validator) isExecutableFile(path string) bool {
	info, err := v.stat(path)
	return err == nil && info.Mode().IsRegular()
}

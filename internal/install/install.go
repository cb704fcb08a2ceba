// SPDX-License-Identifier: MPL-2.0

// Package install performs idempotent installation of the docsmith toolchain
// and of a managed Java runtime.
//
// Two toolchain strategies exist: floating versions ("latest", "latestdev")
// are git clones kept fresh with a pull, pinned versions are release archives
// downloaded and extracted under the install root. The runtime strategy
// downloads a fixed-major JDK archive from the Adoptium API and extracts it
// into the managed runtime directory.
//
// Every strategy checks its host prerequisites before touching the network
// and returns early, with a log line, when the component is already present.
package install

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"

	"dsw-cli/internal/download"
	"dsw-cli/internal/issue"
	"dsw-cli/internal/layout"
	"dsw-cli/internal/platform"
	"dsw-cli/pkg/types"
)

const (
	// repoURL is the toolchain development repository, cloned for "latest".
	repoURL = "https://github.com/docsmith-org/docsmith.git"

	// repoSSHURL is the same repository over SSH, cloned for "latestdev" so
	// contributors with push access get a writable checkout.
	repoSSHURL = "git@github.com:docsmith-org/docsmith.git"

	// releaseURLFmt locates the release archive for a pinned version.
	releaseURLFmt = "https://github.com/docsmith-org/docsmith/releases/download/v%s/docsmith-%s.zip"

	// runtimeURLFmt locates the latest GA build of the installed JDK major
	// for a given OS and architecture token.
	runtimeURLFmt = "https://api.adoptium.net/v3/binary/latest/%d/ga/%s/%s/jdk/hotspot/normal/eclipse"

	// runtimeMajor is the JDK major version the runtime installer provides.
	runtimeMajor = 17
)

var (
	// ErrGitNotFound is returned when a floating install needs git and the
	// host has none.
	ErrGitNotFound = errors.New("git not found")

	// ErrUnzipNotFound is returned when a pinned install needs unzip and the
	// host has none.
	ErrUnzipNotFound = errors.New("unzip not found")
)

type (
	// LookPathFunc is the executable lookup signature, injectable for tests.
	LookPathFunc func(file string) (string, error)

	// ExecCommandFunc is the command creation signature, injectable for tests.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// StatFunc is the filesystem probe signature, injectable for tests.
	StatFunc func(name string) (os.FileInfo, error)

	// Fetcher is the download capability the installer depends on.
	Fetcher interface {
		Fetch(ctx context.Context, url, dest string) error
	}

	// HostDetectFunc resolves the distribution API tokens for this host.
	HostDetectFunc func() (platform.Host, error)

	// Installer installs toolchain versions and the managed runtime.
	Installer struct {
		fetcher     Fetcher
		lookPath    LookPathFunc
		execCommand ExecCommandFunc
		stat        StatFunc
		mkdirAll    func(path string, perm os.FileMode) error
		remove      func(name string) error
		detectHost  HostDetectFunc
		logger      *log.Logger
	}

	// CommandError reports a failed external tool invocation together with
	// the tool's exit code, which dsw propagates verbatim.
	CommandError struct {
		Tool     string
		ExitCode types.ExitCode
		Cause    error
	}

	// Option configures an Installer.
	Option func(*Installer)
)

// Error implements the error interface.
func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed (exit code %s)", e.Tool, e.ExitCode)
}

// Unwrap returns the underlying execution error.
func (e *CommandError) Unwrap() error { return e.Cause }

// WithFetcher injects the downloader.
func WithFetcher(f Fetcher) Option {
	return func(i *Installer) { i.fetcher = f }
}

// WithLookPath injects an executable lookup for testing.
func WithLookPath(fn LookPathFunc) Option {
	return func(i *Installer) { i.lookPath = fn }
}

// WithExecCommand injects a command factory for testing.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(i *Installer) { i.execCommand = fn }
}

// WithStat injects a filesystem probe for testing.
func WithStat(fn StatFunc) Option {
	return func(i *Installer) { i.stat = fn }
}

// WithMkdirAll injects a directory creator for testing.
func WithMkdirAll(fn func(string, os.FileMode) error) Option {
	return func(i *Installer) { i.mkdirAll = fn }
}

// WithRemove injects a file remover for testing.
func WithRemove(fn func(string) error) Option {
	return func(i *Installer) { i.remove = fn }
}

// WithHostDetect injects a host detector for testing.
func WithHostDetect(fn HostDetectFunc) Option {
	return func(i *Installer) { i.detectHost = fn }
}

// WithLogger injects the logger for progress and idempotency messages.
func WithLogger(logger *log.Logger) Option {
	return func(i *Installer) { i.logger = logger }
}

// New creates an Installer backed by the real host.
func New(opts ...Option) *Installer {
	i := &Installer{
		fetcher:     download.New(),
		lookPath:    exec.LookPath,
		execCommand: exec.CommandContext,
		stat:        os.Stat,
		mkdirAll:    os.MkdirAll,
		remove:      os.Remove,
		detectHost:  func() (platform.Host, error) { return platform.DetectHost(os.Getenv) },
		logger:      log.NewWithOptions(os.Stderr, log.Options{Prefix: "dsw"}),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// InstallToolchain installs the requested toolchain version under the install
// root, choosing the strategy from the version kind.
func (i *Installer) InstallToolchain(ctx context.Context, lay layout.Layout, version types.ToolchainVersion) error {
	if err := version.Validate(); err != nil {
		return err
	}
	if version.IsFloating() {
		return i.installFloating(ctx, lay, version)
	}
	return i.installPinned(ctx, lay, version)
}

// installFloating clones the development repository, or pulls when a clone
// already exists. "latest" clones over HTTPS, "latestdev" over SSH.
func (i *Installer) installFloating(ctx context.Context, lay layout.Layout, version types.ToolchainVersion) error {
	if _, err := i.lookPath("git"); err != nil {
		return issue.NewErrorContext().
			WithOperation("install toolchain").
			WithResource(string(version)).
			WithSuggestion("Install git to use floating versions").
			WithSuggestion("Or install a pinned release, which only needs a download tool and unzip").
			Wrap(ErrGitNotFound).
			BuildError()
	}

	dir := lay.VersionDir(version)
	if i.exists(dir) {
		i.logger.Info("updating existing clone", "dir", dir)
		return i.run(ctx, "git", "-C", dir, "pull")
	}

	url := repoURL
	if version.Kind() == types.KindLatestDev {
		url = repoSSHURL
	}

	if err := i.mkdirAll(lay.InstallRoot, 0o755); err != nil {
		return fmt.Errorf("failed to create install root %s: %w", lay.InstallRoot, err)
	}

	i.logger.Info("cloning toolchain repository", "url", url, "dir", dir)
	return i.run(ctx, "git", "clone", url, dir)
}

// installPinned downloads and extracts a release archive. The extraction tool
// is verified before any network access so a missing unzip fails fast.
func (i *Installer) installPinned(ctx context.Context, lay layout.Layout, version types.ToolchainVersion) error {
	launcher := lay.Launcher(version)
	if i.exists(launcher) {
		i.logger.Info("toolchain already installed", "version", version, "dir", lay.VersionDir(version))
		return nil
	}

	if _, err := i.lookPath("unzip"); err != nil {
		return issue.NewErrorContext().
			WithOperation("install toolchain").
			WithResource(string(version)).
			WithSuggestion("Install unzip to extract release archives").
			Wrap(ErrUnzipNotFound).
			BuildError()
	}

	if err := i.mkdirAll(lay.InstallRoot, 0o755); err != nil {
		return fmt.Errorf("failed to create install root %s: %w", lay.InstallRoot, err)
	}

	url := fmt.Sprintf(releaseURLFmt, version, version)
	scratch := lay.ScratchArchive(version)

	i.logger.Info("downloading toolchain release", "version", version, "url", url)
	if err := i.fetcher.Fetch(ctx, url, scratch); err != nil {
		return err
	}

	if err := i.run(ctx, "unzip", "-q", "-o", scratch, "-d", lay.InstallRoot); err != nil {
		return err
	}

	if err := i.remove(scratch); err != nil {
		return fmt.Errorf("failed to remove scratch archive %s: %w", scratch, err)
	}

	i.logger.Info("toolchain installed", "version", version, "dir", lay.VersionDir(version))
	return nil
}

// InstallRuntime installs the managed Java runtime under the install root.
// Host support is verified before any network access.
func (i *Installer) InstallRuntime(ctx context.Context, lay layout.Layout) error {
	if i.exists(lay.RuntimeJavaExec()) {
		i.logger.Info("runtime already installed", "dir", lay.RuntimeDir())
		return nil
	}

	host, err := i.detectHost()
	if err != nil {
		return err
	}

	if err := i.mkdirAll(lay.RuntimeDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create runtime directory %s: %w", lay.RuntimeDir(), err)
	}

	url := fmt.Sprintf(runtimeURLFmt, runtimeMajor, host.OS, host.Arch)
	scratch := lay.RuntimeScratchArchive()

	i.logger.Info("downloading runtime", "major", runtimeMajor, "os", host.OS, "arch", host.Arch)
	if err := i.fetcher.Fetch(ctx, url, scratch); err != nil {
		return err
	}

	// The archive nests everything under a jdk-<version> directory; one
	// leading component is stripped so bin/java lands directly in RuntimeDir.
	if err := i.run(ctx, "tar", "-xzf", scratch, "--strip-components", "1", "-C", lay.RuntimeDir()); err != nil {
		return err
	}

	if err := i.remove(scratch); err != nil {
		return fmt.Errorf("failed to remove scratch archive %s: %w", scratch, err)
	}

	i.logger.Info("runtime installed", "dir", lay.RuntimeDir())
	return nil
}

// run executes an external tool with its output streamed through, mapping a
// non-zero exit into a CommandError that preserves the code.
func (i *Installer) run(ctx context.Context, name string, arg ...string) error {
	cmd := i.execCommand(ctx, name, arg...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		code := types.ExitFailure
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = types.ExitCode(exitErr.ExitCode())
		}
		return &CommandError{Tool: name, ExitCode: code, Cause: err}
	}
	return nil
}

// exists reports whether path is present on the filesystem.
func (i *Installer) exists(path string) bool {
	_, err := i.stat(path)
	return err == nil
}

// SPDX-License-Identifier: MPL-2.0

// Package layout owns the persisted filesystem layout of dsw.
//
// Everything dsw installs lives under a single install root: one
// subdirectory per installed toolchain version plus one subdirectory for the
// managed Java runtime. The SDKMAN candidate tree is read (never written) to
// probe version-manager installs.
package layout

import (
	"fmt"
	"os"
	"path/filepath"

	"dsw-cli/pkg/types"
)

const (
	// ToolchainName is the name of the wrapped document-generation toolchain.
	ToolchainName = "docsmith"

	// LauncherRelPath is the launcher entry point relative to a toolchain
	// distribution directory.
	LauncherRelPath = "bin/docsmith"

	// runtimeDirName is the managed Java runtime directory under the root.
	runtimeDirName = "jdk"

	// gradleHomeDirName holds the shared Gradle cache used by interactive runs.
	gradleHomeDirName = "gradle-home"
)

// Layout resolves all install paths for one run. It is computed once from the
// environment and passed down the pipeline; nothing else inspects HOME.
type Layout struct {
	// InstallRoot is the dsw-owned install root (default ~/.docsmith).
	InstallRoot string
	// SDKManDir is the SDKMAN installation directory (default ~/.sdkman).
	// It may not exist; callers probe for it.
	SDKManDir string
}

// Detect resolves the layout from the process environment.
// DOCSMITH_HOME overrides the install root and SDKMAN_DIR overrides the
// SDKMAN directory, matching the conventions of both tools.
func Detect() (Layout, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Layout{}, fmt.Errorf("failed to get home directory: %w", err)
	}
	return detectFrom(home, os.Getenv), nil
}

// detectFrom is the injectable core of Detect.
func detectFrom(home string, getenv func(string) string) Layout {
	root := getenv("DOCSMITH_HOME")
	if root == "" {
		root = filepath.Join(home, "."+ToolchainName)
	}

	sdkman := getenv("SDKMAN_DIR")
	if sdkman == "" {
		sdkman = filepath.Join(home, ".sdkman")
	}

	return Layout{InstallRoot: root, SDKManDir: sdkman}
}

// VersionDir returns the distribution directory for a toolchain version.
// Floating versions share a single directory because a clone tracks whatever
// state was last pulled, not a tag.
func (l Layout) VersionDir(version types.ToolchainVersion) string {
	return filepath.Join(l.InstallRoot, ToolchainName+"-"+string(version))
}

// Launcher returns the local launcher entry point for a toolchain version.
func (l Layout) Launcher(version types.ToolchainVersion) string {
	return filepath.Join(l.VersionDir(version), filepath.FromSlash(LauncherRelPath))
}

// SDKCandidateDir returns SDKMAN's candidate home for a toolchain version.
func (l Layout) SDKCandidateDir(version types.ToolchainVersion) string {
	return filepath.Join(l.SDKManDir, "candidates", ToolchainName, string(version))
}

// SDKLauncher returns the launcher entry point inside SDKMAN's candidate home.
func (l Layout) SDKLauncher(version types.ToolchainVersion) string {
	return filepath.Join(l.SDKCandidateDir(version), filepath.FromSlash(LauncherRelPath))
}

// RuntimeDir returns the managed Java runtime directory.
func (l Layout) RuntimeDir() string {
	return filepath.Join(l.InstallRoot, runtimeDirName)
}

// RuntimeJavaExec returns the java executable inside the managed runtime.
func (l Layout) RuntimeJavaExec() string {
	return filepath.Join(l.RuntimeDir(), "bin", "java")
}

// GradleHomeDir returns the shared Gradle cache directory used when an
// interactive session keeps a build daemon's caches under the install root.
func (l Layout) GradleHomeDir() string {
	return filepath.Join(l.InstallRoot, gradleHomeDirName)
}

// ScratchArchive returns the temporary download location for a release
// archive. It lives under the install root so a failed download leaves only a
// discardable file behind.
func (l Layout) ScratchArchive(version types.ToolchainVersion) string {
	return filepath.Join(l.InstallRoot, fmt.Sprintf("%s-%s.zip.part", ToolchainName, version))
}

// RuntimeScratchArchive returns the temporary download location for the Java
// runtime archive.
func (l Layout) RuntimeScratchArchive() string {
	return filepath.Join(l.InstallRoot, runtimeDirName+".tar.gz.part")
}

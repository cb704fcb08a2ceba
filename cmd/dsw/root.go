// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"dsw-cli/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose error output
	verbose bool

	// rootCmd represents the whole dsw invocation surface. dsw has no
	// subcommand tree: the positional grammar is dispatched by hand.
	rootCmd = &cobra.Command{
		Use:   "dsw [environment] <task...> | [environment] install <toolchain|runtime>",
		Short: "Resolve, install and run the docsmith toolchain",
		Long: TitleStyle.Render("dsw") + SubtitleStyle.Render(" - the docsmith wrapper") + `

dsw decides where a docsmith task should run (a local install, an
SDKMAN-managed install, or a container image), installs missing pieces on
request, and hands your tasks to the toolchain.

` + SubtitleStyle.Render("Environments (optional leading token):") + `
  local       a dsw-owned install under ~/.docsmith
  sdk         an SDKMAN-managed install
  container   the docsmith image via Docker or Podman

` + SubtitleStyle.Render("Examples:") + `
  dsw generateSite                Run a task wherever docsmith is installed
  dsw container generateSite      Force the container environment
  dsw install toolchain           Install the configured toolchain version
  dsw install runtime             Install a managed Java runtime
  DOCSMITH_VERSION=latest dsw generatePDF`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose error output")
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// renderHelp prints remediation context for an error before it is returned:
// an ActionableError's suggestions, then the matching issue catalog entry.
// The one-line error itself is printed by the framework.
func renderHelp(stderr io.Writer, err error) {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		fmt.Fprintln(stderr, ae.Format(verbose))
	}

	if id := issueFor(err); id != 0 {
		if entry := issue.Get(id); entry != nil {
			if rendered, renderErr := entry.Render("dark"); renderErr == nil {
				fmt.Fprint(stderr, rendered)
			}
		}
	}
}

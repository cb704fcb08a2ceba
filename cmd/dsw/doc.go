// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI surface of dsw.
//
// dsw has a positional invocation grammar rather than a subcommand tree: an
// optional leading environment token, then either an install directive with
// a component name, or task names passed through verbatim to the docsmith
// toolchain. The root command parses that grammar and drives the resolution
// pipeline.
package cmd

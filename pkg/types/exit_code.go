// SPDX-License-Identifier: MPL-2.0

// Package types defines cross-cutting value types shared by the dsw domain
// packages (environ, install, invocation). These are foundation types that
// carry semantic meaning and validation but have no domain-specific
// dependencies.
//
// This package is a leaf dependency: it imports only the standard library.
package types

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

// Well-known dsw exit codes. Codes produced by the underlying toolchain or a
// download tool are passed through verbatim and are not listed here.
const (
	// ExitSuccess means the run completed without error.
	ExitSuccess ExitCode = 0
	// ExitFailure is the generic tool failure code.
	ExitFailure ExitCode = 1
	// ExitUsage means the arguments were invalid (unknown environment,
	// unknown component, incompatible version/environment combination).
	ExitUsage ExitCode = 2
	// ExitInternal flags an internal invariant violation: a branch that
	// should have been unreachable given prior validation. Always a dsw
	// defect, never a user error.
	ExitInternal ExitCode = 70
)

type (
	// ExitCode represents a process exit status code.
	// Exit codes are in the range 0-255 on POSIX systems.
	// The zero value (0) means success.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside the
	// valid range (0-255).
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode so callers can use errors.Is for programmatic detection.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the ExitCode is outside the valid range (0-255).
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }

// SPDX-License-Identifier: MPL-2.0

// Package environ models the closed set of dsw execution environments and
// the decision logic that picks exactly one of them for a run.
//
// The pipeline is explicit: capability probing produces a Registry, the
// Registry plus the requested version produce an InstallationState, and
// Select combines both with the user's (optional) explicit choice. Each
// phase takes the prior phase's typed result; there is no ambient state.
package environ

import (
	"errors"
	"fmt"

	"dsw-cli/pkg/types"
)

// The closed set of execution environments. No instances are created, only
// selected.
const (
	// EnvLocal is a dsw-owned install under the install root.
	// It is always usable and the only environment that can host installs.
	EnvLocal Environment = "local"
	// EnvSDK is an SDKMAN-managed install.
	EnvSDK Environment = "sdk"
	// EnvContainer runs the toolchain image in a container engine.
	EnvContainer Environment = "container"
)

// ErrUsage is the sentinel wrapped by every argument error in this package.
// The CLI layer maps anything that is ErrUsage to the usage exit code.
var ErrUsage = errors.New("usage error")

type (
	// Environment is one of the fixed, mutually exclusive ways to obtain
	// and run the toolchain.
	Environment string

	// UnknownEnvironmentError is returned when a value outside the closed
	// Environment set is supplied.
	UnknownEnvironmentError struct {
		Value string
	}

	// UnavailableEnvironmentError is returned when an explicitly requested
	// Environment is missing its host prerequisite.
	UnavailableEnvironmentError struct {
		Env Environment
		// Missing names the absent prerequisite for remediation text.
		Missing string
	}

	// FloatingEnvironmentError is returned when a floating version is
	// combined with any environment other than local.
	FloatingEnvironmentError struct {
		Version types.ToolchainVersion
		Env     Environment
	}
)

// All returns the closed Environment set in preference order.
func All() []Environment {
	return []Environment{EnvLocal, EnvSDK, EnvContainer}
}

// Parse validates a user-supplied environment token.
func Parse(value string) (Environment, error) {
	env := Environment(value)
	if err := env.Validate(); err != nil {
		return "", err
	}
	return env, nil
}

// IsKnown reports whether the token names a member of the closed set,
// without treating an arbitrary task name as an error.
func IsKnown(value string) bool {
	return Environment(value).Validate() == nil
}

// Validate returns an error if the Environment is not a member of the closed set.
func (e Environment) Validate() error {
	switch e {
	case EnvLocal, EnvSDK, EnvContainer:
		return nil
	default:
		return &UnknownEnvironmentError{Value: string(e)}
	}
}

// String returns the string representation of the Environment.
func (e Environment) String() string { return string(e) }

// Error implements the error interface.
func (e *UnknownEnvironmentError) Error() string {
	return fmt.Sprintf("unknown environment %q (valid: local, sdk, container)", e.Value)
}

// Unwrap returns ErrUsage: an unknown environment is an argument error.
func (e *UnknownEnvironmentError) Unwrap() error { return ErrUsage }

// Error implements the error interface.
func (e *UnavailableEnvironmentError) Error() string {
	return fmt.Sprintf("environment '%s' is not available on this host: %s is missing", e.Env, e.Missing)
}

// Unwrap returns ErrUsage: requesting an unavailable environment is an argument error.
func (e *UnavailableEnvironmentError) Unwrap() error { return ErrUsage }

// Error implements the error interface.
func (e *FloatingEnvironmentError) Error() string {
	return fmt.Sprintf("floating version '%s' can only be used with the local environment, not '%s'",
		e.Version, e.Env)
}

// Unwrap returns ErrUsage: the combination is rejected during input validation.
func (e *FloatingEnvironmentError) Unwrap() error { return ErrUsage }

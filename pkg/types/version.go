// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// Reserved floating version identifiers. Everything else is a pinned release tag.
const (
	// VersionLatest tracks the newest unreleased state of the toolchain,
	// cloned read-only over HTTPS. Usable only with the local environment.
	VersionLatest ToolchainVersion = "latest"
	// VersionLatestDev tracks the newest unreleased state with push access,
	// cloned over SSH. Usable only with the local environment.
	VersionLatestDev ToolchainVersion = "latestdev"
)

// VersionKind values returned by ToolchainVersion.Kind.
const (
	KindPinned VersionKind = iota
	KindLatest
	KindLatestDev
)

// ErrInvalidToolchainVersion is the sentinel error wrapped by InvalidToolchainVersionError.
var ErrInvalidToolchainVersion = errors.New("invalid toolchain version")

type (
	// ToolchainVersion identifies a docsmith release. Two reserved values
	// (VersionLatest, VersionLatestDev) select floating development installs;
	// all other non-empty values name a fixed release tag such as "2.3.1".
	ToolchainVersion string

	// VersionKind is the tagged install strategy derived from a
	// ToolchainVersion exactly once, during input validation. Carrying the
	// kind explicitly avoids re-deriving it by string inspection at use sites.
	VersionKind int

	// InvalidToolchainVersionError is returned when a ToolchainVersion is
	// empty or whitespace-only.
	InvalidToolchainVersionError struct {
		Value ToolchainVersion
	}
)

// Error implements the error interface.
func (e *InvalidToolchainVersionError) Error() string {
	return fmt.Sprintf("invalid toolchain version %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidToolchainVersion so callers can use errors.Is for
// programmatic detection.
func (e *InvalidToolchainVersionError) Unwrap() error { return ErrInvalidToolchainVersion }

// Validate returns an error if the ToolchainVersion is empty or whitespace-only.
func (v ToolchainVersion) Validate() error {
	if strings.TrimSpace(string(v)) == "" {
		return &InvalidToolchainVersionError{Value: v}
	}
	return nil
}

// Kind returns the install strategy selected by this version value.
func (v ToolchainVersion) Kind() VersionKind {
	switch v {
	case VersionLatest:
		return KindLatest
	case VersionLatestDev:
		return KindLatestDev
	default:
		return KindPinned
	}
}

// IsFloating returns true for the reserved development identifiers.
// Floating versions are installable only via repository clone/update and only
// in the local environment.
func (v ToolchainVersion) IsFloating() bool {
	return v == VersionLatest || v == VersionLatestDev
}

// String returns the string representation of the ToolchainVersion.
func (v ToolchainVersion) String() string { return string(v) }

// String returns the string representation of the VersionKind.
func (k VersionKind) String() string {
	switch k {
	case KindPinned:
		return "pinned"
	case KindLatest:
		return "latest"
	case KindLatestDev:
		return "latestdev"
	default:
		return fmt.Sprintf("VersionKind(%d)", int(k))
	}
}

// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error context for dsw.
//
// Two layers live here: ActionableError, an error type carrying the failed
// operation, the resource involved, and remediation suggestions; and a
// catalog of known issues (missing prerequisites, unsupported hosts) with
// markdown help text rendered via glamour.
package issue

// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestExitCode_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		code    ExitCode
		wantErr bool
	}{
		{"success", ExitSuccess, false},
		{"generic failure", ExitFailure, false},
		{"usage error", ExitUsage, false},
		{"internal invariant", ExitInternal, false},
		{"max valid", ExitCode(255), false},
		{"negative", ExitCode(-1), true},
		{"above range", ExitCode(256), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.code.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidExitCode) {
				t.Errorf("Validate() error should wrap ErrInvalidExitCode, got %v", err)
			}
		})
	}
}

func TestExitCode_IsSuccess(t *testing.T) {
	t.Parallel()

	if !ExitSuccess.IsSuccess() {
		t.Error("ExitSuccess.IsSuccess() = false, want true")
	}
	if ExitFailure.IsSuccess() {
		t.Error("ExitFailure.IsSuccess() = true, want false")
	}
	if ExitUsage.IsSuccess() {
		t.Error("ExitUsage.IsSuccess() = true, want false")
	}
}

func TestExitCode_String(t *testing.T) {
	t.Parallel()

	if got := ExitInternal.String(); got != "70" {
		t.Errorf("ExitInternal.String() = %q, want %q", got, "70")
	}
}

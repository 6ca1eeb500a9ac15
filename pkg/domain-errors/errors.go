// Package domainerrors provides coded errors shared by all trustgate
// services. Codes classify failures for transport mapping and tests without
// leaking which internal check failed to the end user.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeInvalidCredentials covers failed primary credential checks.
	// Deliberately generic: it never distinguishes unknown user from wrong
	// password (username enumeration).
	CodeInvalidCredentials Code = "invalid_credentials"
	// CodeInvalidOrExpired covers OTP codes that are unknown, consumed, or
	// past their TTL. One code for all three states prevents replay probing.
	CodeInvalidOrExpired Code = "invalid_or_expired"
	// CodeBiometricMismatch covers a presented template that does not match.
	CodeBiometricMismatch Code = "biometric_mismatch"
	// CodeBiometricNotEnabled covers biometric login without an enrolled profile.
	CodeBiometricNotEnabled Code = "biometric_not_enabled"
	// CodeStepUpRequired is informational: the caller must complete OTP.
	CodeStepUpRequired Code = "step_up_required"
	// CodeTimeout covers an external store exceeding the caller's deadline.
	CodeTimeout Code = "external_store_timeout"
	// CodeUnavailable covers external store failures other than timeouts.
	CodeUnavailable Code = "external_store_unavailable"

	CodeNotFound     Code = "not_found"
	CodeInvalidInput Code = "invalid_input"
	CodeUnauthorized Code = "unauthorized"
	CodeConflict     Code = "conflict"
	CodeInternal     Code = "internal"
)

// Error is a coded domain error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap annotates err with a code and message. Returns nil when err is nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err or any error in its chain carries code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		if err == nil {
			break
		}
	}
	return false
}

// CodeOf returns the outermost code in err's chain, or CodeInternal when
// err carries no code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Package cliutil provides custom error types for user-friendly error
// messaging.
//
// This package distinguishes between user-facing errors and technical
// errors, allowing the CLI to display clean messages while preserving
// technical details for debugging with verbose flags.
package cliutil

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.datum.net/kibanasync/internal/version"
)

// UserError represents an error with a user-friendly message.
//
// UserError separates user-facing messages from technical implementation
// details, making CLI output cleaner while preserving debugging
// information for verbose mode.
type UserError struct {
	// Message is the user-friendly error message displayed to users.
	Message string

	// Err is the underlying technical error, preserved for debugging
	// but hidden from normal output.
	Err error

	// Hint provides actionable guidance to help users resolve the issue.
	Hint string
}

// Error implements the error interface and returns the user-friendly
// message, appending the hint on a new line when one is set.
func (e *UserError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s\n%s", e.Message, e.Hint)
	}
	return e.Message
}

// Unwrap returns the underlying technical error for error chain inspection.
func (e *UserError) Unwrap() error {
	return e.Err
}

// IsUserError walks an error chain for a UserError, returning the first one
// found.
func IsUserError(err error) (*UserError, bool) {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr, true
	}
	return nil, false
}

// NewUserError creates a user-facing error with a message.
func NewUserError(message string) *UserError {
	return &UserError{Message: message}
}

// NewUserErrorWithHint creates a user-facing error with a message and
// actionable hint.
func NewUserErrorWithHint(message, hint string) *UserError {
	return &UserError{Message: message, Hint: hint}
}

// WrapUserError wraps a technical error with a user-friendly message.
func WrapUserError(message string, err error) *UserError {
	return &UserError{Message: message, Err: err}
}

// WrapUserErrorWithHint wraps a technical error with a user-friendly
// message, hint, and the underlying technical error.
func WrapUserErrorWithHint(message, hint string, err error) *UserError {
	return &UserError{Message: message, Hint: hint, Err: err}
}

// NewUnknownFamilyError builds the user-facing error for a `--api`/`add`
// family argument that doesn't resolve to any known family or CLI alias
// (spec.md §6), with a hint listing what does.
func NewUnknownFamilyError(got string, validAliases []string) *UserError {
	sorted := append([]string(nil), validAliases...)
	sort.Strings(sorted)
	return NewUserErrorWithHint(
		fmt.Sprintf("unknown family %q", got),
		fmt.Sprintf("valid families: %s", strings.Join(sorted, ", ")),
	)
}

// NewUnsupportedAddFamilyError reports that `add`'s dependency-closure
// traversal doesn't apply to family: spec.md §4.7 only defines closure
// edges for agents, tools, and workflows.
func NewUnsupportedAddFamilyError(family version.Family) *UserError {
	return NewUserErrorWithHint(
		fmt.Sprintf("add does not support family %q", family),
		"saved_objects and spaces are managed via their manifest files directly, not through add",
	)
}

// NewConnectError wraps a failed connection attempt against a Kibana
// instance with a hint pointing at the environment variables that
// control it (spec.md §6).
func NewConnectError(url string, err error) *UserError {
	return WrapUserErrorWithHint(
		fmt.Sprintf("could not connect to %s", url),
		"check KIBANA_URL, and either KIBANA_USERNAME/KIBANA_PASSWORD or KIBANA_APIKEY",
		err,
	)
}

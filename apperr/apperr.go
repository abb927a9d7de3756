// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import (
	"errors"
	"fmt"
)

// ValidationError is a user-correctable problem shown inline.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validation returns a new ValidationError.
func Validation(msg string) error {
	return &ValidationError{Message: msg}
}

// Guard errors. All of them are ValidationErrors.
var (
	ErrNoDates             = Validation("no dates selected")
	ErrMissingTimeSlot     = Validation("missing time slot")
	ErrTitleRequired       = Validation("title is required")
	ErrNameRequired        = Validation("voter name is required")
	ErrShareCodeRequired   = Validation("share code is required")
	ErrBusy                = Validation("another update is in progress")
	ErrNotPermitted        = Validation("only the poll creator can do that")
	ErrNoActivePoll        = Validation("no poll is open")
	ErrPollFinished        = Validation("poll finished")
	ErrAlreadySubmitted    = Validation("vote already submitted")
	ErrNoPositiveSelection = Validation("select at least one yes or maybe slot")
	ErrInvalidTransition   = Validation("status change not allowed")
	ErrPollNotFound        = Validation("poll not found")
	ErrMissingReference    = Validation("missing poll reference")
)

// RemoteError wraps a failure of the remote store or network.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Remote wraps err as a RemoteError unless it already is one.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return err
	}
	return &RemoteError{Op: op, Err: err}
}

// CompensationError reports a failed cleanup after a partial failure.
// It is logged and never returned in place of the original error.
type CompensationError struct {
	Op       string
	Original error
	Err      error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("compensate %s (after %v): %v", e.Op, e.Original, e.Err)
}

func (e *CompensationError) Unwrap() error { return e.Err }

// StaleReferenceError means a saved poll reference no longer resolves.
type StaleReferenceError struct {
	PollID    string
	ShareCode string
	Err       error
}

func (e *StaleReferenceError) Error() string {
	ref := e.PollID
	if ref == "" {
		ref = e.ShareCode
	}
	if e.Err != nil {
		return fmt.Sprintf("poll %s could not be reloaded: %v", ref, e.Err)
	}
	return fmt.Sprintf("poll %s could not be reloaded", ref)
}

func (e *StaleReferenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err is user-correctable.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsRemote reports whether err came from the remote store.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

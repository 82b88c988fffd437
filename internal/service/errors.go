package service

import (
	"errors"
	"fmt"

	"github.com/raphaelgruber/soractl/internal/errmsg"
	"github.com/raphaelgruber/soractl/internal/models"
)

// Validation errors detected before any network call.
var (
	ErrEmptyPrompt      = errors.New("prompt is required")
	ErrInvalidDuration  = errors.New("invalid duration")
	ErrNotReady         = errors.New("video is not completed")
	ErrCannotRegenerate = errors.New("no prompt to regenerate from")
	ErrNoPrompt         = errors.New("no prompt available")
)

// StatusChangedError aborts a download whose job left the completed state
// between the caller's snapshot and the pre-download re-check.
type StatusChangedError struct {
	VideoID string
	Status  models.VideoStatus
}

func (e *StatusChangedError) Error() string {
	return fmt.Sprintf("Status changed to: %s", e.Status)
}

// Unwrap reports the condition as ErrNotReady.
func (e *StatusChangedError) Unwrap() error {
	return ErrNotReady
}

// ActionError is the failed result of a lifecycle action. Message is the
// user-facing text; Err is the cause.
type ActionError struct {
	Title   string
	Message string
	URL     string // browser fallback, set when one exists
	Err     error
}

func (e *ActionError) Error() string {
	return e.Title + ": " + e.Message
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// failure classifies a remote error for display.
func failure(title string, err error) *ActionError {
	return &ActionError{Title: title, Message: errmsg.Friendly(err), Err: err}
}

// invalid wraps a local validation error with a fixed message.
func invalid(title, message string, err error) *ActionError {
	return &ActionError{Title: title, Message: message, Err: err}
}

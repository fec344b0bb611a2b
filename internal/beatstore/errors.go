package beatstore

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// ErrCodeConfigMissing indicates the scene list is absent or empty.
	ErrCodeConfigMissing ErrorCode = "CONFIG_MISSING"

	// ErrCodeInvalidScene indicates the requested scene is not registered.
	ErrCodeInvalidScene ErrorCode = "INVALID_SCENE"

	// ErrCodeNoMatchingScene indicates none of the requested scenes are registered.
	ErrCodeNoMatchingScene ErrorCode = "NO_MATCHING_SCENE"

	// ErrCodeInvalidInput indicates a malformed request (blank scene, non-finite time).
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Error is returned for every validation failure. When an Error is returned
// the beat table file has not been touched.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Scenes lists the scene names involved, if any.
	Scenes []string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if len(e.Scenes) > 0 {
		msg += fmt.Sprintf(" (scenes=%s)", strings.Join(e.Scenes, ","))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf returns the ErrorCode carried by err, or "" if err is not an *Error.
func CodeOf(err error) ErrorCode {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsConfigMissing reports whether err is a missing scene list error.
func IsConfigMissing(err error) bool { return CodeOf(err) == ErrCodeConfigMissing }

// IsInvalidScene reports whether err is an unknown scene error.
func IsInvalidScene(err error) bool { return CodeOf(err) == ErrCodeInvalidScene }

// IsNoMatchingScene reports whether err is a no-matching-scene error.
func IsNoMatchingScene(err error) bool { return CodeOf(err) == ErrCodeNoMatchingScene }

// IsInvalidInput reports whether err is an invalid input error.
func IsInvalidInput(err error) bool { return CodeOf(err) == ErrCodeInvalidInput }

func newConfigMissing(path string, err error) *Error {
	return &Error{
		Code:    ErrCodeConfigMissing,
		Message: fmt.Sprintf("scene list %s is missing or empty", path),
		Err:     err,
	}
}

func newInvalidScene(name string) *Error {
	return &Error{
		Code:    ErrCodeInvalidScene,
		Message: "scene is not in the scene list",
		Scenes:  []string{name},
	}
}

func newNoMatchingScene(requested []string) *Error {
	return &Error{
		Code:    ErrCodeNoMatchingScene,
		Message: "none of the requested scenes are in the scene list",
		Scenes:  requested,
	}
}

func newInvalidInput(message string) *Error {
	return &Error{Code: ErrCodeInvalidInput, Message: message}
}

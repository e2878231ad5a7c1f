package internal

import (
	"errors"
	"fmt"
)

// Generic errors
var (
	// ErrAccessNotPermitted is returned when an authorization check fails.
	ErrAccessNotPermitted = errors.New("access to the resource is not permitted")

	// ErrUnauthorized is returned when a receiving a 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrResourceNotFound is returned when a receiving a 404.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrResourceAlreadyExists is returned when attempting to create a resource
	// that already exists.
	ErrResourceAlreadyExists = errors.New("resource already exists")

	// ErrConflict is returned when a request conflicts with the current state
	// of a resource.
	ErrConflict = errors.New("resource conflict detected")

	// ErrTimeout is returned when a request exceeds a timeout.
	ErrTimeout = errors.New("timeout")

	// ErrRequiredName is returned when a name option is not present.
	ErrRequiredName = errors.New("name is required")

	// ErrInvalidName is returned when the name option has invalid value.
	ErrInvalidName = errors.New("invalid value for name")

	// ErrInvalidID is returned when an ID cannot be parsed.
	ErrInvalidID = errors.New("invalid resource ID")

	// ErrUploadTooLarge is returned when a user attempts to upload data that
	// is too large.
	ErrUploadTooLarge = errors.New("upload is too large")
)

// Update errors
var (
	ErrUpdateAlreadyCompleted = errors.New("update already completed")
	ErrUpdateAlreadyStarted   = errors.New("update already started")
)

// Run errors
var (
	ErrRunAlreadyStarted   = errors.New("run already started")
	ErrRunAlreadyCompleted = errors.New("run already completed")
)

type (
	// ErrMissingParameter occurs when the caller has failed to provide a
	// required parameter
	ErrMissingParameter struct {
		Parameter string
	}

	// InvalidParameterError occurs when a parameter has been provided but its
	// value is invalid.
	InvalidParameterError string
)

func (e InvalidParameterError) Error() string {
	return string(e)
}

func (e *ErrMissingParameter) Error() string {
	return fmt.Sprintf("required parameter missing: %s", e.Parameter)
}

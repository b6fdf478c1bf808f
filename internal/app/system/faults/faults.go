// Package faults defines the error taxonomy shared by the store and
// service layers. Handlers map these to HTTP status codes with errors.Is;
// everything else wraps them with fmt.Errorf("%w: ...") for context.
package faults

import "errors"

var (
	// ErrNotFound means a referenced item or team does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied means the permission predicate for the operation
	// is false for the calling user.
	ErrAccessDenied = errors.New("access denied")

	// ErrValidation means a required field is missing or a payload or
	// document exceeds a size limit.
	ErrValidation = errors.New("validation failed")

	// ErrExternalStore means a blob store upload, download, or delete
	// failed.
	ErrExternalStore = errors.New("external store failure")

	// ErrIndexUnavailable means a query needs an index that has not been
	// created. List operations absorb it by retrying unhinted.
	ErrIndexUnavailable = errors.New("index unavailable")
)

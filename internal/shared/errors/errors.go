package errors

import "errors"

// Domain errors
var (
	// Target validation errors. These are the only errors a scan surfaces
	// to callers; everything after validation degrades per category.
	ErrEmptyTarget   = errors.New("target cannot be empty")
	ErrInvalidTarget = errors.New("invalid target URL")

	// API errors
	ErrMissingURL       = errors.New("request body must include a url")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrUnauthorized     = errors.New("unauthorized")
)

// Package handlers defines HTTP-layer error codes used across all API
// endpoints. Codes are lowercase snake_case and give clients a stable,
// machine-readable taxonomy on top of the HTTP status.
package handlers

const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeForbidden   = "forbidden"
	ErrCodeNotFound    = "not_found"
	ErrCodeConflict    = "conflict"
	ErrCodeRateLimited = "too_many_requests"
	ErrCodeInternal    = "internal_error"

	// Domain-specific:
	ErrCodeUpstreamFailed   = "upstream_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeCreateFailed     = "create_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)

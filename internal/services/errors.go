// Package services defines the business logic for ad sync, message
// templates, leads, and the webhook ingestion pipeline. This file centralizes
// common service-level error values so that they can be consistently returned
// by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the
// handler layer.
package services

import "errors"

var (
	// ErrAdNotFound indicates that the requested ad does not exist locally.
	ErrAdNotFound = errors.New("ad not found")

	// ErrTemplateNotFound indicates that the requested message template does
	// not exist.
	ErrTemplateNotFound = errors.New("message template not found")

	// ErrTemplateExists is returned when creating a template for an ad that
	// already owns one (templates are 1:1 with ads).
	ErrTemplateExists = errors.New("template already exists for this ad")

	// ErrLeadNotFound indicates that the requested lead does not exist.
	ErrLeadNotFound = errors.New("lead not found")

	// ErrUpstream is returned when the Graph API could not be reached or
	// rejected the request (missing credentials included).
	ErrUpstream = errors.New("failed to fetch ads from facebook")
)

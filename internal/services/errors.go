// Package services defines the business logic for the bulletin board.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the
// handler layer.
package services

import "errors"

var (
	// ErrPostNotFound indicates that the requested post does not exist.
	ErrPostNotFound = errors.New("post not found")

	// ErrForbidden is returned when a delete is attempted by someone who is
	// neither the post's author nor the admin identity.
	ErrForbidden = errors.New("not allowed to delete this post")

	// ErrEmptyContent is returned when empty content is submitted while the
	// empty-content policy rejects it.
	ErrEmptyContent = errors.New("content is empty")
)

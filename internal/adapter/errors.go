package adapter

import "errors"

var (
	// ErrUnauthorized is returned when the document store rejects the
	// service token.
	ErrUnauthorized = errors.New("document store rejected credentials")

	// ErrTokenExpired is returned before a request is even issued when
	// the configured service token has passed its expiry claim.
	ErrTokenExpired = errors.New("service token is expired")
)

package domain

import "errors"

var (
	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("not found")

	ErrInvalidKey = errors.New("invalid storage key")
)

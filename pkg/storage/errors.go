package storage

import "errors"

var (
	// ErrNotFound indicates the requested item does not exist.
	ErrNotFound = errors.New("item not found")
	// ErrEmptyKey indicates an empty storage key or category was provided.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey indicates the storage key contains a path traversal segment.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
	// ErrSameLocation indicates a move whose destination is its source.
	ErrSameLocation = errors.New("destination resolves to source")
	// ErrCopyFailed indicates a server-side copy did not complete successfully.
	ErrCopyFailed = errors.New("copy did not complete")
)

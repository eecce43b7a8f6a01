package resources

import (
	"errors"
)

var (
	// ErrNotFound means no search root yields an existing file for the name.
	ErrNotFound = errors.New("resource not found")
	// ErrLoadFailed means the construction step rejected the file.
	ErrLoadFailed = errors.New("resource load failed")
	// ErrDisposed means the cache has already been disposed.
	ErrDisposed = errors.New("resource cache disposed")
)

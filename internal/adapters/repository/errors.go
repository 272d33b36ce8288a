package repository

import "errors"

// Sentinel kinds for history errors.
var (
	ErrNotFound      = errors.New("play not found")
	ErrConflict      = errors.New("play already exists")
	ErrInvalidLimit  = errors.New("invalid history limit")
	ErrInvalidOffset = errors.New("invalid history offset")
	ErrClosed        = errors.New("history store closed")
)

package models

import "errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient credits")
)

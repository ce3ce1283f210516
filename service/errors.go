package service

import "simmarket/models"

// Error is a failure that is safe to show to the caller. Kind is one of the
// models.Err* sentinels and decides the HTTP status.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func fail(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

var errInvalidCredentials = fail(models.ErrUnauthenticated, "Invalid credentials")

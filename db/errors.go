package db

import "errors"

// Error kinds returned by Store. Use errors.Is to classify a failure.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("duplicate record")
	ErrNotFound   = errors.New("not found")
	ErrAuth       = errors.New("invalid credentials")
)

// Error carries a client-facing message alongside its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func validationError(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }
func conflictError(msg string) error   { return &Error{Kind: ErrConflict, Message: msg} }
func notFoundError(msg string) error   { return &Error{Kind: ErrNotFound, Message: msg} }
func authError(msg string) error       { return &Error{Kind: ErrAuth, Message: msg} }

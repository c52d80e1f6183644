package core

import (
	"errors"
	"fmt"

	"safespace.app/backend/internal/auth"
)

var (
	ErrValidation         = errors.New("invalid input")
	ErrForbidden          = errors.New("forbidden")
	ErrNotProfessional    = errors.New("professional profile required")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// validationError carries a message for the caller and matches ErrValidation.
type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrValidation }

func invalidf(format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}

func requireSession(sess auth.Session) error {
	if sess.IsZero() {
		return ErrUnauthenticated
	}
	return nil
}

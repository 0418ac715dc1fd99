package core

import (
	"errors"
)

// ErrNotFound is a sentinel error for "not found" cases
var ErrNotFound = errors.New("not found")

// ErrInvalidArgument marks input that was rejected before touching storage or Discord
var ErrInvalidArgument = errors.New("invalid argument")

// ErrForbidden is returned when the caller does not administer the guild they operate on
var ErrForbidden = errors.New("forbidden")

func IsNotFoundError(err error) bool {
	return err != nil && errors.Is(err, ErrNotFound)
}

func IsInvalidArgumentError(err error) bool {
	return err != nil && errors.Is(err, ErrInvalidArgument)
}

func IsForbiddenError(err error) bool {
	return err != nil && errors.Is(err, ErrForbidden)
}

package services

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrInvalidInput wraps validation failures. The wrapped message is safe
	// to return to clients.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned when login fails for any reason.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrCategoryNotFound is returned when a term references an unknown category.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrRelatedTermNotFound is returned when a term references an unknown related term.
	ErrRelatedTermNotFound = errors.New("related term not found")
)

func isID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}

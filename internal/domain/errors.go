package domain

import (
	"errors"

	"github.com/google/uuid"
)

// Store-level errors shared by every persistence backend.
var (
	// ErrNotFound is returned when a lookup by identifier matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a unique field (bootcamp name, user
	// email, idempotency key) is already taken.
	ErrDuplicate = errors.New("duplicate field value")

	// ErrInvalidID is returned for identifiers that are not UUIDs.
	ErrInvalidID = errors.New("malformed identifier")

	// ErrInvalidQuery is returned when list filters cannot be parsed.
	ErrInvalidQuery = errors.New("invalid query")
)

// NewID returns a fresh resource identifier.
func NewID() string { return uuid.NewString() }

// ValidID reports whether id has the shape of a resource identifier.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

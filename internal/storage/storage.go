// Package storage moves uploaded files to their permanent location.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrInvalidName is returned for names that would escape the destination.
var ErrInvalidName = errors.New("storage: invalid file name")

// Mover persists the bytes read from r under name.
type Mover interface {
	Move(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}

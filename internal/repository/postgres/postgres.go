package postgres

import "github.com/pkg/errors"

// ErrNotFound is used when a specific entity is requested but does not exist.
var ErrNotFound = errors.New("not found")

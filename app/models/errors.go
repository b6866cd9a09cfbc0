package models

import "github.com/pkg/errors"

// error taxonomy shared by store, processor and api. Callers wrap them with context
// and check with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
)

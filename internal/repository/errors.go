// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios: a
// duplicate-key violation maps to HTTP 409 while any other store
// failure maps to HTTP 500 with the detail kept server-side.
package repository

import "errors"

// ErrUsernameExists is returned when an insert violates the unique
// index on users.username. Handlers should translate this into an
// HTTP 409 response.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists is returned when an insert violates the unique index
// on users.email. Handlers should translate this into an HTTP 409
// response.
var ErrEmailExists = errors.New("email already exists")

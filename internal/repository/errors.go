// Package repository provides data access to the local audit store.
// Sentinel errors defined here let handlers distinguish failure
// scenarios without inspecting driver-specific errors.
package repository

import "errors"

// ErrNotFound is returned when a requested audit record does not
// exist.  Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// Package repository holds the key-value backends the session cache and the
// persisted settings live in.  Every backend reports a missing key with
// ErrNotFound and an unreachable store with ErrUnavailable so the session
// layer can fail open without caring which backend is configured.
package repository

import "errors"

// ErrNotFound is returned when a key is absent or has expired.
var ErrNotFound = errors.New("not found")

// ErrUnavailable wraps failures of the underlying store (network, disk,
// database).  Callers treat it as "no data" rather than a hard error.
var ErrUnavailable = errors.New("storage unavailable")

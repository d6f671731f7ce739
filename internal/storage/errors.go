package storage

import "errors"

var (
	// ErrNotFound is returned by Get when no document exists under
	// the requested id.
	ErrNotFound = errors.New("document not found")

	// ErrUnavailable wraps transport failures talking to the backing
	// store. Ingestion paths degrade to a logged no-op on it; read
	// paths fall back to zero values.
	ErrUnavailable = errors.New("document store unavailable")
)

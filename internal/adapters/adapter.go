package adapters

import (
	"errors"

	"hotseatd/internal/models"
)

var (
	// ErrMalformedEvent marks a payload that failed decoding or
	// domain validation. Such events are dropped, never retried.
	ErrMalformedEvent = errors.New("malformed event")

	// ErrReconnectExhausted marks a source that gave up reconnecting
	// after the configured attempt limit.
	ErrReconnectExhausted = errors.New("reconnect attempts exhausted")
)

// SourceAdapter is one ingest source. OnEvent must be called before
// Start; the handler receives every accepted event and must not block.
// Stop is idempotent.
type SourceAdapter interface {
	Start() error
	Stop()
	OnEvent(fn func(models.SeatEvent))
}

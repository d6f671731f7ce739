package models

import "sync"

// SourceState is the typed connection state of one data source.
type SourceState uint8

const (
	StateDown SourceState = iota
	StateConnecting
	StateLive
	StateFailed // permanent, not retried without external intervention
)

func (s SourceState) String() string {
	switch s {
	case StateDown:
		return "down"
	case StateConnecting:
		return "connecting"
	case StateLive:
		return "live"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Source names used as ConnectionStatus keys.
const (
	SourceBroker    = "broker"
	SourceFeed      = "feed"
	SourceSynthetic = "synthetic"
)

// ConnectionStatus is the single shared connection-state object all
// components report into and read from, instead of each one probing
// availability ad hoc.
type ConnectionStatus struct {
	mu     sync.RWMutex
	states map[string]SourceState
}

func NewConnectionStatus() *ConnectionStatus {
	return &ConnectionStatus{states: make(map[string]SourceState)}
}

func (c *ConnectionStatus) Set(source string, state SourceState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[source] = state
}

func (c *ConnectionStatus) Get(source string) SourceState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.states[source]
}

func (c *ConnectionStatus) All() map[string]SourceState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]SourceState, len(c.states))
	for k, v := range c.states {
		out[k] = v
	}
	return out
}

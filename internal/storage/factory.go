package storage

import (
	"fmt"

	"hotseatd/internal/providers"
	"hotseatd/internal/structures"
)

// NewDocumentStore selects the configured backend. The memory backend
// needs no external service and is the default.
func NewDocumentStore(config *structures.Config, logger providers.Logger) (DocumentStore, error) {
	switch config.Store.Backend {
	case "", "memory":
		logger.Infof(providers.TypeStore, "using in-memory document store")
		return NewMemoryDocumentStore(), nil
	case "redis":
		store, err := NewRedisDocumentStore(config.Store.Redis)
		if err != nil {
			return nil, err
		}
		logger.Infof(providers.TypeStore, "using redis document store at %s", config.Store.Redis.Addr)
		return store, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", config.Store.Backend)
}

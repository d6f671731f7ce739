package di

import (
	"hotseatd/internal/providers"
	"hotseatd/internal/services"
	"hotseatd/internal/storage"
)

// The reconciler backs both the metrics gauges and the snapshot
// persistence; these narrow it to the interfaces each consumer wants.

func provideViewStats(r services.ReconcilerInterface) providers.ViewStats { return r }

func provideViewSource(r services.ReconcilerInterface) storage.ViewSource { return r }

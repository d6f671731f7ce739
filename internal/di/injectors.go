//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"hotseatd/internal"
	"hotseatd/internal/adapters"
	"hotseatd/internal/controllers"
	"hotseatd/internal/models"
	"hotseatd/internal/providers"
	"hotseatd/internal/services"
	"hotseatd/internal/storage"
	"hotseatd/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		models.NewConnectionStatus,
		services.NewReconciler,
		provideViewStats,
		provideViewSource,

		storage.NewDocumentStore,
		storage.NewSeatStore,
		storage.NewArchiver,
		storage.NewZstdCompressor,
		storage.NewSnapshotManager,
		storage.NewScheduler,

		services.NewQueryFacade,
		adapters.NewBrokerAdapter,
		adapters.NewFeedAdapter,

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}

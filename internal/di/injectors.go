//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"postpilot/internal"
	"postpilot/internal/checkpoint"
	"postpilot/internal/controllers"
	"postpilot/internal/providers"
	"postpilot/internal/services"
	"postpilot/internal/storage"
	"postpilot/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		provideContext,
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewGenAIClient,

		checkpoint.NewZstdCompressor,
		checkpoint.NewStore,
		storage.NewFirestoreStore,
		storage.NewGCSBlobStore,

		services.NewContentService,
		services.NewImageService,
		services.NewNewsService,
		services.NewPersonaService,
		services.NewPipelineService,
		services.NewScheduler,

		controllers.NewPipelineController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}

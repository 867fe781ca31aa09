//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"campuspulse-backend/infrastructure/config"
)

// InitializeContainer builds the full application graph.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(
		ProvideLogger,
		ProvideClock,
		ProvideMetrics,
		ProvideDomainConfig,
		ProvideRepositories,
		ProvideSessionManager,
		ProvideScheduler,
		ProvideBuses,
		ProvideErrorHandler,
		ProvideTracing,
		wire.Struct(new(Container), "*"),
	)
	return nil, nil
}

//go:build wireinject
// +build wireinject

package di

import (
	"github.com/Fuel4us/hype-revenue/pkg/config"
	"github.com/Fuel4us/hype-revenue/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideHTTPClient,

		// Upstream sources
		ProvidePriceSource,
		ProvideFeeSource,
		ProvideLiveOpenInterestSource,
		ProvideOpenInterestArchive,

		// Infrastructure
		ProvideCache,
		ProvideSummaryPublisher,
		ProvideRateLimiter,

		// Use cases
		ProvideDashboardUseCase,

		// Application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return nil, nil, nil
}

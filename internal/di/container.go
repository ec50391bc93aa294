// Package di provides dependency injection configuration for the RebelPost server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/rebelpost/rebelpost-server/internal/config"
	"github.com/rebelpost/rebelpost-server/internal/di/providers"
	"github.com/rebelpost/rebelpost-server/internal/ledger"
	"github.com/rebelpost/rebelpost-server/internal/logger"
	"github.com/rebelpost/rebelpost-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideLedger)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Rate limiting
	do.Provide(injector, providers.ProvidePostLimiter)
	do.Provide(injector, providers.ProvideVoteLimiter)

	// Business services
	do.Provide(injector, providers.ProvidePostService)
	do.Provide(injector, providers.ProvideVoteService)
	do.Provide(injector, providers.ProvideProfileService)
	do.Provide(injector, providers.ProvideHashtagService)
	do.Provide(injector, providers.ProvidePasskeyService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*ledger.Ledger](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*providers.PostLimiter](injector)
	_ = do.MustInvoke[*providers.VoteLimiter](injector)

	// Business services
	_ = do.MustInvoke[*service.PostService](injector)
	_ = do.MustInvoke[*service.VoteService](injector)
	_ = do.MustInvoke[*service.ProfileService](injector)
	_ = do.MustInvoke[*service.HashtagService](injector)
	_ = do.MustInvoke[*service.PasskeyService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Rebuild the search index if it lost sync with the store
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}

package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/rebelpost/rebelpost-server/internal/config"
	"github.com/rebelpost/rebelpost-server/internal/logger"
	"github.com/rebelpost/rebelpost-server/internal/search"
	"github.com/rebelpost/rebelpost-server/internal/service"
	"github.com/rebelpost/rebelpost-server/internal/store"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Data.BasePath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(indexHandle.SearchIndex, storeHandle.Store, log.Logger), nil
}

// TriggerSearchReindexIfNeeded rebuilds an empty index when posts exist.
// Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	searchService := do.MustInvoke[*service.SearchService](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := searchService.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	page, err := storeHandle.ListPosts(ctx, store.PaginationParams{Limit: 1})
	if err != nil || len(page.Items) == 0 {
		return
	}

	log.Info("Search index is empty but posts exist, triggering initial reindex")

	go func() {
		reindexCtx := context.Background()
		if err := searchService.ReindexAll(reindexCtx); err != nil {
			log.Error("Initial search reindex failed", "error", err)
		} else {
			count, _ := searchService.DocumentCount()
			log.Info("Initial search reindex completed", "documents", count)
		}
	}()
}

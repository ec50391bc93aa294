package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/rebelpost/rebelpost-server/internal/api"
	"github.com/rebelpost/rebelpost-server/internal/config"
	"github.com/rebelpost/rebelpost-server/internal/logger"
	"github.com/rebelpost/rebelpost-server/internal/service"
	"github.com/rebelpost/rebelpost-server/internal/sse"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Post:    do.MustInvoke[*service.PostService](i),
		Vote:    do.MustInvoke[*service.VoteService](i),
		Profile: do.MustInvoke[*service.ProfileService](i),
		Hashtag: do.MustInvoke[*service.HashtagService](i),
		Passkey: do.MustInvoke[*service.PasskeyService](i),
		Search:  do.MustInvoke[*service.SearchService](i),
	}

	sseHandler := sse.NewHandler(sseHandle.Manager, log.Logger)
	handler := api.NewServer(cfg, storeHandle.Store, services, sseHandler, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}

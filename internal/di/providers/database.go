package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/rebelpost/rebelpost-server/internal/config"
	"github.com/rebelpost/rebelpost-server/internal/ledger"
	"github.com/rebelpost/rebelpost-server/internal/logger"
	"github.com/rebelpost/rebelpost-server/internal/sse"
	"github.com/rebelpost/rebelpost-server/internal/store"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "db")
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	db.SetTxnRetries(cfg.Ledger.TxnRetries)

	log.Info("Database initialized",
		"path", dbPath,
		"txn_retries", cfg.Ledger.TxnRetries,
	)

	return &StoreHandle{Store: db}, nil
}

// ProvideLedger provides the reputation ledger.
func ProvideLedger(i do.Injector) (*ledger.Ledger, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return ledger.New(storeHandle.Store, log.Logger), nil
}

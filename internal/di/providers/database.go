package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/listenupapp/bookshelf-server/internal/config"
	"github.com/listenupapp/bookshelf-server/internal/logger"
	"github.com/listenupapp/bookshelf-server/internal/store"
	"github.com/listenupapp/bookshelf-server/internal/store/memory"
	"github.com/listenupapp/bookshelf-server/internal/store/sqlite"
)

// StoreHandle wraps the configured store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the backend named by the configuration.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	s, err := openStore(cfg.Store, log)
	if err != nil {
		return nil, err
	}

	log.Info("Store initialized",
		"backend", cfg.Store.Backend,
		"persistent", cfg.Store.DataPath != "" && cfg.Store.Backend != config.BackendMemory,
	)

	return &StoreHandle{Store: s}, nil
}

func openStore(cfg config.StoreConfig, log *logger.Logger) (store.Store, error) {
	if cfg.DataPath != "" && cfg.Backend != config.BackendMemory {
		if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	switch cfg.Backend {
	case config.BackendMemory:
		return memory.New(), nil

	case config.BackendBadger:
		path := ""
		if cfg.DataPath != "" {
			path = filepath.Join(cfg.DataPath, "db")
		}
		return store.New(path, log.Logger)

	case config.BackendSQLite:
		path := ""
		if cfg.DataPath != "" {
			path = filepath.Join(cfg.DataPath, "bookshelf.db")
		}
		return sqlite.Open(path, log.Logger)

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

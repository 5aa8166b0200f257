package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/bookshelf-server/internal/catalog"
	"github.com/listenupapp/bookshelf-server/internal/config"
	"github.com/listenupapp/bookshelf-server/internal/logger"
)

// CatalogHandle owns the catalog reloader and its file watcher.
type CatalogHandle struct {
	*catalog.Reloader
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	h.cancel()
	<-h.done
	return nil
}

// ProvideCatalog loads the catalog into the store and search index, then
// watches the catalog file for changes when enabled, using the watcher's
// default settle delay.
func ProvideCatalog(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)

	reloader := catalog.NewReloader(cfg.Catalog.Path, storeHandle.Store, searchHandle.SearchIndex, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	if err := reloader.Reload(ctx); err != nil {
		cancel()
		return nil, err
	}

	done := make(chan struct{})
	if cfg.Catalog.Watch && cfg.Catalog.Path != "" {
		go func() {
			defer close(done)
			if err := reloader.Watch(ctx, 0); err != nil {
				log.Error("Catalog watcher stopped", "path", cfg.Catalog.Path, "error", err)
			}
		}()
	} else {
		close(done)
	}

	return &CatalogHandle{Reloader: reloader, cancel: cancel, done: done}, nil
}

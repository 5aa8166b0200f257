package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/listenupapp/bookshelf-server/internal/domain"
	"github.com/listenupapp/bookshelf-server/internal/store"
	"github.com/listenupapp/bookshelf-server/internal/watcher"
)

// Indexer receives the full catalog after every load.
type Indexer interface {
	Rebuild(books []*domain.Book) error
}

// Reloader loads a catalog into the store and search index, and can follow
// the catalog file for changes.
type Reloader struct {
	path    string
	store   store.Store
	indexer Indexer
	logger  *slog.Logger
}

// NewReloader creates a Reloader. An empty path uses the built-in seed.
// indexer may be nil.
func NewReloader(path string, s store.Store, indexer Indexer, logger *slog.Logger) *Reloader {
	return &Reloader{path: path, store: s, indexer: indexer, logger: logger}
}

// Reload reads the catalog, applies it to the store and rebuilds the index
// from everything the store now holds.
func (r *Reloader) Reload(ctx context.Context) error {
	books, err := Load(r.path)
	if err != nil {
		return err
	}

	if err := Apply(ctx, r.store, books); err != nil {
		return err
	}

	if r.indexer != nil {
		all, err := r.store.ListBooks(ctx)
		if err != nil {
			return fmt.Errorf("list books: %w", err)
		}
		if err := r.indexer.Rebuild(all); err != nil {
			return fmt.Errorf("rebuild index: %w", err)
		}
	}

	source := r.path
	if source == "" {
		source = "seed"
	}
	r.logger.Info("catalog loaded", "source", source, "books", len(books))
	return nil
}

// Watch reloads the catalog whenever its file settles after a change,
// until ctx is cancelled. A failed reload is logged and the previous
// catalog stays in effect.
func (r *Reloader) Watch(ctx context.Context, settle time.Duration) error {
	if r.path == "" {
		return nil
	}

	w, err := watcher.New(r.logger, watcher.Options{SettleDelay: settle})
	if err != nil {
		return err
	}
	defer w.Stop() //nolint:errcheck // best-effort cleanup on shutdown

	if err := w.Watch(r.path); err != nil {
		return err
	}

	go w.Start(ctx) //nolint:errcheck // Start returns nil; exits on ctx

	r.logger.Info("watching catalog", "path", r.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events():
			if !ok {
				return nil
			}
			if event.Type == watcher.EventRemoved {
				r.logger.Warn("catalog file removed, keeping current catalog", "path", event.Path)
				continue
			}
			if err := r.Reload(ctx); err != nil {
				r.logger.Error("catalog reload failed", "path", event.Path, "error", err)
			}
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			r.logger.Warn("catalog watcher error", "error", err)
		}
	}
}

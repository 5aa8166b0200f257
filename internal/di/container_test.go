package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookshelf-server/internal/config"
	"github.com/listenupapp/bookshelf-server/internal/di/providers"
	"github.com/listenupapp/bookshelf-server/internal/service"
)

func testConfig(backend, dataPath string) *config.Config {
	return &config.Config{
		App:    config.AppConfig{Environment: "development"},
		Logger: config.LoggerConfig{Level: "error"},
		Server: config.ServerConfig{
			Port:         "0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			IdleTimeout:  time.Second,
		},
		Store: config.StoreConfig{Backend: backend, DataPath: dataPath},
		Auth: config.AuthConfig{
			AccessTokenDuration:    time.Hour,
			SessionCleanupInterval: time.Minute,
		},
	}
}

func TestBootstrap_Backends(t *testing.T) {
	for _, backend := range []string{config.BackendMemory, config.BackendBadger, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			injector := NewContainer()
			do.OverrideValue(injector, testConfig(backend, t.TempDir()))

			require.NoError(t, Bootstrap(injector))
			t.Cleanup(func() { _ = injector.Shutdown() })

			books := do.MustInvoke[*service.BookService](injector)
			list, err := books.ListBooks(context.Background())
			require.NoError(t, err)
			assert.Len(t, list, 10)

			index := do.MustInvoke[*providers.SearchIndexHandle](injector)
			count, err := index.DocumentCount()
			require.NoError(t, err)
			assert.Equal(t, uint64(10), count)
		})
	}
}

func TestBootstrap_PersistsAuthKey(t *testing.T) {
	dataPath := t.TempDir()

	injector := NewContainer()
	do.OverrideValue(injector, testConfig(config.BackendSQLite, dataPath))
	require.NoError(t, Bootstrap(injector))
	_ = injector.Shutdown()

	_, err := os.Stat(filepath.Join(dataPath, "auth.key"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dataPath, "bookshelf.db"))
	assert.NoError(t, err)
}

func TestBootstrap_BadCatalogFails(t *testing.T) {
	catalogPath := filepath.Join(t.TempDir(), "books.json")
	require.NoError(t, os.WriteFile(catalogPath, []byte("not json"), 0o600))

	cfg := testConfig(config.BackendMemory, "")
	cfg.Catalog.Path = catalogPath

	injector := NewContainer()
	do.OverrideValue(injector, cfg)
	t.Cleanup(func() { _ = injector.Shutdown() })

	assert.Error(t, Bootstrap(injector))
}

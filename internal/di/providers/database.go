package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/locallibrary/catalog-server/internal/config"
	"github.com/locallibrary/catalog-server/internal/logger"
	"github.com/locallibrary/catalog-server/internal/service"
	"github.com/locallibrary/catalog-server/internal/store/kv"
	"github.com/locallibrary/catalog-server/internal/store/sqlite"
)

// StoreHandle wraps the catalog database with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite catalog store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	path := cfg.Data.SQLitePath()
	db, err := sqlite.Open(path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", path)

	return &StoreHandle{Store: db}, nil
}

// KVHandle wraps the badger store holding sessions and visit counters.
type KVHandle struct {
	*kv.Store
}

// Shutdown implements do.Shutdownable.
func (h *KVHandle) Shutdown() error {
	return h.Close()
}

// ProvideKV provides the badger key-value store.
func ProvideKV(i do.Injector) (*KVHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	path := cfg.Data.KVPath()
	s, err := kv.Open(path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Key-value store initialized", "path", path)

	return &KVHandle{Store: s}, nil
}

// Bootstrap reports what was seeded at startup.
type Bootstrap struct {
	GenresCreated int
}

// ProvideBootstrap seeds the default genres on an empty catalog.
func ProvideBootstrap(i do.Injector) (*Bootstrap, error) {
	log := do.MustInvoke[*logger.Logger](i)
	genres := do.MustInvoke[*service.GenreService](i)

	created, err := genres.EnsureDefaults(context.Background())
	if err != nil {
		return nil, err
	}
	if created > 0 {
		log.Info("Seeded default genres", "count", created)
	}

	return &Bootstrap{GenresCreated: created}, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}

// Package stores owns the mapping from tenants to model stores. Each tenant
// gets its own store instance, so documents never leak between tenants.
package stores

import (
	"context"
	"fmt"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"

	"github.com/sbomkit/model-store/pkg/storage"
	"github.com/sbomkit/model-store/pkg/storage/memory"
	"github.com/sbomkit/model-store/pkg/storage/postgres"
)

type StoreManager interface {
	Store(ctx context.Context, tenant string) (storage.Store, error)
	Tenants() []string
}

type multiTenantStores struct {
	tenants map[string]storage.Store
	order   []string
}

// New sets up one store per configured tenant. A configuration without any
// tenants gets a single in-memory default tenant, so a bare server is usable
// out of the box.
func New(ctx context.Context, cfg *Config) (StoreManager, error) {
	log := logging.GetFromContext(ctx)

	app := &multiTenantStores{
		tenants: make(map[string]storage.Store),
	}

	for _, tenant := range cfg.Tenants {
		store, err := newBackend(ctx, tenant.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to set up storage for tenant %s: %w", tenant.ID, err)
		}

		app.tenants[tenant.ID] = store
		app.order = append(app.order, tenant.ID)

		log.Info("configured tenant", "tenant", tenant.ID, "backend", backendName(tenant.Storage))
	}

	if len(app.tenants) == 0 {
		app.tenants["default"] = memory.NewStore()
		app.order = append(app.order, "default")

		log.Info("no tenants configured, falling back to a default in-memory tenant")
	}

	return app, nil
}

func (app *multiTenantStores) Store(ctx context.Context, tenant string) (storage.Store, error) {
	store, ok := app.tenants[tenant]
	if !ok {
		return nil, storage.NewUnknownTenantError(tenant)
	}

	return store, nil
}

func (app *multiTenantStores) Tenants() []string {
	tenants := make([]string, len(app.order))
	copy(tenants, app.order)
	return tenants
}

func newBackend(ctx context.Context, cfg StorageConfig) (storage.Store, error) {
	switch backendName(cfg) {
	case "memory":
		return memory.NewStore(), nil
	case "postgres":
		pool, err := postgres.Connect(ctx, postgres.LoadConfiguration(ctx).WithDatabaseName(cfg.DBName))
		if err != nil {
			return nil, err
		}

		err = postgres.Initialize(ctx, pool)
		if err != nil {
			return nil, err
		}

		return postgres.NewStore(pool), nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

func backendName(cfg StorageConfig) string {
	if cfg.Backend == "" {
		return "memory"
	}

	return cfg.Backend
}

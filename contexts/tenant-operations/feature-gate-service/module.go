package featuregate

import (
	"log/slog"

	httpadapter "backoffice/contexts/tenant-operations/feature-gate-service/adapters/http"
	"backoffice/contexts/tenant-operations/feature-gate-service/adapters/memory"
	"backoffice/contexts/tenant-operations/feature-gate-service/application"
	"backoffice/contexts/tenant-operations/feature-gate-service/ports"
)

// Module is the feature-gate-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

// Dependencies captures all runtime ports required by NewModule.
type Dependencies struct {
	Repository  ports.Repository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:   deps.Repository,
		Clock:  deps.Clock,
		IDGen:  deps.IDGenerator,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
		Service: service,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory adapters.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:  store,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}

package finance

import (
	"log/slog"

	httpadapter "backoffice/contexts/finance-core/financial-request-engine/adapters/http"
	"backoffice/contexts/finance-core/financial-request-engine/adapters/memory"
	"backoffice/contexts/finance-core/financial-request-engine/adapters/report"
	"backoffice/contexts/finance-core/financial-request-engine/application"
	"backoffice/contexts/finance-core/financial-request-engine/ports"
)

// Module is the financial-request-engine composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

// Dependencies captures all runtime ports required by NewModule. Authorizer
// is mandatory in production wiring; a nil authorizer skips access checks
// and exists for module-internal tests only.
type Dependencies struct {
	Repository  ports.Repository
	Outbox      ports.OutboxWriter
	Authorizer  ports.Authorizer
	Exporter    ports.LedgerExporter
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	exporter := deps.Exporter
	if exporter == nil {
		exporter = report.ExcelExporter{}
	}
	service := application.Service{
		Repo:     deps.Repository,
		Outbox:   deps.Outbox,
		Authz:    deps.Authorizer,
		Exporter: exporter,
		Clock:    deps.Clock,
		IDGen:    deps.IDGenerator,
		Logger:   deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
		Service: service,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory adapters.
func NewInMemoryModule(authorizer ports.Authorizer, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:  store,
		Outbox:      store,
		Authorizer:  authorizer,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}

package authorization

import (
	"log/slog"
	"time"

	httpadapter "backoffice/contexts/identity-access/authorization-service/adapters/http"
	"backoffice/contexts/identity-access/authorization-service/adapters/memory"
	"backoffice/contexts/identity-access/authorization-service/application/queries"
	"backoffice/contexts/identity-access/authorization-service/ports"
)

// Module is the authorization-service composition root exposed to runtime wiring.
type Module struct {
	Handler              httpadapter.Handler
	CanPerform           queries.CanPerform
	EffectivePermissions queries.EffectivePermissions
	Store                *memory.Store
}

// Dependencies captures all runtime ports required by NewModule. Cache is
// optional; without it every resolution hits the directories.
type Dependencies struct {
	Identity   ports.IdentityDirectory
	Membership ports.MembershipDirectory
	Cache      ports.DecisionCache
	CacheTTL   time.Duration
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	canPerform := queries.CanPerform{
		Identity:   deps.Identity,
		Membership: deps.Membership,
		Cache:      deps.Cache,
		CacheTTL:   deps.CacheTTL,
		Logger:     deps.Logger,
	}
	effective := queries.EffectivePermissions{
		Identity:   deps.Identity,
		Membership: deps.Membership,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			CanPerform:           canPerform,
			EffectivePermissions: effective,
			Logger:               deps.Logger,
		},
		CanPerform:           canPerform,
		EffectivePermissions: effective,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory adapters.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Identity:   store,
		Membership: store,
		Cache:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}

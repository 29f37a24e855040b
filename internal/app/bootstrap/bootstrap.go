package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	finance "backoffice/contexts/finance-core/financial-request-engine"
	financepg "backoffice/contexts/finance-core/financial-request-engine/adapters/postgres"
	authorization "backoffice/contexts/identity-access/authorization-service"
	authmemory "backoffice/contexts/identity-access/authorization-service/adapters/memory"
	authredis "backoffice/contexts/identity-access/authorization-service/adapters/redis"
	authzports "backoffice/contexts/identity-access/authorization-service/ports"
	identity "backoffice/contexts/identity-access/identity-service"
	identitypg "backoffice/contexts/identity-access/identity-service/adapters/postgres"
	featuregate "backoffice/contexts/tenant-operations/feature-gate-service"
	featurepg "backoffice/contexts/tenant-operations/feature-gate-service/adapters/postgres"
	membership "backoffice/contexts/tenant-operations/membership-service"
	membershippg "backoffice/contexts/tenant-operations/membership-service/adapters/postgres"
	membershipworkers "backoffice/contexts/tenant-operations/membership-service/application/workers"
	tenant "backoffice/contexts/tenant-operations/tenant-service"
	tenantpg "backoffice/contexts/tenant-operations/tenant-service/adapters/postgres"
	"backoffice/internal/platform/cache"
	"backoffice/internal/platform/config"
	"backoffice/internal/platform/db"
	"backoffice/internal/platform/httpserver"
	"backoffice/internal/platform/messaging"
	"backoffice/internal/shared/outbox"

	"github.com/robfig/cron/v3"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	redis    *cache.Redis
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	bus          *messaging.Bus
	webhook      *messaging.WebhookDispatcher
	relays       []outbox.Relay
	reminder     *membershipworkers.InvitationReminder
	reminderCron string
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	identityRepo := identitypg.NewRepository(pg.DB, logger)
	tenantRepo := tenantpg.NewRepository(pg.DB, logger)
	membershipRepo := membershippg.NewRepository(pg.DB, logger)
	featureRepo := featurepg.NewRepository(pg.DB, logger)
	financeRepo := financepg.NewRepository(pg.DB, logger)

	for _, migrate := range []func() error{
		identityRepo.AutoMigrate,
		tenantRepo.AutoMigrate,
		membershipRepo.AutoMigrate,
		featureRepo.AutoMigrate,
		financeRepo.AutoMigrate,
	} {
		if err := migrate(); err != nil {
			_ = pg.Close()
			return nil, err
		}
	}

	identityModule := identity.NewModule(identity.Dependencies{
		Repository:  identityRepo,
		Clock:       identitypg.SystemClock{},
		IDGenerator: identitypg.UUIDGenerator{},
		Logger:      logger,
	})
	tenantModule := tenant.NewModule(tenant.Dependencies{
		Repository:  tenantRepo,
		Clock:       tenantpg.SystemClock{},
		IDGenerator: tenantpg.UUIDGenerator{},
		Logger:      logger,
	})
	membershipModule := membership.NewModule(membership.Dependencies{
		Repository:  membershipRepo,
		Outbox:      membershipRepo,
		Clock:       membershippg.SystemClock{},
		IDGenerator: membershippg.UUIDGenerator{},
		Logger:      logger,
	})
	featureModule := featuregate.NewModule(featuregate.Dependencies{
		Repository:  featureRepo,
		Clock:       featurepg.SystemClock{},
		IDGenerator: featurepg.UUIDGenerator{},
		Logger:      logger,
	})

	var redisConn *cache.Redis
	var decisionCache authzports.DecisionCache
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		redisConn, err = cache.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		decisionCache = authredis.NewCache(redisConn.Client)
	} else {
		decisionCache = authmemory.NewStore()
		logger.Warn("redis not configured, decision cache is process-local",
			"event", "bootstrap_decision_cache_fallback",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}

	authModule := authorization.NewModule(authorization.Dependencies{
		Identity:   identityDirectory{service: identityModule.Service},
		Membership: membershipDirectory{service: membershipModule.Service},
		Cache:      decisionCache,
		CacheTTL:   cfg.DecisionCacheTTL,
		Logger:     logger,
	})

	financeModule := finance.NewModule(finance.Dependencies{
		Repository:  financeRepo,
		Outbox:      financeRepo,
		Authorizer:  resolverAuthorizer{resolver: authModule.CanPerform},
		Clock:       financepg.SystemClock{},
		IDGenerator: financepg.UUIDGenerator{},
		Logger:      logger,
	})

	server := httpserver.New(httpserver.Modules{
		Identity:      identityModule,
		Tenants:       tenantModule,
		Memberships:   membershipModule,
		Features:      featureModule,
		Authorization: authModule,
		Finance:       financeModule,
	}, logger, normalizeAddr(cfg.HTTPPort), cfg.JWTSecret)

	return &APIApp{
		server:   server,
		postgres: pg,
		redis:    redisConn,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	membershipRepo := membershippg.NewRepository(pg.DB, logger)
	financeRepo := financepg.NewRepository(pg.DB, logger)

	bus := messaging.NewBus(logger)
	app := &WorkerApp{
		postgres: pg,
		bus:      bus,
		relays: []outbox.Relay{
			{
				Name:      "membership-outbox",
				Topic:     "tenant.memberships",
				Source:    membershipRepo,
				Publisher: bus,
				BatchSize: 100,
				Logger:    logger,
			},
			{
				Name:      "finance-outbox",
				Topic:     "finance.requests",
				Source:    financeRepo,
				Publisher: bus,
				BatchSize: 100,
				Logger:    logger,
			},
		},
		reminderCron: cfg.InvitationReminderCron,
		pollInterval: cfg.OutboxPollInterval,
		logger:       logger,
	}

	if cfg.EnableInvitationReminder {
		app.reminder = &membershipworkers.InvitationReminder{
			Repo:        membershipRepo,
			Outbox:      membershipRepo,
			Clock:       membershippg.SystemClock{},
			IDGen:       membershippg.UUIDGenerator{},
			RemindAfter: cfg.InvitationRemindAfter,
			Logger:      logger,
		}
	}
	if cfg.EnableWebhookDispatch && strings.TrimSpace(cfg.WebhookSinkURL) != "" {
		app.webhook = messaging.NewWebhookDispatcher(cfg.WebhookSinkURL, logger)
	}
	return app, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if w.webhook != nil {
		for _, relay := range w.relays {
			if err := w.bus.Subscribe(ctx, relay.Topic, "backoffice-webhook-cg", w.webhook.Dispatch); err != nil {
				return err
			}
		}
	}

	scheduler := cron.New()
	if w.reminder != nil {
		if _, err := scheduler.AddFunc(w.reminderCron, func() {
			if err := w.reminder.RunOnce(ctx); err != nil {
				w.logger.Error("invitation reminder run failed",
					"event", "bootstrap_reminder_failed",
					"module", "internal/app/bootstrap",
					"layer", "worker",
					"error", err.Error(),
				)
			}
		}); err != nil {
			return err
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"relays", len(w.relays),
	)

	for {
		for _, relay := range w.relays {
			if err := relay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}

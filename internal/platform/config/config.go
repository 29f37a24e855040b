package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName   string
	HTTPPort      string
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	JWTSecret     string

	WebhookSinkURL   string
	DecisionCacheTTL time.Duration

	OutboxPollInterval       time.Duration
	InvitationReminderCron   string
	InvitationRemindAfter    time.Duration
	EnableWebhookDispatch    bool
	EnableInvitationReminder bool
}

func Load() (Config, error) {
	// Local development keeps secrets in .env; production injects real env.
	_ = godotenv.Load()

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "backoffice"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	redisDB := 0
	if raw := strings.TrimSpace(os.Getenv("REDIS_DB")); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			redisDB = value
		}
	}

	reminderCron := strings.TrimSpace(os.Getenv("INVITATION_REMINDER_CRON"))
	if reminderCron == "" {
		reminderCron = "0 * * * *"
	}

	return Config{
		ServiceName:   service,
		HTTPPort:      port,
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		JWTSecret:     os.Getenv("JWT_SECRET"),

		WebhookSinkURL:   os.Getenv("WEBHOOK_SINK_URL"),
		DecisionCacheTTL: envDuration("DECISION_CACHE_TTL", 30*time.Second),

		OutboxPollInterval:       envDuration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		InvitationReminderCron:   reminderCron,
		InvitationRemindAfter:    envDuration("INVITATION_REMIND_AFTER", 72*time.Hour),
		EnableWebhookDispatch:    envBool("ENABLE_WEBHOOK_DISPATCH", true),
		EnableInvitationReminder: envBool("ENABLE_INVITATION_REMINDER", true),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

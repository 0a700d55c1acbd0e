package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPAddr         = ":8080"
	defaultDatabaseURL      = "cutline.db"
	defaultJWTTTL           = "24h"
	defaultTurnReadyWindow  = "3m"
	defaultArrivalWindow    = "10m"
	defaultSweepInterval    = "1m"
	defaultCleanupSchedule  = "@daily"
	defaultRetentionDays    = "90"
	defaultPushTimeout      = "10s"
	defaultJWTSecret        = "change-me-jwt-secret"
	defaultInternalToken    = ""
	defaultCleanupEnabled   = "true"
	defaultSchedulerEnabled = "true"
)

// Config is the runtime configuration, read from the environment once
// at startup. Cmd mains load .env first via godotenv.
type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	// InternalToken guards the store-trigger endpoints. Empty means
	// the endpoints refuse all calls (fail closed).
	InternalToken      string
	InternalAllowedIPs []string

	PushEndpoint  string
	PushServerKey string
	PushTimeout   time.Duration

	TurnReadyWindow  time.Duration // turn_ready confirmation deadline
	ArrivalWindow    time.Duration // arrived-but-not-served deadline
	SweepInterval    time.Duration
	SchedulerEnabled bool

	CleanupEnabled  bool
	CleanupSchedule string
	RetentionDays   int
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = getEnv("HTTP_ADDR", defaultHTTPAddr)
	cfg.DatabaseURL = getEnv("DATABASE_URL", defaultDatabaseURL)
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.InternalToken = strings.TrimSpace(getEnv("INTERNAL_TOKEN", defaultInternalToken))

	if ips := strings.TrimSpace(os.Getenv("INTERNAL_ALLOWED_IPS")); ips != "" {
		for _, ip := range strings.Split(ips, ",") {
			if ip = strings.TrimSpace(ip); ip != "" {
				cfg.InternalAllowedIPs = append(cfg.InternalAllowedIPs, ip)
			}
		}
	}

	cfg.PushEndpoint = strings.TrimSpace(os.Getenv("PUSH_ENDPOINT"))
	cfg.PushServerKey = strings.TrimSpace(os.Getenv("PUSH_SERVER_KEY"))

	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL); err != nil {
		return nil, err
	}
	if cfg.PushTimeout, err = parseDurationEnv("PUSH_TIMEOUT", defaultPushTimeout); err != nil {
		return nil, err
	}
	if cfg.TurnReadyWindow, err = parseDurationEnv("TURN_READY_WINDOW", defaultTurnReadyWindow); err != nil {
		return nil, err
	}
	if cfg.ArrivalWindow, err = parseDurationEnv("ARRIVAL_WINDOW", defaultArrivalWindow); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = parseDurationEnv("SWEEP_INTERVAL", defaultSweepInterval); err != nil {
		return nil, err
	}

	if cfg.SchedulerEnabled, err = parseBoolEnv("SCHEDULER_ENABLED", defaultSchedulerEnabled); err != nil {
		return nil, err
	}
	if cfg.CleanupEnabled, err = parseBoolEnv("CLEANUP_ENABLED", defaultCleanupEnabled); err != nil {
		return nil, err
	}
	cfg.CleanupSchedule = getEnv("CLEANUP_SCHEDULE", defaultCleanupSchedule)

	if cfg.RetentionDays, err = parseIntEnv("NOTIFICATION_RETENTION_DAYS", defaultRetentionDays); err != nil {
		return nil, err
	}

	if cfg.AppEnv == "prod" && cfg.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set in prod")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key, fallback string) (time.Duration, error) {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, raw, err)
	}
	return d, nil
}

func parseIntEnv(key, fallback string) (int, error) {
	raw := getEnv(key, fallback)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, raw, err)
	}
	return n, nil
}

func parseBoolEnv(key, fallback string) (bool, error) {
	raw := strings.ToLower(getEnv(key, fallback))
	switch raw {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("%s: invalid boolean %q", key, raw)
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName        = "TakaPay"
	defaultEnv            = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour

	defaultSendFee           = 5
	defaultSendFeeThreshold  = 100
	defaultCashOutFeePercent = 1.5
	defaultAgentBalance      = 10_000
	defaultCustomerBalance   = 0
	defaultApprovalBonus     = 40
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	Env            string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration

	// Tariff and policy knobs for the ledger core.
	SendFee                int64
	SendFeeThreshold       int64
	CashOutFeePercent      float64
	AgentInitialBalance    int64
	CustomerInitialBalance int64
	ApprovalBonus          int64
	TransferMaxAttempts    int
}

// Load reads configuration values from the environment and populates a Config
// instance. Outside development both DATABASE_URL and REDIS_URL are required;
// in development they may be left unset to run fully in memory.
func Load() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		Env:            strings.ToLower(getEnv("APP_ENV", defaultEnv)),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		ShutdownPeriod: defaultShutdownDelay,
		IdempotencyTTL: defaultIdempotencyTTL,
	}

	var err error
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}

	if cfg.SendFee, err = int64Env("SEND_FEE", defaultSendFee); err != nil {
		return Config{}, err
	}
	if cfg.SendFeeThreshold, err = int64Env("SEND_FEE_THRESHOLD", defaultSendFeeThreshold); err != nil {
		return Config{}, err
	}
	if cfg.CashOutFeePercent, err = floatEnv("CASH_OUT_FEE_PERCENT", defaultCashOutFeePercent); err != nil {
		return Config{}, err
	}
	if cfg.AgentInitialBalance, err = int64Env("AGENT_INITIAL_BALANCE", defaultAgentBalance); err != nil {
		return Config{}, err
	}
	if cfg.CustomerInitialBalance, err = int64Env("CUSTOMER_INITIAL_BALANCE", defaultCustomerBalance); err != nil {
		return Config{}, err
	}
	if cfg.ApprovalBonus, err = int64Env("APPROVAL_BONUS", defaultApprovalBonus); err != nil {
		return Config{}, err
	}
	var maxAttempts int64
	if maxAttempts, err = int64Env("TRANSFER_MAX_ATTEMPTS", 0); err != nil {
		return Config{}, err
	}
	cfg.TransferMaxAttempts = int(maxAttempts)

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.Env)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.Env)
		}
	}

	return cfg, nil
}

// IsDev reports whether the app runs in a development environment.
func (c Config) IsDev() bool {
	switch c.Env {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// durationEnv reads KEY_SECONDS as an integer, then KEY as a Go duration.
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(key + "_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s_SECONDS: %w", key, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return d, nil
	}
	return fallback, nil
}

func int64Env(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

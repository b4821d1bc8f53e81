package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Config holds the application configuration.
type Config struct {
	Environment string
	DatabaseURL string
	AuditSink   string
	RedisAddr   string

	NodeID          int64
	Timezone        string
	LimitAggregate  string
	LockBackend     string
	PendingExpiry   time.Duration
	ExpirySweepTick time.Duration
	ReconcileTick   time.Duration

	APIAddr     string
	GRPCAddr    string
	MetricsAddr string

	MaxBodyBytes        int64
	RateLimitCapacity   int
	RateLimitRefillRate float64
	AdminAllowCIDRs     string

	TLSCertFile string
	TLSKeyFile  string
	TLSCAFile   string
}

const (
	LockMemory = "memory"
	LockRedis  = "redis"
)

// Load reads configuration from environment variables. Development and test
// environments accept a plain SQLite path for DATABASE_URL.
func Load() (*Config, error) {
	var bad []string
	cfg := &Config{
		Environment:    os.Getenv("APP_ENV"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		AuditSink:      os.Getenv("AUDIT_SINK"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		Timezone:       getenv("LEDGER_TIMEZONE", "Asia/Kolkata"),
		LimitAggregate: getenv("LEDGER_LIMIT_AGGREGATE", "debit-side"),
		LockBackend:    getenv("LOCK_BACKEND", LockMemory),

		APIAddr:     getenv("API_ADDR", ":8080"),
		GRPCAddr:    getenv("GRPC_ADDR", ":50051"),
		MetricsAddr: getenv("METRICS_ADDR", ":9090"),

		AdminAllowCIDRs: os.Getenv("ADMIN_ALLOW_CIDRS"),
		TLSCertFile:     os.Getenv("TLS_CERT_FILE"),
		TLSKeyFile:      os.Getenv("TLS_KEY_FILE"),
		TLSCAFile:       os.Getenv("TLS_CA_FILE"),
	}

	var err error
	if cfg.NodeID, err = getenvInt("LEDGER_NODE_ID", 1); err != nil {
		bad = append(bad, "LEDGER_NODE_ID")
	}
	if cfg.MaxBodyBytes, err = getenvInt("API_MAX_BODY_BYTES", 1<<20); err != nil {
		bad = append(bad, "API_MAX_BODY_BYTES")
	}
	capacity, err := getenvInt("API_RATE_LIMIT_CAPACITY", 0)
	if err != nil {
		bad = append(bad, "API_RATE_LIMIT_CAPACITY")
	}
	cfg.RateLimitCapacity = int(capacity)
	if cfg.RateLimitRefillRate, err = getenvFloat("API_RATE_LIMIT_REFILL_PER_SEC", 10); err != nil {
		bad = append(bad, "API_RATE_LIMIT_REFILL_PER_SEC")
	}
	if cfg.PendingExpiry, err = getenvDuration("PENDING_EXPIRY", 24*time.Hour); err != nil {
		bad = append(bad, "PENDING_EXPIRY")
	}
	if cfg.ExpirySweepTick, err = getenvDuration("PENDING_SWEEP_INTERVAL", 5*time.Minute); err != nil {
		bad = append(bad, "PENDING_SWEEP_INTERVAL")
	}
	// zero disables the periodic reconciliation run
	if cfg.ReconcileTick, err = getenvDuration("RECONCILE_INTERVAL", time.Hour); err != nil || cfg.ReconcileTick < 0 {
		bad = append(bad, "RECONCILE_INTERVAL")
	}
	if len(bad) > 0 {
		return nil, errors.New("malformed environment variables: " + strings.Join(bad, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var missing []string

	if c.Environment == "" {
		missing = append(missing, "APP_ENV")
	}
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.LockBackend == LockRedis && c.RedisAddr == "" {
		missing = append(missing, "REDIS_ADDR")
	}
	if c.RateLimitCapacity > 0 && c.RedisAddr == "" {
		missing = append(missing, "REDIS_ADDR")
	}

	if len(missing) > 0 {
		return errors.New("missing required environment variables: " + strings.Join(dedupe(missing), ", "))
	}

	if c.Production() {
		if c.AuditSink == "" {
			missing = append(missing, "AUDIT_SINK")
		}
		if c.LockBackend != LockRedis {
			return fmt.Errorf("LOCK_BACKEND must be %q in %s", LockRedis, c.Environment)
		}
		if len(missing) > 0 {
			return errors.New("missing required environment variables for " + c.Environment + ": " + strings.Join(missing, ", "))
		}
	}

	switch c.LockBackend {
	case LockMemory, LockRedis:
	default:
		return fmt.Errorf("LOCK_BACKEND must be %q or %q", LockMemory, LockRedis)
	}
	if c.NodeID < 0 || c.NodeID > 1023 {
		return errors.New("LEDGER_NODE_ID must be between 0 and 1023")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("LEDGER_TIMEZONE: %w", err)
	}
	switch c.LimitAggregate {
	case "debit-side", "parity":
	default:
		return errors.New("LEDGER_LIMIT_AGGREGATE must be debit-side or parity")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	if c.PendingExpiry <= 0 {
		return errors.New("PENDING_EXPIRY must be positive")
	}
	return nil
}

// Production reports whether the environment demands shared infrastructure.
func (c *Config) Production() bool {
	return c.Environment == "production" || c.Environment == "staging"
}

// Location resolves the time zone that bounds limit windows.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}

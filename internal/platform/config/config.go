package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	LogLevel          string
	StoreDriver       string
	RunMigrations     bool
	MigrationsPath    string
	DBMaxConns        int32
	DBAcquireTimeout  time.Duration
	DBMaxTxRetries    int
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	ShutdownTimeout   time.Duration

	// Idempotency cache for money movement requests. Empty RedisURL disables it.
	RedisURL       string
	IdempotencyTTL time.Duration

	CORSAllowedOrigins []string
	LoginRateLimit     string

	Bank BankConfig
}

// BankConfig carries the banking rules applied by the ledger and account opening.
type BankConfig struct {
	CountryCode              string
	BankCode                 string
	BranchCode               string
	DefaultCurrency          string
	DefaultOverdraftLimit    decimal.Decimal
	MaxTransactionAmount     decimal.Decimal
	EnforcePaymentCategories bool
}

// DefaultBankConfig returns the settings used when nothing is configured.
func DefaultBankConfig() BankConfig {
	return BankConfig{
		CountryCode:              "FR",
		BankCode:                 "12345",
		BranchCode:               "90000",
		DefaultCurrency:          "EUR",
		DefaultOverdraftLimit:    decimal.RequireFromString("500.00"),
		MaxTransactionAmount:     decimal.RequireFromString("1000000.00"),
		EnforcePaymentCategories: true,
	}
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	viper.SetDefault("RUN_MIGRATIONS", true)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_ACQUIRE_TIMEOUT", "5s")
	viper.SetDefault("DB_MAX_TX_RETRIES", 2)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "banking-backoffice")
	viper.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("IDEMPOTENCY_TTL", "24h")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	viper.SetDefault("BANK_COUNTRY_CODE", "FR")
	viper.SetDefault("BANK_CODE", "12345")
	viper.SetDefault("BRANCH_CODE", "90000")
	viper.SetDefault("DEFAULT_CURRENCY", "EUR")
	viper.SetDefault("DEFAULT_OVERDRAFT_LIMIT", "500.00")
	viper.SetDefault("MAX_TRANSACTION_AMOUNT", "1000000.00")
	viper.SetDefault("ENFORCE_PAYMENT_CATEGORIES", true)

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:    viper.GetString("PGSQL_URL"),
		Port:           viper.GetString("PORT"),
		IsProduction:   viper.GetBool("IS_PRODUCTION"),
		LogLevel:       viper.GetString("LOG_LEVEL"),
		StoreDriver:    strings.ToLower(viper.GetString("STORE_DRIVER")),
		RunMigrations:  viper.GetBool("RUN_MIGRATIONS"),
		MigrationsPath: viper.GetString("MIGRATIONS_PATH"),
		DBMaxConns:     viper.GetInt32("DB_MAX_CONNS"),
		DBMaxTxRetries: viper.GetInt("DB_MAX_TX_RETRIES"),
		JWTSecret:      viper.GetString("JWT_SECRET"),
		JWTIssuer:      viper.GetString("JWT_ISSUER"),
		RedisURL:       viper.GetString("REDIS_URL"),
		LoginRateLimit: viper.GetString("LOGIN_RATE_LIMIT"),
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when STORE_DRIVER=%s", StoreDriverPostgres)
		}
	case StoreDriverMemory:
		log.Println("Warning: STORE_DRIVER=memory. Data is lost on restart.")
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	if cfg.DBMaxConns <= 0 {
		cfg.DBMaxConns = 10
		log.Printf("Warning: Invalid DB_MAX_CONNS. Defaulting to %d.\n", cfg.DBMaxConns)
	}
	if cfg.DBMaxTxRetries < 0 {
		cfg.DBMaxTxRetries = 0
	}

	cfg.DBAcquireTimeout = durationOrDefault("DB_ACQUIRE_TIMEOUT", 5*time.Second)
	cfg.JWTExpiryDuration = durationOrDefault("JWT_EXPIRY_DURATION", time.Hour)
	cfg.ShutdownTimeout = durationOrDefault("SHUTDOWN_TIMEOUT", 15*time.Second)
	cfg.IdempotencyTTL = durationOrDefault("IDEMPOTENCY_TTL", 24*time.Hour)

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	bank := DefaultBankConfig()
	bank.CountryCode = strings.ToUpper(viper.GetString("BANK_COUNTRY_CODE"))
	bank.BankCode = viper.GetString("BANK_CODE")
	bank.BranchCode = viper.GetString("BRANCH_CODE")
	bank.DefaultCurrency = strings.ToUpper(viper.GetString("DEFAULT_CURRENCY"))
	bank.EnforcePaymentCategories = viper.GetBool("ENFORCE_PAYMENT_CATEGORIES")
	bank.DefaultOverdraftLimit = decimalOrDefault("DEFAULT_OVERDRAFT_LIMIT", bank.DefaultOverdraftLimit)
	bank.MaxTransactionAmount = decimalOrDefault("MAX_TRANSACTION_AMOUNT", bank.MaxTransactionAmount)
	if bank.DefaultOverdraftLimit.IsNegative() {
		return nil, fmt.Errorf("DEFAULT_OVERDRAFT_LIMIT must not be negative")
	}
	cfg.Bank = bank

	return cfg, nil
}

func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def)
		}
		return def
	}
	return d
}

func decimalOrDefault(key string, def decimal.Decimal) decimal.Decimal {
	raw := viper.GetString(key)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.StringFixed(2))
		}
		return def
	}
	return d
}

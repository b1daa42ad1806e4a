package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	JWTSecret string
	JWTIssuer string
	// external identities promoted to admin at startup
	AdminIdentities []string

	StartingCredits         int64
	LowCreditThreshold      int64
	HospitalCodeMaxAttempts int

	CheckoutBaseURL      string
	PaymentWebhookSecret string

	AutoQuoteWorkers     int
	AutoQuoteMaxAttempts int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppPort:  getenv("APP_PORT", "8080"),
		AppEnv:   getenv("APP_ENV", "development"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "medquote"),
		MySQLUser: getenv("MYSQL_USER", "medquote"),
		MySQLPass: getenv("MYSQL_PASS", "medquote"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:   getint("REDIS_DB", 0),

		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTIssuer:       os.Getenv("JWT_ISSUER"),
		AdminIdentities: splitList(os.Getenv("ADMIN_IDENTITIES")),

		StartingCredits:         int64(getint("STARTING_CREDITS", 5)),
		LowCreditThreshold:      int64(getint("LOW_CREDIT_THRESHOLD", 1)),
		HospitalCodeMaxAttempts: getint("HOSPITAL_CODE_MAX_ATTEMPTS", 10),

		CheckoutBaseURL:      getenv("CHECKOUT_BASE_URL", "http://localhost:8080/checkout"),
		PaymentWebhookSecret: os.Getenv("PAYMENT_WEBHOOK_SECRET"),

		AutoQuoteWorkers:     getint("AUTOQUOTE_WORKERS", 2),
		AutoQuoteMaxAttempts: getint("AUTOQUOTE_MAX_ATTEMPTS", 3),
	}
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.JWTSecret == "" {
		return errors.New("missing JWT_SECRET")
	}
	if c.StartingCredits < 0 || c.LowCreditThreshold < 0 {
		return errors.New("STARTING_CREDITS and LOW_CREDIT_THRESHOLD must be >= 0")
	}
	if c.HospitalCodeMaxAttempts < 1 || c.AutoQuoteMaxAttempts < 1 {
		return errors.New("HOSPITAL_CODE_MAX_ATTEMPTS and AUTOQUOTE_MAX_ATTEMPTS must be >= 1")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

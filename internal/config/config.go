package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	AppEnv   string
	HTTPAddr string
	LogLevel string

	DatabaseURL string
	DBMaxConns  int

	JWTIssuer       string
	JWTSecret       string
	SessionTTLHours int
	OTPTTLMin       int

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	UploadDir   string
	UploadMaxMB int

	CORSOrigins []string

	RateLimitPerMin        int
	AuthRateLimitPerMin    int
	OrderRateLimitPerHour  int
	UploadRateLimitPerHour int
}

func Load() Config {
	return Config{
		AppEnv:   get("APP_ENV", "dev"),
		HTTPAddr: get("HTTP_ADDR", ":8080"),
		LogLevel: get("LOG_LEVEL", "info"),

		DatabaseURL: get("DATABASE_URL", ""),
		DBMaxConns:  getInt("DB_MAX_CONNS", 10),

		JWTIssuer:       get("JWT_ISSUER", "garment-platform"),
		JWTSecret:       get("JWT_SECRET", ""),
		SessionTTLHours: getInt("SESSION_TTL_HOURS", 24),
		OTPTTLMin:       getInt("OTP_TTL_MIN", 10),

		SMTPHost: get("SMTP_HOST", ""),
		SMTPPort: getInt("SMTP_PORT", 587),
		SMTPUser: get("SMTP_USER", ""),
		SMTPPass: get("SMTP_PASS", ""),
		SMTPFrom: get("SMTP_FROM", ""),

		UploadDir:   get("UPLOAD_DIR", "./uploads"),
		UploadMaxMB: getInt("UPLOAD_MAX_MB", 10),

		CORSOrigins: getList("CORS_ORIGINS", []string{"http://localhost:3000"}),

		RateLimitPerMin:        getInt("RATE_LIMIT_PER_MIN", 100),
		AuthRateLimitPerMin:    getInt("AUTH_RATE_LIMIT_PER_MIN", 10),
		OrderRateLimitPerHour:  getInt("ORDER_RATE_LIMIT_PER_HOUR", 50),
		UploadRateLimitPerHour: getInt("UPLOAD_RATE_LIMIT_PER_HOUR", 20),
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.SessionTTLHours <= 0 {
		errs = append(errs, errors.New("SESSION_TTL_HOURS must be positive"))
	}
	return errors.Join(errs...)
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getList(k string, def []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"devcamper/internal/utils"
)

const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"

	MailSMTP    = "smtp"
	MailMailgun = "mailgun"

	// DefaultMaxUpload is the photo size limit in bytes when none is configured.
	DefaultMaxUpload = 1_000_000

	defaultDSN = "root:@tcp(127.0.0.1:3306)/devcamper?parseTime=true&loc=UTC&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"
)

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type MailgunConfig struct {
	Domain  string
	APIKey  string
	APIBase string
}

type Env struct {
	AppEnv  string
	AppAddr string
	GinMode string

	StoreDriver   string
	DatabaseDSN   string
	DBAutoMigrate bool

	JWTSecret       string
	JWTExpire       time.Duration
	JWTCookieExpire time.Duration

	MailDriver   string
	Mailgun      MailgunConfig
	SMTPHost     string
	SMTPPort     int
	SMTPEmail    string
	SMTPPassword string
	FromName     string
	FromEmail    string

	GeocoderProvider  string
	GeocoderAPIKey    string
	GeocoderCacheSize int

	FileUploadPath string
	MaxFileUpload  int64
	S3             S3Config

	RedisURL        string
	RateLimitMax    int
	RateLimitWindow time.Duration

	CORSAllowedOrigins []string
	ResetCleanup       string
}

func (e Env) Production() bool { return e.AppEnv == "production" }

// LoadEnv reads the process environment. Malformed numbers and durations
// are reported together so a bad deploy fails once with every problem.
func LoadEnv() (Env, error) {
	return loadEnv(os.Getenv)
}

func loadEnv(get func(string) string) (Env, error) {
	var errs []error
	str := func(key, def string) string {
		if v := strings.TrimSpace(get(key)); v != "" {
			return v
		}
		return def
	}
	num := func(key string, def int) int {
		raw := str(key, "")
		if raw == "" {
			return def
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return def
		}
		return n
	}
	dur := func(key string, def time.Duration) time.Duration {
		raw := str(key, "")
		if raw == "" {
			return def
		}
		d, err := ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return def
		}
		return d
	}
	flag := func(key string, def bool) bool {
		raw := str(key, "")
		if raw == "" {
			return def
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return def
		}
		return b
	}

	env := Env{
		AppEnv:  str("APP_ENV", "development"),
		AppAddr: str("APP_ADDR", ":5000"),
		GinMode: str("GIN_MODE", ""),

		StoreDriver:   strings.ToLower(str("STORE_DRIVER", DriverMySQL)),
		DatabaseDSN:   str("DATABASE_DSN", defaultDSN),
		DBAutoMigrate: flag("DB_AUTO_MIGRATE", true),

		JWTSecret:       str("JWT_SECRET", ""),
		JWTExpire:       dur("JWT_EXPIRE", 30*24*time.Hour),
		JWTCookieExpire: time.Duration(num("JWT_COOKIE_EXPIRE", 30)) * 24 * time.Hour,

		MailDriver:   strings.ToLower(str("MAIL_DRIVER", MailSMTP)),
		SMTPHost:     str("SMTP_HOST", ""),
		SMTPPort:     num("SMTP_PORT", 587),
		SMTPEmail:    str("SMTP_EMAIL", ""),
		SMTPPassword: str("SMTP_PASSWORD", ""),
		FromName:     str("FROM_NAME", "DevCamper"),
		FromEmail:    str("FROM_EMAIL", "noreply@devcamper.io"),
		Mailgun: MailgunConfig{
			Domain:  str("MAILGUN_DOMAIN", ""),
			APIKey:  str("MAILGUN_API_KEY", ""),
			APIBase: str("MAILGUN_API_BASE", ""),
		},

		GeocoderProvider:  strings.ToLower(str("GEOCODER_PROVIDER", "mapquest")),
		GeocoderAPIKey:    str("GEOCODER_API_KEY", ""),
		GeocoderCacheSize: num("GEOCODER_CACHE_SIZE", 512),

		FileUploadPath: str("FILE_UPLOAD_PATH", "./public/uploads"),
		MaxFileUpload:  int64(num("MAX_FILE_UPLOAD", DefaultMaxUpload)),
		S3: S3Config{
			Bucket:    str("S3_BUCKET", ""),
			Region:    str("S3_REGION", "us-east-1"),
			Endpoint:  str("S3_ENDPOINT", ""),
			AccessKey: str("S3_ACCESS_KEY", ""),
			SecretKey: str("S3_SECRET_KEY", ""),
		},

		RedisURL:        str("REDIS_URL", ""),
		RateLimitMax:    num("RATE_LIMIT_MAX", 100),
		RateLimitWindow: dur("RATE_LIMIT_WINDOW", 10*time.Minute),

		CORSAllowedOrigins: utils.SplitList(str("CORS_ALLOWED_ORIGINS", "")),
		ResetCleanup:       str("RESET_CLEANUP_SCHEDULE", "@every 10m"),
	}
	return env, errors.Join(errs...)
}

// Validate reports settings that would make the server unusable.
func (e Env) Validate() error {
	var errs []error
	if e.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if e.JWTExpire <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRE must be positive"))
	}
	switch e.StoreDriver {
	case DriverMySQL:
		if e.DatabaseDSN == "" {
			errs = append(errs, errors.New("DATABASE_DSN is required for the mysql driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q is not one of mysql, memory", e.StoreDriver))
	}
	switch e.MailDriver {
	case MailSMTP:
	case MailMailgun:
		if e.Mailgun.Domain == "" || e.Mailgun.APIKey == "" {
			errs = append(errs, errors.New("MAILGUN_DOMAIN and MAILGUN_API_KEY are required for the mailgun driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("MAIL_DRIVER %q is not one of smtp, mailgun", e.MailDriver))
	}
	if e.RateLimitMax < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX must be at least 1"))
	}
	if e.MaxFileUpload < 1 {
		errs = append(errs, errors.New("MAX_FILE_UPLOAD must be at least 1"))
	}
	return errors.Join(errs...)
}

// ParseDuration accepts Go durations plus a whole-day suffix such as "30d".
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if days, found := strings.CutSuffix(raw, "d"); found {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid day duration %q", raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(raw)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadEnvDefaults(t *testing.T) {
	env, err := loadEnv(fromMap(nil))
	require.NoError(t, err)

	assert.Equal(t, ":5000", env.AppAddr)
	assert.Equal(t, DriverMySQL, env.StoreDriver)
	assert.Equal(t, 30*24*time.Hour, env.JWTExpire)
	assert.Equal(t, 30*24*time.Hour, env.JWTCookieExpire)
	assert.Equal(t, 100, env.RateLimitMax)
	assert.Equal(t, 10*time.Minute, env.RateLimitWindow)
	assert.Equal(t, int64(DefaultMaxUpload), env.MaxFileUpload)
	assert.Equal(t, MailSMTP, env.MailDriver)
	assert.Equal(t, "us-east-1", env.S3.Region)
	assert.True(t, env.DBAutoMigrate)
	assert.Empty(t, env.CORSAllowedOrigins)
	assert.False(t, env.Production())

	assert.ErrorContains(t, env.Validate(), "JWT_SECRET")
}

func TestLoadEnvOverrides(t *testing.T) {
	env, err := loadEnv(fromMap(map[string]string{
		"APP_ENV":              "production",
		"STORE_DRIVER":         "Memory",
		"JWT_SECRET":           "s3cret",
		"JWT_EXPIRE":           "7d",
		"JWT_COOKIE_EXPIRE":    "1",
		"RATE_LIMIT_WINDOW":    "90s",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example",
		"DB_AUTO_MIGRATE":      "false",
	}))
	require.NoError(t, err)
	require.NoError(t, env.Validate())

	assert.True(t, env.Production())
	assert.Equal(t, DriverMemory, env.StoreDriver)
	assert.Equal(t, 7*24*time.Hour, env.JWTExpire)
	assert.Equal(t, 24*time.Hour, env.JWTCookieExpire)
	assert.Equal(t, 90*time.Second, env.RateLimitWindow)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, env.CORSAllowedOrigins)
	assert.False(t, env.DBAutoMigrate)
}

func TestLoadEnvCollectsErrors(t *testing.T) {
	_, err := loadEnv(fromMap(map[string]string{
		"SMTP_PORT":  "smtp",
		"JWT_EXPIRE": "forever",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_PORT")
	assert.Contains(t, err.Error(), "JWT_EXPIRE")
}

func TestValidateStoreDriver(t *testing.T) {
	env := Env{JWTSecret: "x", JWTExpire: time.Hour, StoreDriver: "postgres", MailDriver: MailSMTP, RateLimitMax: 1, MaxFileUpload: 1}
	assert.ErrorContains(t, env.Validate(), "STORE_DRIVER")

	env.StoreDriver = DriverMemory
	assert.NoError(t, env.Validate())
}

func TestValidateMailDriver(t *testing.T) {
	env, err := loadEnv(fromMap(map[string]string{
		"JWT_SECRET":  "x",
		"MAIL_DRIVER": "Mailgun",
	}))
	require.NoError(t, err)
	assert.ErrorContains(t, env.Validate(), "MAILGUN_DOMAIN")

	env, err = loadEnv(fromMap(map[string]string{
		"JWT_SECRET":       "x",
		"MAIL_DRIVER":      "mailgun",
		"MAILGUN_DOMAIN":   "mg.example.com",
		"MAILGUN_API_KEY":  "key-1",
		"MAILGUN_API_BASE": "https://api.eu.mailgun.net/v3",
	}))
	require.NoError(t, err)
	require.NoError(t, env.Validate())
	assert.Equal(t, MailgunConfig{Domain: "mg.example.com", APIKey: "key-1", APIBase: "https://api.eu.mailgun.net/v3"}, env.Mailgun)

	env.MailDriver = "pigeon"
	assert.ErrorContains(t, env.Validate(), "MAIL_DRIVER")
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("30d")
	require.NoError(t, err)
	assert.Equal(t, 720*time.Hour, d)

	d, err = ParseDuration("15m")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, d)

	_, err = ParseDuration("xd")
	assert.Error(t, err)
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	RedisURL            string
	NATSURL             string
	NATSSubject         string
	JWTSecret           string
	OpenAIAPIKey        string
	ModerationModel     string
	AuditPageSize       int
	SubmissionRateMax   int
	SubmissionRateEvery time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("POLY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Polyratings API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("nats.subject", "polyratings.notifications")
	v.SetDefault("moderation.model", "text-moderation-latest")
	v.SetDefault("audit.page_size", 25)
	v.SetDefault("submission.rate_max", 5)
	v.SetDefault("submission.rate_window", "1m")

	window, err := time.ParseDuration(v.GetString("submission.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid submission rate window: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		NATSSubject:         v.GetString("nats.subject"),
		JWTSecret:           v.GetString("jwt.secret"),
		OpenAIAPIKey:        v.GetString("openai_api_key"),
		ModerationModel:     v.GetString("moderation.model"),
		AuditPageSize:       v.GetInt("audit.page_size"),
		SubmissionRateMax:   v.GetInt("submission.rate_max"),
		SubmissionRateEvery: window,
	}

	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("redis url must be provided")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}
	if cfg.AuditPageSize <= 0 {
		cfg.AuditPageSize = 25
	}

	return cfg, nil
}

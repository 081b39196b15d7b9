package config

import (
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

type Config struct {
	Primary   Primary         `koanf:"primary"`
	Server    ServerConfig    `koanf:"server"`
	Webhook   WebhookConfig   `koanf:"webhook"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	Session   SessionConfig   `koanf:"session"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=development production"`
}

type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// WebhookConfig holds per-route upstream URLs. A blank URL puts that route
// into mock mode; Secret is attached as X-Webhook-Secret when set.
type WebhookConfig struct {
	ContactURL string `koanf:"contact_url" validate:"omitempty,url"`
	LeadURL    string `koanf:"lead_url" validate:"omitempty,url"`
	AgentURL   string `koanf:"agent_url" validate:"omitempty,url"`
	OrderURL   string `koanf:"order_url" validate:"omitempty,url"`
	Secret     string `koanf:"secret"`
}

// RateLimitConfig is shared across routes except where a per-route ceiling
// is given; the agent message route gets a looser one since a conversation
// produces many more requests than a form.
type RateLimitConfig struct {
	WindowSeconds      int `koanf:"window_seconds" validate:"required,gt=0"`
	MaxRequests        int `koanf:"max_requests" validate:"required,gt=0"`
	MessageMaxRequests int `koanf:"message_max_requests" validate:"required,gt=0"`
}

type SessionConfig struct {
	TTLMinutes   int `koanf:"ttl_minutes" validate:"required,gt=0"`
	SweepMinutes int `koanf:"sweep_minutes" validate:"required,gt=0"`
}

func applyDefaults(c *Config) {
	if c.Primary.Env == "" {
		c.Primary.Env = "development"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = 60
	}
	if c.RateLimit.MaxRequests == 0 {
		c.RateLimit.MaxRequests = 10
	}
	if c.RateLimit.MessageMaxRequests == 0 {
		c.RateLimit.MessageMaxRequests = 30
	}
	if c.Session.TTLMinutes == 0 {
		c.Session.TTLMinutes = 720
	}
	if c.Session.SweepMinutes == 0 {
		c.Session.SweepMinutes = 10
	}
}

// Load reads configuration from FORMGATE_-prefixed environment variables
// using koanf. Missing values fall back to defaults; an invalid config is
// fatal since the server cannot run without one.
func Load() *Config {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	k := koanf.New(".")
	err := k.Load(env.Provider("FORMGATE_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "FORMGATE_")), "__", ".")
	}), nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not load env variables")
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		logger.Fatal().Err(err).Msg("could not unmarshal config")
	}

	applyDefaults(cfg)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	return cfg
}

// Development reports whether the service runs with development affordances
// (console logging, the _self_test bypass).
func (c *Config) Development() bool {
	return c.Primary.Env == "development"
}

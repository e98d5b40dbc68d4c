package flightdeck

import (
	"github.com/goliatone/go-errors"
	"github.com/ilyakaznacheev/cleanenv"
)

// EnvConfig is the process-wide configuration. The signing secret and
// token TTL are required: the process must refuse to start rather than
// ever issue a token with an undefined expiry or an empty key.
type EnvConfig struct {
	SigningKey      string `env:"SECRET_KEY" env-required:"true"`
	TokenTTLMinutes int    `env:"TIME_DELTA" env-required:"true"`
	AuthScheme      string `env:"AUTH_SCHEME" env-default:"Token"`
	ContextKey      string `env:"AUTH_CONTEXT_KEY" env-default:"user"`

	HTTPAddr string `env:"HTTP_ADDR" env-default:":8572"`
	DSN      string `env:"DATABASE_DSN" env-default:"file:flightdeck.db?cache=shared"`

	// RedisURL switches the blacklist to the Redis store when set.
	RedisURL string `env:"REDIS_URL"`

	// PurgeIntervalMinutes drives the SQL blacklist sweep; <= 0 disables it.
	PurgeIntervalMinutes int `env:"BLACKLIST_PURGE_INTERVAL_MINUTES" env-default:"60"`

	Debug bool `env:"DEBUG" env-default:"false"`
}

var _ Config = (*EnvConfig)(nil)

// LoadConfig reads configuration from the environment.
func LoadConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to load configuration")
	}

	if cfg.TokenTTLMinutes <= 0 {
		return nil, errors.New("TIME_DELTA must be a positive number of minutes", errors.CategoryBadInput)
	}

	return cfg, nil
}

// MustLoadConfig is LoadConfig with panic on error.
func MustLoadConfig() *EnvConfig {
	cfg, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *EnvConfig) GetSigningKey() string   { return c.SigningKey }
func (c *EnvConfig) GetTokenTTLMinutes() int { return c.TokenTTLMinutes }
func (c *EnvConfig) GetAuthScheme() string   { return c.AuthScheme }
func (c *EnvConfig) GetContextKey() string   { return c.ContextKey }

package app

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Config is populated from the environment via envdecode struct tags.
type Config struct {
	// JWTSecret signs access and stream tokens. Shared with the media
	// edge, which verifies stream tokens on its own.
	JWTSecret string `env:"AUTH_JWT_SECRET,required"`

	// DatabaseFile is the SQLite database path for user accounts.
	DatabaseFile string `env:"AUTH_DATABASE_FILE,default=auth.db"`

	// RedisAddr like "localhost:6379". Empty selects the in-memory
	// session store, which only suits single-node deployments.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,default=0"`

	AccessTokenTTL time.Duration `env:"AUTH_ACCESS_TOKEN_TTL,default=15m"`
	StreamTokenTTL time.Duration `env:"AUTH_STREAM_TOKEN_TTL,default=6h"`
	SessionTTL     time.Duration `env:"AUTH_SESSION_TTL,default=168h"`

	Env       string `env:"ENV,default=dev"`
	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=json"`

	Port                int           `env:"PORT,default=8080"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD,default=10s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if len(cfg.JWTSecret) < 32 {
		return Config{}, fmt.Errorf("load config: AUTH_JWT_SECRET must be at least 32 bytes")
	}
	return cfg, nil
}

package config

import "time"

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string `env:"ENV" env-default:"development"`
	Port string `env:"PORT" env-default:"3000"`

	DatabaseURL string `env:"DATABASE_URL" env-required:"true"`

	CORSOrigin string `env:"CORS_ORIGIN" env-default:"http://localhost:5173"`

	JWT       JWTConfig
	LoginRate LoginRateConfig

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type JWTConfig struct {
	Issuer    string        `env:"JWT_ISSUER" env-default:"taskboard"`
	Secret    string        `env:"JWT_SECRET" env-required:"true"`
	ExpiresIn time.Duration `env:"JWT_EXPIRES_IN" env-default:"24h"`
}

// LoginRateConfig bounds login attempts per client to slow down
// credential stuffing.
type LoginRateConfig struct {
	Limit  int           `env:"LOGIN_RATE_LIMIT" env-default:"5"`
	Window time.Duration `env:"LOGIN_RATE_WINDOW" env-default:"15m"`
}

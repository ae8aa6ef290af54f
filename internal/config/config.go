package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Port             string   `mapstructure:"PORT" validate:"required,numeric"`
	Env              string   `mapstructure:"ENV" validate:"oneof=development test staging production"`
	DatabaseURL      string   `mapstructure:"DATABASE_URL" validate:"required"`
	DBMaxConns       int32    `mapstructure:"DB_MAX_CONNS" validate:"min=1,max=500"`
	DBMinConns       int32    `mapstructure:"DB_MIN_CONNS" validate:"min=0,ltefield=DBMaxConns"`
	AuthIssuer       string   `mapstructure:"AUTH_ISSUER" validate:"omitempty,url"`
	AuthAudience     string   `mapstructure:"AUTH_AUDIENCE"`
	AuthJWKSURL      string   `mapstructure:"AUTH_JWKS_URL" validate:"omitempty,url"`
	AuthSigningKey   string   `mapstructure:"AUTH_SIGNING_KEY" validate:"omitempty,min=32"`
	CORSOrigins      []string `mapstructure:"CORS_ORIGINS"`
	MigrationsDir    string   `mapstructure:"MIGRATIONS_DIR" validate:"required"`
	EngineTuningFile string   `mapstructure:"ENGINE_TUNING_FILE"`
	BodyLimit        string   `mapstructure:"BODY_LIMIT"`
	RateLimitRPS     float64  `mapstructure:"RATE_LIMIT_RPS" validate:"gt=0"`
	RateLimitBurst   int      `mapstructure:"RATE_LIMIT_BURST" validate:"min=1"`
}

var keys = []string{
	"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"AUTH_ISSUER", "AUTH_AUDIENCE", "AUTH_JWKS_URL", "AUTH_SIGNING_KEY",
	"CORS_ORIGINS", "MIGRATIONS_DIR", "ENGINE_TUNING_FILE", "BODY_LIMIT",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		v.BindEnv(k)
	}

	// A missing .env is fine.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) == 1 && strings.Contains(cfg.CORSOrigins[0], ",") {
		cfg.CORSOrigins = strings.Split(cfg.CORSOrigins[0], ",")
	}
	for i := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(cfg.CORSOrigins[i])
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Warn().Msg("ENV=development: requests without a bearer token are served as an admin dev-user; do not use this configuration in production")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks struct tags first, then the cross-field rules. Outside
// development a token verifier must be configured.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("validation error: %w", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, formatValidationError(e))
		}
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
	}

	if !c.IsDev() && c.AuthIssuer == "" && c.AuthJWKSURL == "" && c.AuthSigningKey == "" {
		return fmt.Errorf("AUTH_ISSUER, AUTH_JWKS_URL or AUTH_SIGNING_KEY must be set when ENV=%q", c.Env)
	}
	if c.IsProduction() && c.AuthSigningKey != "" {
		return fmt.Errorf("AUTH_SIGNING_KEY is for development and test only; use AUTH_ISSUER in production")
	}
	return nil
}

func formatValidationError(e validator.FieldError) string {
	field := e.StructField()
	if f, ok := fieldKeys[field]; ok {
		field = f
	}
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s (got: %v)", field, e.Param(), e.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s (got: %v)", field, e.Param(), e.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s (got: %v)", field, e.Param(), e.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got: %v)", field, e.Param(), e.Value())
	case "url":
		return fmt.Sprintf("%s must be a valid URL (got: %v)", field, e.Value())
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s", field, fieldKeys[e.Param()])
	default:
		return fmt.Sprintf("%s failed validation '%s'", field, e.Tag())
	}
}

// fieldKeys maps struct fields to the environment variable that sets them.
var fieldKeys = map[string]string{
	"Port":           "PORT",
	"Env":            "ENV",
	"DatabaseURL":    "DATABASE_URL",
	"DBMaxConns":     "DB_MAX_CONNS",
	"DBMinConns":     "DB_MIN_CONNS",
	"AuthIssuer":     "AUTH_ISSUER",
	"AuthJWKSURL":    "AUTH_JWKS_URL",
	"AuthSigningKey": "AUTH_SIGNING_KEY",
	"MigrationsDir":  "MIGRATIONS_DIR",
	"RateLimitRPS":   "RATE_LIMIT_RPS",
	"RateLimitBurst": "RATE_LIMIT_BURST",
}

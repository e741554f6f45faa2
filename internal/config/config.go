package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port             string   `mapstructure:"PORT"`
	Env              string   `mapstructure:"ENV"`
	LogLevel         string   `mapstructure:"LOG_LEVEL"`
	BridgeURL        string   `mapstructure:"BRIDGE_URL"`
	SheetURL         string   `mapstructure:"SHEET_URL"`
	StateDir         string   `mapstructure:"STATE_DIR"`
	HTTPTimeoutSecs  int      `mapstructure:"HTTP_TIMEOUT_SECONDS"`
	JWTSecret        string   `mapstructure:"JWT_SECRET"`
	CORSOrigins      []string `mapstructure:"CORS_ORIGINS"`
	RateLimitEnabled bool     `mapstructure:"RATE_LIMIT_ENABLED"`
	RateLimitRPS     float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst   int      `mapstructure:"RATE_LIMIT_BURST"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SHEET_URL", "https://docs.google.com/spreadsheets/d/11aZgt8hafBHfu0ZHeuyQH_MS09791YHXy_r-7LWc8KM/export?format=csv&gid=369787331")
	v.SetDefault("STATE_DIR", "./clinicdesk-state")
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 15)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("BRIDGE_URL")
	v.BindEnv("SHEET_URL")
	v.BindEnv("STATE_DIR")
	v.BindEnv("HTTP_TIMEOUT_SECONDS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_ENABLED")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active: all requests get a synthetic")
		log.Println("WARNING: operator identity. Do NOT use this configuration in")
		log.Println("WARNING: production. Set ENV=production and configure JWT_SECRET.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// HTTPTimeout returns the timeout applied to outbound bridge and sheet calls.
func (c *Config) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSecs <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.HTTPTimeoutSecs) * time.Second
}

// Validate checks that the configuration is safe to run. Outside development,
// JWT_SECRET must be set so that operator tokens can actually be verified;
// the bridge URL may stay empty (lookups and saves then fail with a
// "not configured" error until it is supplied), but production deployments
// almost always want it, so a missing value is logged by the caller rather
// than rejected here.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf(
			"JWT_SECRET must be set when ENV=%q. "+
				"Refusing to start without token verification configuration. "+
				"Use ENV=development for a local, unauthenticated desk", c.Env)
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 bytes, got %d", len(c.JWTSecret))
	}
	if c.StateDir == "" {
		return fmt.Errorf("STATE_DIR must not be empty")
	}
	return nil
}

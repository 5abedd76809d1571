package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigtoml"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete service configuration, loadable from environment
// variables (FOODSCAN_ prefix), flags, or YAML/TOML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	AnalyzeRoute string `default:"/chatbot" usage:"Route the analyze action navigates to" flag:"analyze-route"`
	Upstream     UpstreamConfig
	Sessions     SessionsConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// UpstreamConfig points at the Open Food Facts API.
type UpstreamConfig struct {
	BaseURL   string        `default:"https://openfoodfacts.org" usage:"Product API base URL" flag:"base-url"`
	UserAgent string        `default:"FoodScan - Go Service" usage:"User-Agent sent to the product API" flag:"user-agent"`
	Timeout   time.Duration `default:"10s" usage:"Per-lookup timeout"`
}

// SessionsConfig bounds the in-memory session registry.
type SessionsConfig struct {
	TTL time.Duration `default:"30m" usage:"Idle time after which a session is dropped"`
	Max int           `default:"10000" usage:"Maximum concurrent sessions (0 = unbounded)"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

var defaultFiles = []string{
	"config.yaml",
	"config.toml",
	"/etc/foodscan/config.yaml",
}

// LoadConfig loads configuration from the process flags, environment and
// config files, then applies platform defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(os.Args[1:], defaultFiles)
}

func loadConfig(args, files []string) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix:          "FOODSCAN",
		Args:               args,
		Files:              files,
		AllowUnknownFlags:  true,
		AllowUnknownFields: true,
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
			".yml":  aconfigyaml.New(),
			".toml": aconfigtoml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyPlatformDefaults maps the platform-provided PORT (Railway, Render,
// etc.) onto the listen address when it was not configured explicitly.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

func (c *Config) validate() error {
	switch {
	case c.Upstream.BaseURL == "":
		return errors.New("upstream base URL is required")
	case c.Upstream.Timeout <= 0:
		return errors.Errorf("upstream timeout must be positive, got %s", c.Upstream.Timeout)
	case c.Sessions.TTL <= 0:
		return errors.Errorf("session TTL must be positive, got %s", c.Sessions.TTL)
	case c.Sessions.Max < 0:
		return errors.Errorf("session max must not be negative, got %d", c.Sessions.Max)
	}
	return nil
}

package app

import (
	"net/url"
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the storefront configuration, loadable from environment
// variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	Addr       string `default:"0.0.0.0:8080" usage:"Storefront listen address"`
	BackendURL string `default:"http://localhost:8000" usage:"Base URL of the upstream catalog (STOREFRONT_BACKEND_URL or BACKEND_URL)" flag:"backend-url"`
	Catalog    CatalogConfig
	Session    SessionConfig
	RateLimit  RateLimitConfig
	CORS       CORSConfig
	Graceful   GracefulConfig
}

// CatalogConfig controls the per-session upstream catalog load.
type CatalogConfig struct {
	Timeout time.Duration `default:"0s" usage:"Upstream catalog request timeout; 0 waits indefinitely" flag:"catalog-timeout"`
}

// SessionConfig controls in-memory session lifetime.
type SessionConfig struct {
	TTL             time.Duration `default:"30m" usage:"Idle time after which a session is discarded" flag:"session-ttl"`
	CleanupInterval time.Duration `default:"1m"  usage:"How often idle sessions are evicted" flag:"session-cleanup"`
	MaxActive       int           `default:"100000" usage:"Live session cap; new visitors get 503 and readiness fails once reached (0 disables)" flag:"session-max"`
	SecureCookie    bool          `default:"false" usage:"Mark the session cookie Secure (HTTPS deployments)" flag:"secure-cookie"`
}

// RateLimitConfig controls the sliding window rate limiter. Requests are
// counted per live session, or per client address without one.
type RateLimitConfig struct {
	Max        int           `default:"300" usage:"Max requests per window"`
	Window     time.Duration `default:"1m"  usage:"Rate limit window duration"`
	TrustProxy bool          `default:"false" usage:"Take the client address from X-Forwarded-For/X-Real-IP (only behind a proxy that sets them)" flag:"trust-proxy"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow the session cookie on cross-origin requests; requires explicit origins" flag:"cors-credentials"`
}

// Validate rejects credentialed CORS for wildcard origins.
func (c CORSConfig) Validate() error {
	if !c.AllowCredentials {
		return nil
	}
	if len(c.Origins) == 0 {
		return errors.New("CORS credentials require explicit origins")
	}
	for _, o := range c.Origins {
		if o == "*" {
			return errors.New(`CORS credentials require explicit origins, not "*"`)
		}
	}
	return nil
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
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

// applyPlatformDefaults maps the unprefixed PORT and BACKEND_URL variables
// that hosting platforms and the frontend tooling set.
func (c *Config) applyPlatformDefaults() {
	if v := os.Getenv("BACKEND_URL"); v != "" && os.Getenv("STOREFRONT_BACKEND_URL") == "" {
		c.BackendURL = v
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

func (c *Config) validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return errors.Wrap(err, "parse backend URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("backend URL %q: scheme must be http or https", c.BackendURL)
	}
	if c.Catalog.Timeout < 0 {
		return errors.Errorf("catalog timeout must not be negative, got %s", c.Catalog.Timeout)
	}
	if c.Session.TTL <= 0 {
		return errors.Errorf("session TTL must be positive, got %s", c.Session.TTL)
	}
	if c.Session.CleanupInterval <= 0 {
		return errors.Errorf("session cleanup interval must be positive, got %s", c.Session.CleanupInterval)
	}
	if c.Session.MaxActive < 0 {
		return errors.Errorf("session cap must not be negative, got %d", c.Session.MaxActive)
	}
	return c.CORS.Validate()
}

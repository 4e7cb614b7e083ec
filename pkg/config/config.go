package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all server configuration.
type Config struct {
	Server ServerConfig
	REST   RESTConfig
	KDE    KDEConfig
	Cache  CacheConfig
	Models ModelsConfig
}

// RESTConfig holds the optional REST gateway's configuration, proxying to
// the gRPC server over loopback.
type RESTConfig struct {
	Enabled bool
	Host    string
	Port    int

	CORSEnabled bool
	CORSOrigins []string

	AuthEnabled bool
	JWTSecret   string
	PublicPaths []string
	AdminPaths  []string

	RateLimitEnabled bool
	RateLimitPerSec  float64
	RateLimitBurst   int
	RateLimitPerIP   bool
	RateLimitPerUser bool
	RateLimitGlobal  bool
}

// ServerConfig holds the gRPC server's configuration (the REST gateway has
// its own RESTConfig).
type ServerConfig struct {
	Host            string        // Server host (default: "0.0.0.0")
	Port            int           // Server port (default: 50051)
	MaxConnections  int           // Max concurrent connections
	RequestTimeout  time.Duration // Request timeout
	ShutdownTimeout time.Duration // Graceful shutdown timeout
	EnableTLS       bool          // Enable TLS
	CertFile        string        // TLS certificate file
	KeyFile         string        // TLS key file
}

// KDEConfig holds the default façade configuration knobs (spec §3's
// "Configuration" list) applied when a model is created without overrides.
type KDEConfig struct {
	Kernel         string  // default kernel name, e.g. "gaussian"
	Spatial        string  // "bruteforce" or "kdtree"
	Balls          string  // "brute" or "hashgrid"
	Quality        float64 // tail-truncation fraction, [0,1]
	Epsilon        float64 // convergence threshold
	IterCap        int     // hard iteration cap
	IdentDist      float64 // live-trajectory collapse distance
	MergeRange     float64 // balls-index cluster radius
	MergeCheckStep int     // iterations between convergence checks
}

// CacheConfig holds query-memoization cache configuration (pkg/cachekv).
type CacheConfig struct {
	Enabled  bool          // Enable query caching
	Capacity int           // Max cache entries
	TTL      time.Duration // Time to live for cache entries
}

// ModelsConfig bounds how many named façades the registry may host and how
// large each may grow.
type ModelsConfig struct {
	MaxModels      int // max number of named façades
	MaxExemplars   int // max exemplars per façade
	MaxDimensions  int // max feature dimensionality per façade
	RateLimitQPS   int // default per-model query rate limit
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            50051,
			MaxConnections:  1000,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			EnableTLS:       false,
		},
		REST: RESTConfig{
			Enabled:          true,
			Host:             "0.0.0.0",
			Port:             8080,
			CORSEnabled:      true,
			CORSOrigins:      []string{"*"},
			AuthEnabled:      false,
			PublicPaths:      []string{"/v1/health"},
			RateLimitEnabled: true,
			RateLimitPerSec:  100,
			RateLimitBurst:   200,
			RateLimitPerIP:   true,
		},
		KDE: KDEConfig{
			Kernel:         "gaussian",
			Spatial:        "bruteforce",
			Balls:          "brute",
			Quality:        0.99,
			Epsilon:        1e-6,
			IterCap:        200,
			IdentDist:      1e-3,
			MergeRange:     1,
			MergeCheckStep: 4,
		},
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: 1000,
			TTL:      5 * time.Minute,
		},
		Models: ModelsConfig{
			MaxModels:     100,
			MaxExemplars:  1_000_000,
			MaxDimensions: 4096,
			RateLimitQPS:  1000,
		},
	}
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	cfg := Default()

	// Server configuration
	if host := os.Getenv("KDE_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("KDE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if maxConn := os.Getenv("KDE_MAX_CONNECTIONS"); maxConn != "" {
		if mc, err := strconv.Atoi(maxConn); err == nil {
			cfg.Server.MaxConnections = mc
		}
	}
	if timeout := os.Getenv("KDE_REQUEST_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			cfg.Server.RequestTimeout = t
		}
	}
	if enableTLS := os.Getenv("KDE_ENABLE_TLS"); enableTLS == "true" {
		cfg.Server.EnableTLS = true
		cfg.Server.CertFile = os.Getenv("KDE_TLS_CERT")
		cfg.Server.KeyFile = os.Getenv("KDE_TLS_KEY")
	}

	// REST gateway configuration
	if enabled := os.Getenv("KDE_REST_ENABLED"); enabled == "false" {
		cfg.REST.Enabled = false
	}
	if host := os.Getenv("KDE_REST_HOST"); host != "" {
		cfg.REST.Host = host
	}
	if port := os.Getenv("KDE_REST_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.REST.Port = p
		}
	}
	if authEnabled := os.Getenv("KDE_REST_AUTH_ENABLED"); authEnabled == "true" {
		cfg.REST.AuthEnabled = true
		cfg.REST.JWTSecret = os.Getenv("KDE_REST_JWT_SECRET")
	}

	// KDE configuration
	if kernel := os.Getenv("KDE_KERNEL"); kernel != "" {
		cfg.KDE.Kernel = kernel
	}
	if spatialName := os.Getenv("KDE_SPATIAL"); spatialName != "" {
		cfg.KDE.Spatial = spatialName
	}
	if ballsName := os.Getenv("KDE_BALLS"); ballsName != "" {
		cfg.KDE.Balls = ballsName
	}
	if quality := os.Getenv("KDE_QUALITY"); quality != "" {
		if q, err := strconv.ParseFloat(quality, 64); err == nil {
			cfg.KDE.Quality = q
		}
	}
	if epsilon := os.Getenv("KDE_EPSILON"); epsilon != "" {
		if e, err := strconv.ParseFloat(epsilon, 64); err == nil {
			cfg.KDE.Epsilon = e
		}
	}
	if iterCap := os.Getenv("KDE_ITER_CAP"); iterCap != "" {
		if v, err := strconv.Atoi(iterCap); err == nil {
			cfg.KDE.IterCap = v
		}
	}
	if identDist := os.Getenv("KDE_IDENT_DIST"); identDist != "" {
		if v, err := strconv.ParseFloat(identDist, 64); err == nil {
			cfg.KDE.IdentDist = v
		}
	}
	if mergeRange := os.Getenv("KDE_MERGE_RANGE"); mergeRange != "" {
		if v, err := strconv.ParseFloat(mergeRange, 64); err == nil {
			cfg.KDE.MergeRange = v
		}
	}
	if mergeCheckStep := os.Getenv("KDE_MERGE_CHECK_STEP"); mergeCheckStep != "" {
		if v, err := strconv.Atoi(mergeCheckStep); err == nil {
			cfg.KDE.MergeCheckStep = v
		}
	}

	// Cache configuration
	if cacheEnabled := os.Getenv("KDE_CACHE_ENABLED"); cacheEnabled == "false" {
		cfg.Cache.Enabled = false
	}
	if capacity := os.Getenv("KDE_CACHE_CAPACITY"); capacity != "" {
		if c, err := strconv.Atoi(capacity); err == nil {
			cfg.Cache.Capacity = c
		}
	}
	if ttl := os.Getenv("KDE_CACHE_TTL"); ttl != "" {
		if t, err := time.ParseDuration(ttl); err == nil {
			cfg.Cache.TTL = t
		}
	}

	// Models configuration
	if maxModels := os.Getenv("KDE_MAX_MODELS"); maxModels != "" {
		if v, err := strconv.Atoi(maxModels); err == nil {
			cfg.Models.MaxModels = v
		}
	}
	if maxExemplars := os.Getenv("KDE_MAX_EXEMPLARS"); maxExemplars != "" {
		if v, err := strconv.Atoi(maxExemplars); err == nil {
			cfg.Models.MaxExemplars = v
		}
	}
	if maxDims := os.Getenv("KDE_MAX_DIMENSIONS"); maxDims != "" {
		if v, err := strconv.Atoi(maxDims); err == nil {
			cfg.Models.MaxDimensions = v
		}
	}
	if qps := os.Getenv("KDE_RATE_LIMIT_QPS"); qps != "" {
		if v, err := strconv.Atoi(qps); err == nil {
			cfg.Models.RateLimitQPS = v
		}
	}

	return cfg
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.MaxConnections < 1 {
		return fmt.Errorf("invalid max connections: %d (must be > 0)", c.Server.MaxConnections)
	}
	if c.Server.EnableTLS {
		if c.Server.CertFile == "" || c.Server.KeyFile == "" {
			return fmt.Errorf("TLS enabled but cert or key file not specified")
		}
	}

	if c.REST.Enabled {
		if c.REST.Port < 1 || c.REST.Port > 65535 {
			return fmt.Errorf("invalid REST port: %d (must be 1-65535)", c.REST.Port)
		}
		if c.REST.AuthEnabled && c.REST.JWTSecret == "" {
			return fmt.Errorf("REST auth enabled but no JWT secret specified")
		}
	}

	if c.KDE.Quality < 0 || c.KDE.Quality > 1 {
		return fmt.Errorf("invalid quality: %v (must be in [0,1])", c.KDE.Quality)
	}
	if c.KDE.Epsilon <= 0 {
		return fmt.Errorf("invalid epsilon: %v (must be > 0)", c.KDE.Epsilon)
	}
	if c.KDE.IterCap < 1 {
		return fmt.Errorf("invalid iter_cap: %d (must be >= 1)", c.KDE.IterCap)
	}
	if c.KDE.IdentDist < 0 {
		return fmt.Errorf("invalid ident_dist: %v (must be >= 0)", c.KDE.IdentDist)
	}
	if c.KDE.MergeRange <= 0 {
		return fmt.Errorf("invalid merge_range: %v (must be > 0)", c.KDE.MergeRange)
	}
	if c.KDE.MergeCheckStep < 1 {
		return fmt.Errorf("invalid merge_check_step: %d (must be >= 1)", c.KDE.MergeCheckStep)
	}

	if c.Cache.Enabled && c.Cache.Capacity < 1 {
		return fmt.Errorf("invalid cache capacity: %d (must be > 0)", c.Cache.Capacity)
	}

	if c.Models.MaxModels < 1 {
		return fmt.Errorf("invalid max models: %d (must be > 0)", c.Models.MaxModels)
	}
	if c.Models.MaxExemplars < 1 {
		return fmt.Errorf("invalid max exemplars: %d (must be > 0)", c.Models.MaxExemplars)
	}
	if c.Models.MaxDimensions < 1 {
		return fmt.Errorf("invalid max dimensions: %d (must be > 0)", c.Models.MaxDimensions)
	}

	return nil
}

// Address returns the server address (host:port).
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

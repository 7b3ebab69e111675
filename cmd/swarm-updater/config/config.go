package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// Digest resolution strategies.
const (
	ResolverDaemon   = "daemon"   // pull through the docker engine
	ResolverRegistry = "registry" // inspect the registry manifest
)

type Config struct {
	UpdateDelay      time.Duration
	NotificationURLs []string
	Resolver         string
	LogLevel         string
	StatusAddr       string

	OtelEnabled     bool
	OtelEndpoint    string
	OtelInsecure    bool
	OtelServiceName string

	Version string
}

// Overrides are command line values that take precedence over the environment.
// Zero values leave the environment setting in place.
type Overrides struct {
	Interval time.Duration
	Resolver string
	Version  string
}

// Load loads configuration from environment variables
// Automatically loads .env file if present
func Load() (*Config, error) {
	// Try to load .env file (fail silently if not present)
	_ = godotenv.Load()

	delay, err := strconv.ParseFloat(getEnv("UPDATE_DELAY", "300"), 64)
	if err != nil || delay <= 0 {
		return nil, fmt.Errorf("invalid UPDATE_DELAY %q: must be a positive number of seconds", os.Getenv("UPDATE_DELAY"))
	}

	cfg := &Config{
		UpdateDelay:      time.Duration(delay * float64(time.Second)),
		NotificationURLs: splitURLs(getEnv("NOTIFICATION_URL", "")),
		Resolver:         getEnv("RESOLVER", ResolverDaemon),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		StatusAddr:       getEnv("STATUS_ADDR", ""),
		OtelEnabled:      getEnvBool("OTEL_ENABLED", false),
		OtelEndpoint:     getEnv("OTEL_ENDPOINT", "localhost:4317"),
		OtelInsecure:     getEnvBool("OTEL_INSECURE", true),
		OtelServiceName:  getEnv("OTEL_SERVICE_NAME", "swarm-updater"),
		Version:          "dev",
	}

	return cfg, nil
}

// Apply merges command line overrides into the configuration.
func (c *Config) Apply(o Overrides) {
	if o.Interval > 0 {
		c.UpdateDelay = o.Interval
	}
	if o.Resolver != "" {
		c.Resolver = o.Resolver
	}
	if o.Version != "" {
		c.Version = o.Version
	}
}

// Validate checks values that cannot be verified while loading.
func (c *Config) Validate() error {
	if c.UpdateDelay <= 0 {
		return fmt.Errorf("update delay must be positive, got %s", c.UpdateDelay)
	}
	if c.Resolver != ResolverDaemon && c.Resolver != ResolverRegistry {
		return fmt.Errorf("invalid resolver %q: must be %q or %q", c.Resolver, ResolverDaemon, ResolverRegistry)
	}
	return nil
}

// splitURLs splits a whitespace separated list of notification URLs.
func splitURLs(s string) []string {
	return lo.Uniq(strings.Fields(s))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

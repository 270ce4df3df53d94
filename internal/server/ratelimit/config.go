package ratelimit

import "time"

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTTL is how long an unused client limiter is kept.
	IdleTTL         time.Duration
	EndpointConfigs []EndpointConfig
}

// DefaultConfig limits optimization runs to optimizePerHour per client and
// everything else to 1000 requests a minute.
func DefaultConfig(optimizePerHour int) *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		EndpointConfigs: DefaultEndpointConfigs(optimizePerHour),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs(optimizePerHour int) []EndpointConfig {
	return []EndpointConfig{
		// Each run costs several LLM calls and a browser render.
		{Path: "/optimize/stream", Method: "POST", Limit: optimizePerHour, Window: time.Hour, Burst: min(optimizePerHour, 2)},
		{Path: "/records", Method: "GET", Limit: 120, Window: time.Minute, Burst: 20},
	}
}

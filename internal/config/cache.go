package config

import "time"

// CacheConfig defines settings for the read-through response cache.
// When Enabled is false or no Redis client is configured, caching is
// disabled and every read goes to the authoritative store. TTL bounds
// how long a cached listing may be served before it expires on its own;
// explicit invalidation on mutation shrinks the staleness window below
// the TTL for the affected keys.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set; the default TTL of ten
// seconds matches the lifetime of the listing endpoints' cache entries.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: getenv("CACHE_ENABLED", "true") == "true",
		TTL:     parseDur(getenv("CACHE_TTL", "10s")),
	}
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

package config

import "time"

// CacheConfig controls the catalog response cache.  Only the public
// item listing is ever cached, and only its rendered JSON body: the
// cache is presentation-side convenience and is never consulted by the
// reservation engine, whose availability reads always happen under the
// item row lock.
type CacheConfig struct {
    Enabled bool
    TTL     time.Duration
    Prefix  string
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// The short default TTL keeps displayed availability close to live
// without hammering the database on catalog views.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled: envBool("CACHE_ENABLED", true),
        TTL:     envDur("CACHE_TTL", 5*time.Second),
        Prefix:  envStr("CACHE_PREFIX", "catalog"),
    }
}

package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// Rate limit keys.  A key decides which requests share a bucket.
const (
    LimitBySession      = "session"       // one bucket per browser
    LimitByIP           = "ip"            // one bucket per client address
    LimitBySessionRoute = "session_route" // one bucket per browser and form
)

// RateLimitConfig configures the token bucket in front of login and the
// slot mutations.  Every bucket starts full with Burst tokens and regains
// one token each RefillEvery.
type RateLimitConfig struct {
    Enabled     bool
    Burst       int
    RefillEvery time.Duration
    TTL         time.Duration // idle buckets expire after this
    KeyBy       string
    Prefix      string
    Debug       bool
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.  The defaults allow a
// burst of 20 form posts per browser and route, refilled one per 3s.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:     envBool("RATE_LIMIT_ENABLED", true),
        Burst:       envInt("RATE_LIMIT_BURST", 20),
        RefillEvery: envDur("RATE_LIMIT_REFILL_EVERY", 3*time.Second),
        TTL:         envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyBy:       strings.ToLower(getenv("RATE_LIMIT_KEY", LimitBySessionRoute)),
        Prefix:      getenv("RATE_LIMIT_PREFIX", "slots:rl"),
        Debug:       envBool("RATE_LIMIT_DEBUG", false),
    }
    if cfg.Burst < 1 {
        cfg.Burst = 1
    }
    if cfg.RefillEvery <= 0 {
        cfg.RefillEvery = time.Second
    }
    // a bucket must outlive a full refill or it resets early
    if full := time.Duration(cfg.Burst) * cfg.RefillEvery; cfg.TTL < full {
        cfg.TTL = full
    }
    switch cfg.KeyBy {
    case LimitBySession, LimitByIP, LimitBySessionRoute:
    default:
        cfg.KeyBy = LimitBySessionRoute
    }
    return cfg
}

func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    switch strings.ToLower(v) {
    case "1", "true", "yes", "on":
        return true
    case "0", "false", "no", "off":
        return false
    }
    return d
}

func envInt(k string, d int) int {
    n, err := strconv.Atoi(os.Getenv(k))
    if err != nil {
        return d
    }
    return n
}

func envDur(k string, d time.Duration) time.Duration {
    dur, err := time.ParseDuration(os.Getenv(k))
    if err != nil {
        return d
    }
    return dur
}

package middleware

import (
    "fmt"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/mazenolama/Aljabr-Task/internal/config"
)

// takeToken refills the bucket at KEYS[1] for the time elapsed since its
// last refill and takes one token if any is left.
//
//   ARGV: now_ms, burst, refill_every_ms, ttl_ms
//   returns: { allowed (0|1), tokens left, ms until the next token }
var takeToken = redis.NewScript(`
local now    = tonumber(ARGV[1])
local burst  = tonumber(ARGV[2])
local every  = tonumber(ARGV[3])
local ttl    = tonumber(ARGV[4])

local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local last   = tonumber(redis.call('HGET', KEYS[1], 'last_ms'))
if tokens == nil or last == nil then
  tokens = burst
  last = now
end

local gained = math.floor(math.max(0, now - last) / every)
if gained > 0 then
  tokens = math.min(burst, tokens + gained)
  last = last + gained * every
end

local allowed, wait = 0, 0
if tokens > 0 then
  allowed = 1
  tokens = tokens - 1
else
  wait = math.max(0, every - (now - last))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'last_ms', last)
redis.call('PEXPIRE', KEYS[1], ttl)
return { allowed, tokens, wait }
`)

// take is the outcome of one bucket check.
type take struct {
    allowed   bool
    remaining int64
    wait      time.Duration
}

// NewTokenBucket limits requests with a token bucket kept in redis, one
// bucket per key built from cfg.KeyBy.  Without redis, or when the script
// fails, requests pass: the limiter never takes the UI down.  A blocked
// request ends in a 429 echo.HTTPError so each server renders it in its
// own format.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, logger *zap.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    if logger == nil {
        logger = zap.NewNop()
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := rateKey(cfg, c)
            raw, err := takeToken.Run(c.Request().Context(), rdb, []string{key},
                time.Now().UnixMilli(),
                cfg.Burst,
                cfg.RefillEvery.Milliseconds(),
                cfg.TTL.Milliseconds(),
            ).Result()
            if err != nil {
                logger.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
                return next(c)
            }
            t, ok := parseTake(raw)
            if !ok {
                logger.Warn("rate limit script returned junk", zap.String("key", key), zap.Any("result", raw))
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(t.remaining, 10))
            if t.allowed {
                return next(c)
            }

            secs := retrySeconds(t.wait)
            h.Set("Retry-After", strconv.Itoa(secs))
            if cfg.Debug {
                logger.Info("rate limited", zap.String("key", key), zap.Duration("wait", t.wait))
            }
            return echo.NewHTTPError(http.StatusTooManyRequests,
                fmt.Sprintf("Too many requests. Please try again in %d seconds.", secs))
        }
    }
}

// parseTake reads the script's reply.  Redis returns Lua numbers as
// int64.
func parseTake(raw interface{}) (take, bool) {
    arr, ok := raw.([]interface{})
    if !ok || len(arr) != 3 {
        return take{}, false
    }
    var n [3]int64
    for i, v := range arr {
        x, ok := v.(int64)
        if !ok {
            return take{}, false
        }
        n[i] = x
    }
    return take{allowed: n[0] == 1, remaining: n[1], wait: time.Duration(n[2]) * time.Millisecond}, true
}

// retrySeconds rounds up, and never answers 0 to a blocked client.
func retrySeconds(wait time.Duration) int {
    secs := int((wait + time.Second - 1) / time.Second)
    if secs < 1 {
        secs = 1
    }
    return secs
}

// rateKey names the bucket of a request.  The UI keys by session id; the
// sandbox API has no session and falls back to the JWT subject or the
// client address.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
    who := SessionFrom(c).Scope
    if who == "" {
        who = CurrentUserID(c)
    }
    if who == "anon" {
        who = c.RealIP()
    }
    switch cfg.KeyBy {
    case config.LimitByIP:
        return cfg.Prefix + ":ip:" + c.RealIP()
    case config.LimitBySession:
        return cfg.Prefix + ":s:" + who
    default:
        return cfg.Prefix + ":s:" + who + ":" + c.Request().Method + " " + c.Path()
    }
}

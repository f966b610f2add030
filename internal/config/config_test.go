package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
    for _, k := range []string{"APP_ENV", "APP_PORT", "REMOTE_API_URL", "REMOTE_TIMEOUT", "SLOT_TIMEZONE",
        "SESSION_BACKEND", "SESSION_COOKIE", "SESSION_TTL", "MESSAGE_TTL", "DB_USER", "DB_NAME",
        "AMQP_URL", "RABBITMQ_URL", "ACTIVITY_EVENTS_ENABLED", "ACTIVITY_LOG_PATH"} {
        t.Setenv(k, "")
    }
    cfg, err := FromEnv()
    require.NoError(t, err)
    assert.Equal(t, "8080", cfg.Port)
    assert.Equal(t, "http://localhost:8081/api", cfg.RemoteAPIURL)
    assert.Equal(t, "Asia/Riyadh", cfg.SlotTimezone)
    assert.Equal(t, BackendMemory, cfg.SessionBackend)
    assert.Equal(t, 3*time.Second, cfg.MessageTTL)
    assert.False(t, cfg.EventsEnabled)
    assert.False(t, cfg.Production())
}

func TestFromEnv_Overrides(t *testing.T) {
    t.Setenv("REMOTE_API_URL", "https://localhost:7131/api/")
    t.Setenv("SESSION_BACKEND", "REDIS")
    t.Setenv("MESSAGE_TTL", "5s")
    t.Setenv("ACTIVITY_EVENTS_ENABLED", "yes")
    t.Setenv("SLOT_TIMEZONE", "UTC")
    cfg, err := FromEnv()
    require.NoError(t, err)
    assert.Equal(t, "https://localhost:7131/api", cfg.RemoteAPIURL)
    assert.Equal(t, BackendRedis, cfg.SessionBackend)
    assert.Equal(t, 5*time.Second, cfg.MessageTTL)
    assert.True(t, cfg.EventsEnabled)
    assert.Equal(t, time.UTC, cfg.Location())
}

func TestValidate_Rejects(t *testing.T) {
    t.Setenv("SLOT_TIMEZONE", "")
    t.Setenv("MESSAGE_TTL", "")

    t.Setenv("SESSION_BACKEND", "etcd")
    _, err := FromEnv()
    assert.Error(t, err)

    t.Setenv("SESSION_BACKEND", "mysql")
    t.Setenv("DB_USER", "")
    _, err = FromEnv()
    assert.Error(t, err)

    t.Setenv("SESSION_BACKEND", "memory")
    t.Setenv("SLOT_TIMEZONE", "Mars/Olympus")
    _, err = FromEnv()
    assert.Error(t, err)
}

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
    t.Setenv("RATE_LIMIT_BURST", "0")
    t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")
    t.Setenv("RATE_LIMIT_KEY", "galaxy")
    cfg := LoadRateLimitConfig()
    assert.Equal(t, 1, cfg.Burst)
    assert.Equal(t, 2*time.Second, cfg.TTL)
    assert.Equal(t, LimitBySessionRoute, cfg.KeyBy)
}

func TestLoadRateLimitConfig_Defaults(t *testing.T) {
    cfg := LoadRateLimitConfig()
    assert.True(t, cfg.Enabled)
    assert.Equal(t, 20, cfg.Burst)
    assert.Equal(t, 3*time.Second, cfg.RefillEvery)
    assert.Equal(t, "slots:rl", cfg.Prefix)
}

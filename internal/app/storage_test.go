package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mazenolama/Aljabr-Task/internal/config"
	"github.com/mazenolama/Aljabr-Task/internal/session"
)

func TestNewSessionStorage_MemoryAndRedisFallback(t *testing.T) {
	for _, backend := range []string{config.BackendMemory, config.BackendRedis} {
		st, closer, err := NewSessionStorage(context.Background(), config.Config{SessionBackend: backend}, nil, zap.NewNop())
		require.NoError(t, err)
		closer()
		_, ok := st.(*session.MemoryStorage)
		assert.True(t, ok, backend)
	}
}

type countingPurger struct{ n atomic.Int32 }

func (c *countingPurger) Purge(context.Context) (int64, error) {
	c.n.Add(1)
	return 1, nil
}

func TestRunPurgeLoop_StopsOnCancel(t *testing.T) {
	p := &countingPurger{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runPurgeLoop(ctx, p, time.Millisecond, zap.NewNop())
		close(done)
	}()
	require.Eventually(t, func() bool { return p.n.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("purge loop did not stop")
	}
}

func TestMemoryStorage_SweepsExpiredRecords(t *testing.T) {
	st := session.NewMemoryStorage()
	require.NoError(t, st.Set(context.Background(), "s", session.KeyToken, "t", time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runPurgeLoop(ctx, st, time.Millisecond, zap.NewNop())

	assert.Eventually(t, func() bool { return st.Len() == 0 }, time.Second, 5*time.Millisecond)
}

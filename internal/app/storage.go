package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mazenolama/Aljabr-Task/internal/config"
	"github.com/mazenolama/Aljabr-Task/internal/database"
	"github.com/mazenolama/Aljabr-Task/internal/session"
)

// NewSessionStorage builds the storage named by cfg.SessionBackend.  A
// redis backend without a reachable redis falls back to memory with a
// warning.  The returned closer releases backend resources and stops
// background purging.
func NewSessionStorage(ctx context.Context, cfg config.Config, rdb *redis.Client, logger *zap.Logger) (session.Storage, func(), error) {
	switch cfg.SessionBackend {
	case config.BackendRedis:
		if rdb == nil {
			logger.Warn("redis unreachable, session storage falls back to memory")
			st, stop := memoryStorage(logger)
			return st, stop, nil
		}
		logger.Info("using redis session storage")
		return session.NewRedisStorage(rdb, "slots:session"), func() {}, nil

	case config.BackendMySQL:
		db, err := database.Open(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open mysql: %w", err)
		}
		st := session.NewMySQLStorage(db)
		if err := st.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("session schema: %w", err)
		}
		purgeCtx, cancel := context.WithCancel(context.Background())
		go runPurgeLoop(purgeCtx, st, time.Hour, logger)
		logger.Info("using mysql session storage")
		return st, func() { cancel(); _ = db.Close() }, nil
	}

	logger.Info("using memory session storage")
	st, stop := memoryStorage(logger)
	return st, stop, nil
}

// memoryStorage starts the sweep that drops expired records of abandoned
// sessions; the returned func stops it.
func memoryStorage(logger *zap.Logger) (*session.MemoryStorage, func()) {
	st := session.NewMemoryStorage()
	ctx, cancel := context.WithCancel(context.Background())
	go runPurgeLoop(ctx, st, 10*time.Minute, logger)
	return st, cancel
}

type purger interface {
	Purge(ctx context.Context) (int64, error)
}

func runPurgeLoop(ctx context.Context, p purger, every time.Duration, logger *zap.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := p.Purge(ctx)
			if err != nil {
				logger.Warn("session purge failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Debug("expired sessions purged", zap.Int64("rows", n))
			}
		}
	}
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ghani250za/abdelghani-amrani/internal/config"
	"github.com/ghani250za/abdelghani-amrani/internal/database"
)

// Backend is an opened KV plus whatever must be released with it.
type Backend struct {
	KV   KV
	Name string
	// DB is set for the mysql backend.
	DB *sql.DB

	close func()
}

func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open selects the session backend named by cfg.  An unreachable Redis
// degrades to memory with a warning; a failing MySQL is an error since the
// operator asked for durable storage explicitly.
func Open(ctx context.Context, cfg config.Config, rdb *redis.Client, log *zap.Logger) (*Backend, error) {
	switch cfg.SessionBackend {
	case config.BackendRedis:
		if rdb == nil {
			log.Warn("redis unreachable, sessions fall back to memory")
			return &Backend{KV: NewMemoryKV(), Name: config.BackendMemory}, nil
		}
		return &Backend{KV: NewRedisKV(rdb), Name: config.BackendRedis}, nil
	case config.BackendMySQL:
		db, err := database.Open(cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := database.EnsureSchema(sctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return &Backend{KV: NewSQLKV(db), Name: config.BackendMySQL, DB: db, close: func() { db.Close() }}, nil
	case config.BackendFile:
		return &Backend{KV: NewFileKV(cfg.SessionFile), Name: config.BackendFile}, nil
	case config.BackendMemory:
		return &Backend{KV: NewMemoryKV(), Name: config.BackendMemory}, nil
	}
	return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
}

// PurgeLoop deletes expired SQL rows every interval until ctx ends.  Redis
// and memory expire keys themselves, so it only runs for mysql.
func (b *Backend) PurgeLoop(ctx context.Context, every time.Duration, log *zap.Logger) {
	if b.DB == nil {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := database.PurgeExpired(ctx, b.DB, now)
			if err != nil {
				log.Warn("session purge failed", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Debug("expired sessions purged", zap.Int64("rows", n))
			}
		}
	}
}

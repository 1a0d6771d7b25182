package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Checker-Finance/market-radar/internal/metrics"
	"github.com/Checker-Finance/market-radar/pkg/model"
)

// LatestKey holds the JSON of the most recent snapshot.
const LatestKey = "radar:snapshot:latest"

// Store mirrors the latest snapshot into Redis so a restarted or second
// instance can serve views before its first refresh lands. Entries expire;
// nothing is kept beyond the TTL.
type Store interface {
	Publish(ctx context.Context, snap model.Snapshot) error
	Latest(ctx context.Context) (*model.Snapshot, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

type SnapshotStore struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSnapshotStore connects to Redis and pings it.
func NewSnapshotStore(redisAddr string, redisDB int, redisPass string, ttl time.Duration, logger *zap.Logger) (*SnapshotStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		DB:       redisDB,
		Password: redisPass,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &SnapshotStore{redis: rdb, ttl: ttl, logger: logger}, nil
}

// Publish writes snap under LatestKey. It satisfies refresh.Sink.
func (s *SnapshotStore) Publish(ctx context.Context, snap model.Snapshot) error {
	if err := s.SetJSON(ctx, LatestKey, snap, s.ttl); err != nil {
		s.logger.Error("store.redis.snapshot_write_failed",
			zap.String("snapshot_id", snap.ID.String()),
			zap.Error(err))
		metrics.IncError("store", "write_failed")
		return err
	}
	s.logger.Debug("store.redis.snapshot_written",
		zap.String("snapshot_id", snap.ID.String()),
		zap.Int("markets", snap.Len()),
		zap.Duration("ttl", s.ttl))
	return nil
}

// Latest returns the cached snapshot, or nil when there is none.
func (s *SnapshotStore) Latest(ctx context.Context) (*model.Snapshot, error) {
	var snap model.Snapshot
	err := s.GetJSON(ctx, LatestKey, &snap)
	if errors.Is(err, redis.Nil) {
		metrics.IncCacheAccess("miss")
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	metrics.IncCacheAccess("hit")
	return &snap, nil
}

func (s *SnapshotStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, ttl).Err()
}

func (s *SnapshotStore) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (s *SnapshotStore) HealthCheck(ctx context.Context) error {
	if s.redis == nil {
		return fmt.Errorf("redis not initialized")
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *SnapshotStore) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

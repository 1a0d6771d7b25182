package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Checker-Finance/market-radar/pkg/model"
)

func newTestStore(t *testing.T) (*SnapshotStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return &SnapshotStore{redis: rdb, ttl: time.Minute, logger: zap.NewNop()}, mr
}

func sampleSnapshot() model.Snapshot {
	return model.NewSnapshot([]model.Market{
		{ID: "1", Question: "Will Bitcoin hit 100k?", Category: "Crypto", Volume24hr: "1250.5", BestBid: "0.41"},
		{ID: "2", Question: "Fed cut?", Category: "Economy", Volume24hr: "0"},
	}, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
}

// --- Publish / Latest ---

func TestPublishAndLatest_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)
	defer mr.Close()

	snap := sampleSnapshot()
	require.NoError(t, store.Publish(ctx, snap))

	got, err := store.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, snap.ID, got.ID)
	assert.True(t, snap.FetchedAt.Equal(got.FetchedAt))
	assert.Equal(t, snap.Markets, got.Markets)
}

func TestPublish_SetsTTL(t *testing.T) {
	store, mr := newTestStore(t)
	defer mr.Close()

	require.NoError(t, store.Publish(context.Background(), sampleSnapshot()))
	assert.Equal(t, time.Minute, mr.TTL(LatestKey))

	mr.FastForward(2 * time.Minute)
	got, err := store.Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got, "snapshot expires with its TTL")
}

func TestPublish_Overwrites(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)
	defer mr.Close()

	first := sampleSnapshot()
	second := model.NewSnapshot([]model.Market{{ID: "3", Category: "General"}}, time.Now())
	require.NoError(t, store.Publish(ctx, first))
	require.NoError(t, store.Publish(ctx, second))

	got, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Len(t, got.Markets, 1)
}

func TestLatest_Miss(t *testing.T) {
	store, mr := newTestStore(t)
	defer mr.Close()

	got, err := store.Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLatest_CorruptValue(t *testing.T) {
	store, mr := newTestStore(t)
	defer mr.Close()

	require.NoError(t, mr.Set(LatestKey, "{not json"))
	_, err := store.Latest(context.Background())
	assert.Error(t, err)
}

// --- HealthCheck ---

func TestHealthCheck_Success(t *testing.T) {
	store, mr := newTestStore(t)
	defer mr.Close()

	require.NoError(t, store.HealthCheck(context.Background()))
}

func TestHealthCheck_RedisNil(t *testing.T) {
	store := &SnapshotStore{redis: nil}
	err := store.HealthCheck(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis not initialized")
}

func TestHealthCheck_RedisDown(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	err := store.HealthCheck(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}

// --- Constructor ---

func TestNewSnapshotStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store, err := NewSnapshotStore(mr.Addr(), 0, "", time.Minute, nil)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Publish(context.Background(), sampleSnapshot()))
	assert.True(t, mr.Exists(LatestKey))
}

func TestNewSnapshotStore_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewSnapshotStore(addr, 0, "", time.Minute, zap.NewNop())
	assert.Error(t, err)
}

func TestClose_Nil(t *testing.T) {
	assert.NoError(t, (&SnapshotStore{}).Close())
}

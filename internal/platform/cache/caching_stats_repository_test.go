package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStats struct {
	counts map[string]int64
	err    error
	calls  int
}

func (s *stubStats) TableCounts(context.Context) (map[string]int64, error) {
	s.calls++
	return s.counts, s.err
}

func TestCachingStatsRepository_NilRedis(t *testing.T) {
	inner := &stubStats{counts: map[string]int64{"users": 3}}
	c := NewCachingStatsRepository(nil, 0, inner)

	got, err := c.TableCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), got["users"])
	assert.Equal(t, 30*time.Second, c.ttl)
	assert.NoError(t, c.Invalidate(context.Background()))
}

func TestCachingStatsRepository_CacheHit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inner := &stubStats{}
	c := NewCachingStatsRepository(rdb, time.Minute, inner)

	cached, _ := json.Marshal(map[string]int64{"users": 7})
	mock.ExpectGet(defaultStatsKey).SetVal(string(cached))

	got, err := c.TableCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), got["users"])
	assert.Zero(t, inner.calls, "inner repository is not queried on a hit")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingStatsRepository_CacheMiss(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inner := &stubStats{counts: map[string]int64{"pending_users": 2, "users": 5}}
	c := NewCachingStatsRepository(rdb, time.Minute, inner)

	want, _ := json.Marshal(inner.counts)
	mock.ExpectGet(defaultStatsKey).RedisNil()
	mock.ExpectSet(defaultStatsKey, want, time.Minute).SetVal("OK")

	got, err := c.TableCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, inner.counts, got)
	assert.Equal(t, 1, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingStatsRepository_CorruptedEntry(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inner := &stubStats{counts: map[string]int64{"users": 1}}
	c := NewCachingStatsRepository(rdb, time.Minute, inner)

	want, _ := json.Marshal(inner.counts)
	mock.ExpectGet(defaultStatsKey).SetVal("not json")
	mock.ExpectDel(defaultStatsKey).SetVal(1)
	mock.ExpectSet(defaultStatsKey, want, time.Minute).SetVal("OK")

	got, err := c.TableCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), got["users"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingStatsRepository_InnerError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inner := &stubStats{err: errors.New("db down")}
	c := NewCachingStatsRepository(rdb, time.Minute, inner)

	mock.ExpectGet(defaultStatsKey).RedisNil()

	_, err := c.TableCounts(context.Background())
	assert.ErrorContains(t, err, "db down")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingStatsRepository_Invalidate(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := NewCachingStatsRepository(rdb, time.Minute, &stubStats{})

	mock.ExpectDel(defaultStatsKey).SetVal(1)
	require.NoError(t, c.Invalidate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

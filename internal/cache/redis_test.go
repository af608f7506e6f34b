package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := NewRedisCache(Config{Host: mr.Host(), Port: mr.Port()})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return c, mr
}

type sample struct {
	Processed   int `json:"processed"`
	NewlyCached int `json:"newlyCached"`
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	_, err := NewRedisCache(Config{Host: "127.0.0.1", Port: "1"})
	assert.Error(t, err)
}

func TestSetGetJSON(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "k", sample{Processed: 5, NewlyCached: 4}, time.Minute))

	var got sample
	require.NoError(t, c.GetJSON(ctx, "k", &got))
	assert.Equal(t, sample{Processed: 5, NewlyCached: 4}, got)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, c.GetJSON(ctx, "k", &got), ErrMiss)
}

func TestGetJSON_Malformed(t *testing.T) {
	c, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("bad", "{not json"))

	var got sample
	err := c.GetJSON(context.Background(), "bad", &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}

func TestBackfillMemo(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	recent, err := c.Recent(ctx, "p-15")
	require.NoError(t, err)
	assert.False(t, recent)

	require.NoError(t, c.Remember(ctx, "p-15", time.Hour))

	recent, err = c.Recent(ctx, "p-15")
	require.NoError(t, err)
	assert.True(t, recent)

	mr.FastForward(time.Hour + time.Second)
	recent, err = c.Recent(ctx, "p-15")
	require.NoError(t, err)
	assert.False(t, recent)
}

func TestRemember_ZeroTTLIsNoop(t *testing.T) {
	c, mr := setupTestRedis(t)

	require.NoError(t, c.Remember(context.Background(), "p-15", 0))
	assert.False(t, mr.Exists(backfillKey+"p-15"))
}

func TestReportSink(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	var got sample
	assert.ErrorIs(t, c.LastReport(ctx, &got), ErrMiss)

	require.NoError(t, c.SaveReport(ctx, sample{Processed: 1696, NewlyCached: 12}))
	require.NoError(t, c.LastReport(ctx, &got))
	assert.Equal(t, 1696, got.Processed)
	assert.Equal(t, reportTTL, mr.TTL(lastReportKey))
}

func TestRedisDown(t *testing.T) {
	c, mr := setupTestRedis(t)
	mr.Close()

	_, err := c.Recent(context.Background(), "p-15")
	assert.Error(t, err)
	assert.Error(t, c.Health(context.Background()))
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	rdb, err := NewRedis(ctx, mr.Addr(), time.Second)
	require.NoError(t, err)
	defer rdb.Close()

	type counts struct {
		Inbox int `json:"inbox"`
	}
	require.NoError(t, SetJSON(ctx, rdb, "k", counts{Inbox: 3}, time.Minute))

	var got counts
	require.True(t, GetJSON(ctx, rdb, "k", &got))
	assert.Equal(t, 3, got.Inbox)

	mr.FastForward(2 * time.Minute)
	assert.False(t, GetJSON(ctx, rdb, "k", &got))

	require.NoError(t, mr.Set("bad", "{"))
	assert.False(t, GetJSON(ctx, rdb, "bad", &got))

	require.NoError(t, SetJSON(ctx, rdb, "k", counts{Inbox: 1}, time.Minute))
	require.NoError(t, Delete(ctx, rdb, "k"))
	assert.False(t, mr.Exists("k"))
}

func TestNilClientIsDisabled(t *testing.T) {
	ctx := context.Background()
	var rdb *redis.Client
	var v int
	assert.False(t, GetJSON(ctx, rdb, "k", &v))
	assert.NoError(t, SetJSON(ctx, rdb, "k", 1, time.Second))
	assert.NoError(t, Delete(ctx, rdb, "k"))
}

func TestNewRedisUnreachable(t *testing.T) {
	_, err := NewRedis(context.Background(), "127.0.0.1:1", 200*time.Millisecond)
	assert.Error(t, err)
}

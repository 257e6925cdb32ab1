package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	err = client.Ping(context.Background()).Err()
	require.NoError(t, err)

	return client, mr
}

func TestRedisStore(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()
	store := NewRedisStore(client, "")

	t.Run("absent key reports no state", func(t *testing.T) {
		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, ErrNoState)
	})

	t.Run("save writes the whole list under one key", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sampleProjects()))

		raw, err := mr.Get(DefaultStateKey)
		require.NoError(t, err)
		assert.Contains(t, raw, `"id":"p1"`)
		assert.Contains(t, raw, `"id":"p2"`)

		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, sampleProjects(), got)
	})

	t.Run("save replaces rather than merges", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sampleProjects()[:1]))
		got, err := store.Load(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "p1", got[0].ID)
	})

	t.Run("malformed value", func(t *testing.T) {
		require.NoError(t, mr.Set(DefaultStateKey, "not json"))
		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, ErrMalformedState)
	})

	t.Run("custom key", func(t *testing.T) {
		other := NewRedisStore(client, "tenant:projects")
		require.NoError(t, other.Save(ctx, sampleProjects()))
		assert.True(t, mr.Exists("tenant:projects"))
		assert.NoError(t, other.Ping(ctx))
	})

	t.Run("connection errors surface", func(t *testing.T) {
		dead := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
		defer dead.Close()

		_, err := NewRedisStore(dead, "").Load(ctx)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoState)
	})
}

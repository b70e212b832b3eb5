package database

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/snaptop/client/config"
	"github.com/pageza/snaptop/client/internal/session"
	"github.com/pageza/snaptop/client/internal/testhelpers"
)

// exerciseStorage runs the behaviour every session.Storage must share
func exerciseStorage(t *testing.T, s session.Storage) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := s.Get(ctx, "absent")
		assert.ErrorIs(t, err, session.ErrKeyNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "user", `{"userId":"u1"}`))
		got, err := s.Get(ctx, "user")
		require.NoError(t, err)
		assert.Equal(t, `{"userId":"u1"}`, got)
	})

	t.Run("set replaces the whole value", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "token", "first"))
		require.NoError(t, s.Set(ctx, "token", "second"))
		got, err := s.Get(ctx, "token")
		require.NoError(t, err)
		assert.Equal(t, "second", got)
	})

	t.Run("delete several keys, missing ones included", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "user", "u"))
		require.NoError(t, s.Set(ctx, "token", "t"))
		require.NoError(t, s.Delete(ctx, "user", "token", "never-set"))

		_, err := s.Get(ctx, "user")
		assert.ErrorIs(t, err, session.ErrKeyNotFound)
		_, err = s.Get(ctx, "token")
		assert.ErrorIs(t, err, session.ErrKeyNotFound)
		assert.NoError(t, s.Delete(ctx))
	})
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage())
}

func TestSQLiteStorage(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	exerciseStorage(t, s)
}

func TestSQLiteStorage_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewSQLiteStorage(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "user", "persisted"))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStorage(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })
	got, err := second.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, "persisted", got)
}

func TestRedisStorage(t *testing.T) {
	url := testhelpers.SetupRedis(t)
	log, _ := test.NewNullLogger()

	client, err := NewRedisClient(url, log)
	require.NoError(t, err)
	s := NewRedisStorage(client)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStorage(t, s)

	require.NoError(t, s.Set(context.Background(), "user", "namespaced"))
	raw, err := client.Get(context.Background(), RedisKeyPrefix+"user").Result()
	require.NoError(t, err)
	assert.Equal(t, "namespaced", raw)
	testhelpers.FlushRedis(t, url)
}

func TestNewRedisClient_BadURL(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := NewRedisClient("not a url", log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse Redis URL")
}

func TestOpen(t *testing.T) {
	log, _ := test.NewNullLogger()

	t.Run("memory", func(t *testing.T) {
		s, err := Open(&config.Config{StorageDriver: DriverMemory}, log)
		require.NoError(t, err)
		assert.IsType(t, &MemoryStorage{}, s)
	})

	t.Run("sqlite is the default", func(t *testing.T) {
		s, err := Open(&config.Config{StorageDir: t.TempDir()}, log)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		assert.IsType(t, &SQLiteStorage{}, s)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := Open(&config.Config{StorageDriver: "etcd"}, log)
		assert.Error(t, err)
	})
}

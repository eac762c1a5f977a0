package kvstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/depot-client/token/kvstore"
	"github.com/stretchr/testify/require"
)

const testKey = "auth_token"

// exerciseKV runs the behaviour every KV implementation must share
func exerciseKV(t *testing.T, kv kvstore.KV) {
	t.Helper()
	ctx := context.Background()

	_, err := kv.Get(ctx, testKey)
	require.ErrorIs(t, err, kvstore.ErrNotFound)

	require.NoError(t, kv.Set(ctx, testKey, "abc123"))
	v, err := kv.Get(ctx, testKey)
	require.NoError(t, err)
	require.Equal(t, "abc123", v)

	require.NoError(t, kv.Set(ctx, testKey, "xyz"))
	v, err = kv.Get(ctx, testKey)
	require.NoError(t, err)
	require.Equal(t, "xyz", v)

	require.NoError(t, kv.Delete(ctx, testKey))
	require.NoError(t, kv.Delete(ctx, testKey), "deleting an absent key is not an error")
	_, err = kv.Get(ctx, testKey)
	require.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestMemory(t *testing.T) {
	exerciseKV(t, kvstore.NewMemory())
}

// TestMemory_Clear tests that clearing drops every stored value
func TestMemory_Clear(t *testing.T) {
	m := kvstore.NewMemory()
	require.NoError(t, m.Set(context.Background(), testKey, "abc"))

	m.Clear()

	_, err := m.Get(context.Background(), testKey)
	require.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestSQLite_InMemory(t *testing.T) {
	s, err := kvstore.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseKV(t, s)
}

// TestSQLite_SurvivesReopen tests that the durable store keeps values across processes
func TestSQLite_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	s, err := kvstore.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), testKey, "persisted"))
	require.NoError(t, s.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	s, err = kvstore.OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	v, err := s.Get(context.Background(), testKey)
	require.NoError(t, err)
	require.Equal(t, "persisted", v)
}

// TestSQLite_Closed tests that a closed store reports ErrStoreClosed instead of panicking
func TestSQLite_Closed(t *testing.T) {
	s, err := kvstore.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Get(context.Background(), testKey)
	require.ErrorIs(t, err, kvstore.ErrStoreClosed)
	require.ErrorIs(t, s.Set(context.Background(), testKey, "v"), kvstore.ErrStoreClosed)
	require.ErrorIs(t, s.Delete(context.Background(), testKey), kvstore.ErrStoreClosed)
}

func TestSQLite_EmptyPath(t *testing.T) {
	_, err := kvstore.OpenSQLite("  ")
	require.Error(t, err)
}

// TestRedis_Unreachable tests that an unreachable Redis surfaces an error distinct from "not found"
func TestRedis_Unreachable(t *testing.T) {
	r := kvstore.NewRedis(kvstore.RedisConfig{Addr: "127.0.0.1:1", Prefix: "depot:"})
	t.Cleanup(func() { _ = r.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := r.Get(ctx, testKey)
	require.Error(t, err)
	require.NotErrorIs(t, err, kvstore.ErrNotFound)
	require.Error(t, r.Set(ctx, testKey, "v"))
	require.Error(t, r.Delete(ctx, testKey))
}

// TestRedis_Live runs the shared behaviour against a real server when one is configured
func TestRedis_Live(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	r := kvstore.NewRedis(kvstore.RedisConfig{Addr: addr, Prefix: "depot-test:"})
	t.Cleanup(func() { _ = r.Close() })

	exerciseKV(t, r)
}

package token_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jrsteele09/depot-client/bridge/bridgefake"
	"github.com/jrsteele09/depot-client/token"
	"github.com/jrsteele09/depot-client/token/kvstore"
	"github.com/stretchr/testify/require"
)

// brokenKV fails every operation, standing in for unavailable browser storage
type brokenKV struct{}

var errStorage = errors.New("storage unavailable")

func (brokenKV) Get(context.Context, string) (string, error) { return "", errStorage }
func (brokenKV) Set(context.Context, string, string) error   { return errStorage }
func (brokenKV) Delete(context.Context, string) error        { return errStorage }

type testFixture struct {
	bridge  *bridgefake.FakeBridge
	durable *kvstore.Memory
	session *kvstore.Memory
	manager *token.Manager
}

func setupTestFixture(t *testing.T, bridgeAvailable bool) *testFixture {
	t.Helper()

	f := &testFixture{
		bridge:  bridgefake.NewFakeBridge(bridgeAvailable),
		durable: kvstore.NewMemory(),
		session: kvstore.NewMemory(),
	}
	f.manager = token.New(f.durable, f.session, token.WithBridge(f.bridge))
	return f
}

// TestManager_RoundTrip_Fallback tests set then get without a host bridge
func TestManager_RoundTrip_Fallback(t *testing.T) {
	f := setupTestFixture(t, false)
	ctx := context.Background()

	for _, tok := range []string{"abc123", "x", "eyJhbGciOi.with.dots", "ünïcødé"} {
		f.manager.Set(ctx, tok)
		got, ok := f.manager.Get(ctx)
		require.True(t, ok)
		require.Equal(t, tok, got)
	}
	require.Empty(t, f.bridge.Token())
}

// TestManager_RoundTrip_Bridge tests set then get through the host bridge
func TestManager_RoundTrip_Bridge(t *testing.T) {
	f := setupTestFixture(t, true)
	ctx := context.Background()

	f.manager.Set(ctx, "abc123")
	got, ok := f.manager.Get(ctx)
	require.True(t, ok)
	require.Equal(t, "abc123", got)

	require.Equal(t, "abc123", f.bridge.Token())
	_, err := f.durable.Get(ctx, token.DefaultKey)
	require.ErrorIs(t, err, kvstore.ErrNotFound, "browser storage must not be touched when the bridge is present")
}

// TestManager_SetWritesBothStores tests the redundant write to durable and session storage
func TestManager_SetWritesBothStores(t *testing.T) {
	f := setupTestFixture(t, false)
	ctx := context.Background()

	f.manager.Set(ctx, "abc123")

	v, err := f.durable.Get(ctx, token.DefaultKey)
	require.NoError(t, err)
	require.Equal(t, "abc123", v)
	v, err = f.session.Get(ctx, token.DefaultKey)
	require.NoError(t, err)
	require.Equal(t, "abc123", v)
}

// TestManager_SurvivesOneStoreCleared tests that either store alone is enough to recover the token
func TestManager_SurvivesOneStoreCleared(t *testing.T) {
	ctx := context.Background()

	f := setupTestFixture(t, false)
	f.manager.Set(ctx, "abc123")
	f.durable.Clear()
	got, ok := f.manager.Get(ctx)
	require.True(t, ok)
	require.Equal(t, "abc123", got)

	f = setupTestFixture(t, false)
	f.manager.Set(ctx, "abc123")
	f.session.Clear()
	got, ok = f.manager.Get(ctx)
	require.True(t, ok)
	require.Equal(t, "abc123", got)
}

// TestManager_DurableReadFirst tests the read priority of the fallback chain
func TestManager_DurableReadFirst(t *testing.T) {
	f := setupTestFixture(t, false)
	ctx := context.Background()

	require.NoError(t, f.durable.Set(ctx, token.DefaultKey, "durable"))
	require.NoError(t, f.session.Set(ctx, token.DefaultKey, "session"))

	got, ok := f.manager.Get(ctx)
	require.True(t, ok)
	require.Equal(t, "durable", got)
}

// TestManager_DeleteIdempotent tests that deleting twice is the same as deleting once
func TestManager_DeleteIdempotent(t *testing.T) {
	for _, available := range []bool{false, true} {
		f := setupTestFixture(t, available)
		ctx := context.Background()

		f.manager.Set(ctx, "abc123")
		f.manager.Delete(ctx)
		_, ok := f.manager.Get(ctx)
		require.False(t, ok)

		f.manager.Delete(ctx)
		_, ok = f.manager.Get(ctx)
		require.False(t, ok)
	}
}

// TestManager_DeleteClearsBothStores tests the dual-target clear without a bridge
func TestManager_DeleteClearsBothStores(t *testing.T) {
	f := setupTestFixture(t, false)
	ctx := context.Background()

	f.manager.Set(ctx, "abc123")
	f.manager.Delete(ctx)

	_, err := f.durable.Get(ctx, token.DefaultKey)
	require.ErrorIs(t, err, kvstore.ErrNotFound)
	_, err = f.session.Get(ctx, token.DefaultKey)
	require.ErrorIs(t, err, kvstore.ErrNotFound)
}

// TestManager_BridgeDetectedPerCall tests that bridge presence is probed on every call
func TestManager_BridgeDetectedPerCall(t *testing.T) {
	f := setupTestFixture(t, false)
	ctx := context.Background()

	f.manager.Set(ctx, "browser-token")
	f.bridge.SetAvailable(true)

	_, ok := f.manager.Get(ctx)
	require.False(t, ok, "bridge is now present and holds no token")

	f.manager.Set(ctx, "bridge-token")
	got, ok := f.manager.Get(ctx)
	require.True(t, ok)
	require.Equal(t, "bridge-token", got)

	f.bridge.SetAvailable(false)
	got, ok = f.manager.Get(ctx)
	require.True(t, ok)
	require.Equal(t, "browser-token", got)
}

// TestManager_SwallowsFailures tests that storage failures degrade to "no token" without panicking
func TestManager_SwallowsFailures(t *testing.T) {
	ctx := context.Background()

	m := token.New(brokenKV{}, brokenKV{})
	m.Set(ctx, "abc123")
	m.Delete(ctx)
	_, ok := m.Get(ctx)
	require.False(t, ok)

	b := bridgefake.NewFakeBridge(true)
	b.FailOn("get", errStorage)
	b.FailOn("set", errStorage)
	b.FailOn("delete", errStorage)
	m = token.New(kvstore.NewMemory(), kvstore.NewMemory(), token.WithBridge(b))
	m.Set(ctx, "abc123")
	m.Delete(ctx)
	_, ok = m.Get(ctx)
	require.False(t, ok)
}

// TestManager_BrokenDurableFallsThrough tests that a failing durable store does not hide the session copy
func TestManager_BrokenDurableFallsThrough(t *testing.T) {
	ctx := context.Background()
	session := kvstore.NewMemory()
	m := token.New(brokenKV{}, session)

	m.Set(ctx, "abc123")

	got, ok := m.Get(ctx)
	require.True(t, ok)
	require.Equal(t, "abc123", got)
}

// TestManager_EmptyTokenIgnored tests that an empty token never overwrites a stored one
func TestManager_EmptyTokenIgnored(t *testing.T) {
	f := setupTestFixture(t, false)
	ctx := context.Background()

	f.manager.Set(ctx, "abc123")
	f.manager.Set(ctx, "")

	got, ok := f.manager.Get(ctx)
	require.True(t, ok)
	require.Equal(t, "abc123", got)
}

// TestManager_CustomKeyAndNilStores tests WithKey and a manager with no session store
func TestManager_CustomKeyAndNilStores(t *testing.T) {
	ctx := context.Background()
	durable := kvstore.NewMemory()
	m := token.New(durable, nil, token.WithKey("depot_token"))

	m.Set(ctx, "abc123")

	v, err := durable.Get(ctx, "depot_token")
	require.NoError(t, err)
	require.Equal(t, "abc123", v)
	m.Delete(ctx)
	_, ok := m.Get(ctx)
	require.False(t, ok)
}

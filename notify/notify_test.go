package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jrsteele09/depot-client/bridge/bridgefake"
	"github.com/jrsteele09/depot-client/notify"
	"github.com/stretchr/testify/require"
)

// TestHostNotifier_UsesBridge tests delivery through an available host bridge
func TestHostNotifier_UsesBridge(t *testing.T) {
	b := bridgefake.NewFakeBridge(true)
	n := notify.NewHostNotifier(b)

	n.Notify(context.Background(), "Welcome", "Logged in as Jane")

	require.Equal(t, []bridgefake.Notification{{Title: "Welcome", Body: "Logged in as Jane"}}, b.Notifications())
}

// TestHostNotifier_FallsBack tests that an absent or failing bridge never surfaces an error
func TestHostNotifier_FallsBack(t *testing.T) {
	b := bridgefake.NewFakeBridge(false)
	n := notify.NewHostNotifier(b)
	require.NotPanics(t, func() { n.Notify(context.Background(), "Offline", "check your connection") })
	require.Empty(t, b.Notifications())

	b.SetAvailable(true)
	b.FailOn("notify", errors.New("no notification daemon"))
	require.NotPanics(t, func() { n.Notify(context.Background(), "Offline", "check your connection") })

	require.NotPanics(t, func() { notify.NewHostNotifier(nil).Notify(context.Background(), "t", "b") })
}

func TestFunc(t *testing.T) {
	var got string
	var n notify.Notifier = notify.Func(func(_ context.Context, title, body string) { got = title + ":" + body })

	n.Notify(context.Background(), "a", "b")

	require.Equal(t, "a:b", got)
}

package bridgefake

import (
	"context"
	"errors"
	"sync"

	"github.com/jrsteele09/depot-client/bridge"
)

var _ bridge.Bridge = (*FakeBridge)(nil)

// Notification is a notification captured by the fake
type Notification struct {
	Title string
	Body  string
}

type FakeBridge struct {
	lock          sync.RWMutex
	available     bool
	token         string
	failures      map[string]error
	notifications []Notification
	tokenWrites   int
}

func NewFakeBridge(available bool) *FakeBridge {
	return &FakeBridge{
		available: available,
		failures:  make(map[string]error),
	}
}

func (b *FakeBridge) SetAvailable(available bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.available = available
}

// FailOn makes the named operation ("get", "set", "delete", "notify") return err.
// A nil err clears the failure.
func (b *FakeBridge) FailOn(op string, err error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if err == nil {
		delete(b.failures, op)
		return
	}
	b.failures[op] = err
}

func (b *FakeBridge) Available() bool {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.available
}

func (b *FakeBridge) GetToken(_ context.Context) (string, error) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	if err := b.check("get"); err != nil {
		return "", err
	}
	return b.token, nil
}

func (b *FakeBridge) SetToken(_ context.Context, token string) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if err := b.check("set"); err != nil {
		return err
	}
	b.token = token
	b.tokenWrites++
	return nil
}

func (b *FakeBridge) DeleteToken(_ context.Context) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if err := b.check("delete"); err != nil {
		return err
	}
	b.token = ""
	b.tokenWrites++
	return nil
}

func (b *FakeBridge) Notify(_ context.Context, title, body string) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if err := b.check("notify"); err != nil {
		return err
	}
	b.notifications = append(b.notifications, Notification{Title: title, Body: body})
	return nil
}

// Token returns the stored token without going through availability checks
func (b *FakeBridge) Token() string {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.token
}

func (b *FakeBridge) TokenWrites() int {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.tokenWrites
}

func (b *FakeBridge) Notifications() []Notification {
	b.lock.RLock()
	defer b.lock.RUnlock()
	out := make([]Notification, len(b.notifications))
	copy(out, b.notifications)
	return out
}

// check must be called with the lock held
func (b *FakeBridge) check(op string) error {
	if !b.available {
		return errors.New("fake bridge unavailable")
	}
	return b.failures[op]
}

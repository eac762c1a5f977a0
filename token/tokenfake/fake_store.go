package tokenfake

import (
	"context"
	"sync"

	"github.com/jrsteele09/depot-client/token"
)

var _ token.Store = (*FakeStore)(nil)

// FakeStore is an in-memory token.Store that counts writes
type FakeStore struct {
	lock    sync.RWMutex
	token   string
	sets    int
	deletes int
}

func NewFakeStore(initial string) *FakeStore {
	return &FakeStore{token: initial}
}

func (s *FakeStore) Get(_ context.Context) (string, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.token, s.token != ""
}

func (s *FakeStore) Set(_ context.Context, t string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.token = t
	s.sets++
}

func (s *FakeStore) Delete(_ context.Context) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.token = ""
	s.deletes++
}

// Writes returns the number of Set and Delete calls seen so far
func (s *FakeStore) Writes() (sets, deletes int) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.sets, s.deletes
}

package goldlog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/etnz/goldlog/kv"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// slot is a kv.Store for tests: it records every write, can hold Get until
// released, and can fail a number of writes.
type slot struct {
	kv.Store

	mu       sync.Mutex
	writes   []string
	failSets int           // number of upcoming Set calls to fail.
	getErr   error         // returned by Get when set.
	release  chan struct{} // when not nil, Get waits for it to be closed.
}

var errDiskFull = errors.New("disk full")

func newSlot() *slot {
	return &slot{Store: kv.NewMemory()}
}

func (s *slot) Get(ctx context.Context, key string) (string, bool, error) {
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return "", false, ctx.Err()
		}
	}
	if s.getErr != nil {
		return "", false, s.getErr
	}
	return s.Store.Get(ctx, key)
}

func (s *slot) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	if s.failSets > 0 {
		s.failSets--
		s.mu.Unlock()
		return errDiskFull
	}
	s.writes = append(s.writes, value)
	s.mu.Unlock()
	return s.Store.Set(ctx, key, value)
}

func (s *slot) Writes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.writes...)
}

// value returns the current content of the purchases slot.
func (s *slot) value(t *testing.T) string {
	t.Helper()
	v, ok, err := s.Store.Get(context.Background(), PurchasesKey)
	if err != nil || !ok {
		t.Fatalf("slot %q is absent (err %v)", PurchasesKey, err)
	}
	return v
}

func (s *slot) put(t *testing.T, value string) {
	t.Helper()
	if err := s.Store.Set(context.Background(), PurchasesKey, value); err != nil {
		t.Fatal(err)
	}
}

// recorder collects notifications.
type recorder struct {
	mu   sync.Mutex
	list []Notification
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, n)
}

func (r *recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.list...)
}

func (r *recorder) errors() int {
	n := 0
	for _, x := range r.Notifications() {
		if x.Level == LevelError {
			n++
		}
	}
	return n
}

// quietLogger discards log output.
func quietLogger() logrus.FieldLogger {
	l, _ := test.NewNullLogger()
	return l
}

// newTestStore returns a Store over s that never sleeps between retries.
func newTestStore(s kv.Store, opts ...StoreOption) *Store {
	opts = append([]StoreOption{
		WithLogger(quietLogger()),
		withBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
	}, opts...)
	return NewStore(s, opts...)
}

// mustLoad loads st and fails the test on error.
func mustLoad(t *testing.T, st *Store) {
	t.Helper()
	if err := <-st.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

// sequence returns an IDGenerator producing "id-1", "id-2", ...
func sequence() IDGenerator {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

package goldlog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/etnz/goldlog/kv"
	"github.com/sirupsen/logrus"
)

// PurchasesKey is the slot the whole purchase list is stored under.
const PurchasesKey = "goldPurchases"

// State is the lifecycle state of a Store.
type State int

const (
	Uninitialized State = iota // Load has not been called.
	Loading                    // Load is reading the slot.
	Ready                      // Load has concluded, mutations are allowed.
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Store owns the ordered list of purchases and mirrors it into a key-value slot.
//
// The list is read from the slot once, by Load. Every Append then writes the
// whole list back. Persist does nothing until Load has concluded: this is what
// keeps the empty list a Store starts with from replacing saved data.
//
// A Store is safe for concurrent use. Writes to the slot are serialized and
// always carry the list as it is when the write starts, so the last write
// reflects the last append.
type Store struct {
	slot    kv.Store
	key     string
	notify  Notifier
	log     logrus.FieldLogger
	retries uint64
	backoff func() backoff.BackOff

	mu        sync.Mutex // guards state and purchases.
	state     State
	purchases []Purchase
	ready     chan struct{}

	persistMu sync.Mutex // one write to the slot at a time.
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithNotifier sets where load and save failures are reported. Defaults to Discard.
func WithNotifier(n Notifier) StoreOption {
	return func(s *Store) { s.notify = n }
}

// WithLogger sets the logger used for debug traces.
func WithLogger(l logrus.FieldLogger) StoreOption {
	return func(s *Store) { s.log = l }
}

// WithRetries sets how many times a failed write is retried before it is
// reported. Zero, the default, means a single attempt.
func WithRetries(n uint64) StoreOption {
	return func(s *Store) { s.retries = n }
}

// WithKey stores the list under key instead of PurchasesKey.
func WithKey(key string) StoreOption {
	return func(s *Store) { s.key = key }
}

// withBackOff replaces the retry schedule, tests use it to avoid sleeping.
func withBackOff(f func() backoff.BackOff) StoreOption {
	return func(s *Store) { s.backoff = f }
}

// NewStore returns an Uninitialized Store over slot.
func NewStore(slot kv.Store, opts ...StoreOption) *Store {
	s := &Store{
		slot:   slot,
		key:    PurchasesKey,
		notify: Discard,
		log:    logrus.StandardLogger(),
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxElapsedTime = 5 * time.Second
			return b
		},
		ready: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("slot", s.key)
	return s
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ready returns a channel closed when the Store reaches Ready.
func (s *Store) Ready() <-chan struct{} { return s.ready }

// Purchases returns a copy of the list, in insertion order.
func (s *Store) Purchases() []Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Purchase(nil), s.purchases...)
}

// Len returns the number of purchases.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.purchases)
}

// Load starts hydrating the list from the slot and returns immediately.
//
// The Store is Loading as soon as Load returns. The returned channel receives
// the outcome once the Store is Ready, then is closed. An absent or empty slot
// is not an error. Unreadable or malformed content is reported (ErrHydration)
// and leaves the list empty; the Store becomes Ready all the same.
//
// Load may only be called once; later calls report ErrAlreadyLoaded.
func (s *Store) Load(ctx context.Context) <-chan error {
	done := make(chan error, 1)

	s.mu.Lock()
	if s.state != Uninitialized {
		s.mu.Unlock()
		done <- ErrAlreadyLoaded
		close(done)
		return done
	}
	s.state = Loading
	s.mu.Unlock()

	go func() {
		defer close(done)
		done <- s.load(ctx)
	}()
	return done
}

func (s *Store) load(ctx context.Context) error {
	s.log.Debug("loading purchases")
	purchases, err := s.hydrate(ctx)
	if err != nil {
		s.log.WithError(err).Debug("hydration failed, starting with an empty list")
		s.notify.Notify(errorNotification("Error", "Could not load saved purchases.", err))
		purchases = nil
	}

	s.mu.Lock()
	s.purchases = purchases
	s.state = Ready
	close(s.ready)
	s.mu.Unlock()
	s.log.WithField("count", len(purchases)).Debug("purchases ready")

	if err != nil {
		// the slot content is left untouched so that it can be repaired by hand.
		return err
	}
	// hydration is known to be complete: write the list back once.
	return s.Persist(ctx)
}

func (s *Store) hydrate(ctx context.Context) ([]Purchase, error) {
	value, ok, err := s.slot.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHydration, err)
	}
	if !ok {
		return nil, nil
	}
	purchases, err := DecodePurchases(strings.NewReader(value))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHydration, err)
	}
	return purchases, nil
}

// Append adds p at the end of the list, then persists the list.
//
// Append is rejected with ErrNotReady until Load has concluded. p must be
// valid and carry an id not used yet. When only the write fails, p stays in
// the list and the returned error matches ErrPersistence.
func (s *Store) Append(ctx context.Context, p Purchase) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", ErrValidation)
	}

	s.mu.Lock()
	if s.state != Ready {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: store is %v", ErrNotReady, state)
	}
	for _, q := range s.purchases {
		if q.ID == p.ID {
			s.mu.Unlock()
			return fmt.Errorf("%w: id %q is already used", ErrValidation, p.ID)
		}
	}
	s.purchases = append(s.purchases, p)
	s.mu.Unlock()

	return s.Persist(ctx)
}

// Persist writes the whole list to the slot, replacing the previous value.
//
// Persist is a no-op while the Store is not Ready. Failed writes are retried
// as configured by WithRetries, then reported (ErrPersistence); the in-memory
// list is not affected.
func (s *Store) Persist(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	if s.state != Ready {
		state := s.state
		s.mu.Unlock()
		s.log.WithField("state", state).Debug("skipping persist until purchases are loaded")
		return nil
	}
	var b strings.Builder
	err := EncodePurchases(&b, s.purchases)
	count := len(s.purchases)
	s.mu.Unlock()
	if err != nil {
		return s.persistFailed(err)
	}

	value := b.String()
	attempt := func() error { return s.slot.Set(ctx, s.key, value) }
	retry := func(err error, next time.Duration) {
		s.log.WithError(err).Warnf("persist failed, retrying in %v", next)
	}
	schedule := backoff.WithContext(backoff.WithMaxRetries(s.backoff(), s.retries), ctx)
	if err := backoff.RetryNotify(attempt, schedule, retry); err != nil {
		return s.persistFailed(err)
	}
	s.log.WithField("count", count).Debug("purchases saved")
	return nil
}

func (s *Store) persistFailed(err error) error {
	err = fmt.Errorf("%w: %w", ErrPersistence, err)
	s.notify.Notify(errorNotification("Error", "Could not save purchases.", err))
	return err
}

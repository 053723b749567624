// Package wishlist holds the process-wide set of saved products and keeps its
// durable record in step with every change.
package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

const (
	// DefaultKey is the storage key of the wish-list record.
	DefaultKey = "wishList"

	defaultWriteTimeout   = 5 * time.Second
	defaultPublishTimeout = 5 * time.Second
)

// Publisher is notified with the full wish list after every change.
type Publisher interface {
	PublishWishListUpdated(ctx context.Context, items []domain.Product) error
}

// Option configures a Store.
type Option func(*Store)

// WithWriteTimeout bounds each storage write. Zero disables the bound.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Store) { s.writeTimeout = d }
}

// WithPublisher sets the change notification sink.
func WithPublisher(p Publisher) Option {
	return func(s *Store) { s.publisher = p }
}

// WithPublishTimeout bounds each change notification. Zero disables the bound.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *Store) { s.publishTimeout = d }
}

// Store is the wish list: a set of products keyed by id, in insertion order.
// Every change rewrites the whole set under a single storage key. In-memory
// state is authoritative; a failed write is logged and never rolled back.
type Store struct {
	kv             repository.KeyValueStore
	key            string
	logger         *slog.Logger
	writeTimeout   time.Duration
	publisher      Publisher
	publishTimeout time.Duration

	mu      sync.RWMutex
	items   []domain.Product
	ids     map[int64]struct{}
	version uint64

	// saveMu orders writes; savedVersion is the newest snapshot handled.
	saveMu       sync.Mutex
	savedVersion uint64

	// Notifications run off the mutation path; pubMu orders them and
	// publishedVersion drops any overtaken by a newer snapshot.
	pubWG            sync.WaitGroup
	pubMu            sync.Mutex
	publishedVersion uint64
}

// NewStore creates an empty wish list persisted to kv under key. Call Load to
// restore the saved record.
func NewStore(kv repository.KeyValueStore, key string, logger *slog.Logger, opts ...Option) *Store {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{
		kv:             kv,
		key:            key,
		logger:         logger,
		writeTimeout:   defaultWriteTimeout,
		publishTimeout: defaultPublishTimeout,
		items:          []domain.Product{},
		ids:            make(map[int64]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory set with the persisted record and returns it.
// A missing, unreadable or corrupt record yields an empty list; the failure is
// logged and never returned. Duplicate ids keep their first occurrence.
func (s *Store) Load(ctx context.Context) []domain.Product {
	log := logger.WithContext(ctx, s.logger)

	loaded := s.read(ctx, log)

	items := make([]domain.Product, 0, len(loaded))
	ids := make(map[int64]struct{}, len(loaded))
	for _, p := range loaded {
		if _, dup := ids[p.ID]; dup {
			continue
		}
		ids[p.ID] = struct{}{}
		items = append(items, p)
	}

	s.mu.Lock()
	s.items = items
	s.ids = ids
	s.version++
	out := slices.Clone(items)
	s.mu.Unlock()

	itemsGauge.Set(float64(len(out)))
	log.InfoContext(ctx, "wish list loaded", slog.Int("items", len(out)))
	return out
}

func (s *Store) read(ctx context.Context, log *slog.Logger) []domain.Product {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		readFailures.Inc()
		log.ErrorContext(ctx, "wish list storage read failed",
			slog.String("key", s.key),
			slog.String("error", err.Error()),
		)
		return nil
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		readFailures.Inc()
		log.ErrorContext(ctx, "wish list record is corrupt",
			slog.String("key", s.key),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return products
}

// Add inserts p unless its id is already present. It reports whether the set
// changed; an unchanged set is not written.
func (s *Store) Add(ctx context.Context, p domain.Product) bool {
	s.mu.Lock()
	if _, ok := s.ids[p.ID]; ok {
		s.mu.Unlock()
		return false
	}
	s.items = append(s.items, p)
	s.ids[p.ID] = struct{}{}
	snap, v := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snap, v)
	return true
}

// Remove deletes the product with id if present. It reports whether the set
// changed; an unchanged set is not written.
func (s *Store) Remove(ctx context.Context, id int64) bool {
	s.mu.Lock()
	if _, ok := s.ids[id]; !ok {
		s.mu.Unlock()
		return false
	}
	s.items = slices.DeleteFunc(s.items, func(p domain.Product) bool { return p.ID == id })
	delete(s.ids, id)
	snap, v := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snap, v)
	return true
}

// Toggle adds p when absent and removes it when present. It returns whether p
// is in the wish list afterwards.
func (s *Store) Toggle(ctx context.Context, p domain.Product) bool {
	s.mu.Lock()
	_, present := s.ids[p.ID]
	if present {
		s.items = slices.DeleteFunc(s.items, func(q domain.Product) bool { return q.ID == p.ID })
		delete(s.ids, p.ID)
	} else {
		s.items = append(s.items, p)
		s.ids[p.ID] = struct{}{}
	}
	snap, v := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snap, v)
	return !present
}

// Contains reports whether id is in the wish list.
func (s *Store) Contains(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Get returns the saved product with id.
func (s *Store) Get(id int64) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.ids[id]; !ok {
		return domain.Product{}, false
	}
	i := slices.IndexFunc(s.items, func(p domain.Product) bool { return p.ID == id })
	return s.items[i], true
}

// Items returns a copy of the wish list in insertion order. It is never nil.
func (s *Store) Items() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Len returns the number of saved products.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) snapshotLocked() ([]domain.Product, uint64) {
	s.version++
	itemsGauge.Set(float64(len(s.items)))
	return slices.Clone(s.items), s.version
}

// persist writes snap unless a newer snapshot was already handled, then
// queues the change notification. The write is detached from the caller's
// cancellation; the notification never holds up the caller.
func (s *Store) persist(ctx context.Context, snap []domain.Product, version uint64) {
	ctx = context.WithoutCancel(ctx)
	if !s.save(ctx, snap, version) {
		return
	}
	if s.publisher != nil {
		s.pubWG.Add(1)
		go s.notify(ctx, snap, version)
	}
}

func (s *Store) save(ctx context.Context, snap []domain.Product, version uint64) bool {
	log := logger.WithContext(ctx, s.logger)

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if version <= s.savedVersion {
		log.DebugContext(ctx, "skipping stale wish list snapshot",
			slog.Uint64("version", version),
			slog.Uint64("saved_version", s.savedVersion),
		)
		return false
	}
	s.savedVersion = version

	if err := s.write(ctx, snap); err != nil {
		writeFailures.Inc()
		log.ErrorContext(ctx, "wish list storage write failed",
			slog.String("key", s.key),
			slog.Int("items", len(snap)),
			slog.String("error", err.Error()),
		)
	}
	return true
}

func (s *Store) notify(ctx context.Context, snap []domain.Product, version uint64) {
	defer s.pubWG.Done()

	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	if version <= s.publishedVersion {
		return
	}
	s.publishedVersion = version

	if s.publishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.publishTimeout)
		defer cancel()
	}
	if err := s.publisher.PublishWishListUpdated(ctx, snap); err != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "failed to publish wish list update",
			slog.Uint64("version", version),
			slog.String("error", err.Error()),
		)
	}
}

// Wait blocks until every queued change notification has finished.
func (s *Store) Wait() {
	s.pubWG.Wait()
}

func (s *Store) write(ctx context.Context, snap []domain.Product) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	if s.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.writeTimeout)
		defer cancel()
	}
	return s.kv.Set(ctx, s.key, data)
}

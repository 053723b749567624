package screen

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/storefront/pkg/logger"
)

const minSweepInterval = time.Second

var listingsMounted = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "storefront_listings_mounted",
	Help: "Number of mounted listing screens",
})

type registryEntry struct {
	listing  *Listing
	lastSeen time.Time
}

// Registry tracks mounted listings by id and unmounts those idle for longer
// than ttl.
type Registry struct {
	mu       sync.Mutex
	listings map[uuid.UUID]*registryEntry
	factory  func() *Listing
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewRegistry creates a registry that builds listings with factory.
func NewRegistry(factory func() *Listing, ttl time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		listings: make(map[uuid.UUID]*registryEntry),
		factory:  factory,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Mount creates and mounts a new listing. The returned channel closes when
// its catalog fetch settles.
func (r *Registry) Mount(ctx context.Context) (uuid.UUID, *Listing, <-chan struct{}) {
	id := uuid.New()
	l := r.factory()

	r.mu.Lock()
	r.listings[id] = &registryEntry{listing: l, lastSeen: r.now()}
	listingsMounted.Set(float64(len(r.listings)))
	r.mu.Unlock()

	ctx = logger.WithListingID(ctx, id.String())
	return id, l, l.Mount(ctx)
}

// Get returns the listing with id and marks it as recently used.
func (r *Registry) Get(id uuid.UUID) (*Listing, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.listings[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.listing, true
}

// Unmount removes and unmounts the listing with id.
func (r *Registry) Unmount(id uuid.UUID) bool {
	r.mu.Lock()
	e, ok := r.listings[id]
	if ok {
		delete(r.listings, id)
		listingsMounted.Set(float64(len(r.listings)))
	}
	r.mu.Unlock()

	if ok {
		e.listing.Unmount()
	}
	return ok
}

// Sweep unmounts listings idle for longer than ttl and returns how many were
// removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	now := r.now()
	var idle []*Listing
	for id, e := range r.listings {
		if now.Sub(e.lastSeen) > r.ttl {
			idle = append(idle, e.listing)
			delete(r.listings, id)
		}
	}
	listingsMounted.Set(float64(len(r.listings)))
	r.mu.Unlock()

	for _, l := range idle {
		l.Unmount()
	}
	if len(idle) > 0 {
		r.logger.Debug("unmounted idle listings", slog.Int("count", len(idle)))
	}
	return len(idle)
}

// Len returns the number of mounted listings.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listings)
}

// Run sweeps idle listings until ctx is done, then unmounts everything.
func (r *Registry) Run(ctx context.Context) {
	interval := r.ttl / 2
	if interval < minSweepInterval {
		interval = minSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	all := r.listings
	r.listings = make(map[uuid.UUID]*registryEntry)
	listingsMounted.Set(0)
	r.mu.Unlock()

	for _, e := range all {
		e.listing.Unmount()
	}
}

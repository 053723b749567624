// Package screen holds the controllers behind the three storefront screens:
// the product listing, product detail and wish list.
package screen

import (
	"context"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/filter"
	"github.com/utafrali/storefront/internal/wishlist"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// FetchFailedMessage is shown when the catalog could not be loaded.
const FetchFailedMessage = "Failed to fetch products"

// State is the lifecycle state of a listing.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// CatalogFetcher loads the full product catalog.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context) ([]domain.Product, error)
}

// ProductView is a product as rendered, with its wish-list flag.
type ProductView struct {
	domain.Product
	InWishList bool `json:"in_wish_list"`
}

// ListingView is the rendered listing screen.
type ListingView struct {
	State    State                 `json:"state"`
	Error    string                `json:"error,omitempty"`
	Criteria domain.FilterCriteria `json:"criteria"`
	Products []ProductView         `json:"products"`
	Total    int                   `json:"total"`
}

// Listing is the product listing controller. The catalog is fetched once per
// mount and dropped on unmount; the filtered view is recomputed in full
// whenever the catalog or criteria change.
type Listing struct {
	catalog CatalogFetcher
	store   *wishlist.Store
	logger  *slog.Logger

	mu         sync.RWMutex
	generation uint64
	mounted    bool
	state      State
	fetchErr   error
	products   []domain.Product
	criteria   domain.FilterCriteria
	filtered   []domain.Product
}

// NewListing creates an unmounted listing.
func NewListing(catalog CatalogFetcher, store *wishlist.Store, logger *slog.Logger) *Listing {
	return &Listing{
		catalog:  catalog,
		store:    store,
		logger:   logger,
		state:    StateLoading,
		criteria: domain.FilterCriteria{Price: domain.PriceAll, Rating: domain.RatingAll},
		filtered: []domain.Product{},
	}
}

// Mount starts the catalog fetch in the background and returns a channel that
// is closed once the fetch has settled. The fetch is not cancelled by ctx; a
// result arriving after Unmount or a later Mount is discarded.
func (l *Listing) Mount(ctx context.Context) <-chan struct{} {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.mounted = true
	l.state = StateLoading
	l.fetchErr = nil
	l.products = nil
	l.filtered = []domain.Product{}
	l.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		products, err := l.catalog.FetchCatalog(ctx)
		l.settle(ctx, gen, products, err)
	}()
	return done
}

func (l *Listing) settle(ctx context.Context, gen uint64, products []domain.Product, err error) {
	log := logger.WithContext(ctx, l.logger)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation || !l.mounted {
		log.DebugContext(ctx, "discarding catalog result for stale mount")
		return
	}

	if err != nil {
		l.state = StateFailed
		l.fetchErr = err
		log.WarnContext(ctx, "catalog fetch failed", slog.String("error", err.Error()))
		return
	}

	l.products = products
	l.state = StateReady
	l.filtered = filter.Apply(l.products, l.criteria)
	log.InfoContext(ctx, "catalog loaded", slog.Int("products", len(products)))
}

// Unmount discards the catalog. A fetch still in flight is ignored when it
// completes.
func (l *Listing) Unmount() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.generation++
	l.mounted = false
	l.state = StateLoading
	l.fetchErr = nil
	l.products = nil
	l.filtered = []domain.Product{}
}

// SetCriteria replaces the active criteria and recomputes the view.
func (l *Listing) SetCriteria(c domain.FilterCriteria) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.criteria = c
	if l.state == StateReady {
		l.filtered = filter.Apply(l.products, c)
	}
}

// State returns the current lifecycle state.
func (l *Listing) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// View renders the filtered products. Wish-list flags are read at render time.
func (l *Listing) View() ListingView {
	l.mu.RLock()
	v := ListingView{
		State:    l.state,
		Criteria: l.criteria,
		Total:    len(l.products),
	}
	filtered := l.filtered
	l.mu.RUnlock()

	if v.State == StateFailed {
		v.Error = FetchFailedMessage
	}
	v.Products = renderProducts(filtered, l.store)
	return v
}

// Product returns the catalog product with id.
func (l *Listing) Product(id int64) (domain.Product, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, p := range l.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Lookup is Product for callers that need to tell an unknown id apart from a
// catalog that is still loading (503) or failed to load (502).
func (l *Listing) Lookup(id int64) (domain.Product, error) {
	l.mu.RLock()
	state, fetchErr := l.state, l.fetchErr
	l.mu.RUnlock()

	switch state {
	case StateLoading:
		return domain.Product{}, apperrors.ServiceUnavailable("catalog is still loading")
	case StateFailed:
		return domain.Product{}, apperrors.BadGateway("CATALOG_UNAVAILABLE", FetchFailedMessage, fetchErr)
	}

	p, ok := l.Product(id)
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", formatID(id))
	}
	return p, nil
}

// ToggleWishList adds or removes the catalog product with id and returns
// whether it is now in the wish list.
func (l *Listing) ToggleWishList(ctx context.Context, id int64) (bool, error) {
	p, err := l.Lookup(id)
	if err != nil {
		return false, err
	}
	return l.store.Toggle(ctx, p), nil
}

func renderProducts(products []domain.Product, store *wishlist.Store) []ProductView {
	out := make([]ProductView, len(products))
	for i, p := range products {
		out[i] = ProductView{Product: p, InWishList: store.Contains(p.ID)}
	}
	return out
}

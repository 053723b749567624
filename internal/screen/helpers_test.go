package screen

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository/memory"
	"github.com/utafrali/storefront/internal/wishlist"
)

// fakeCatalog returns products or err. When release is non-nil each fetch
// blocks until a value is sent on it.
type fakeCatalog struct {
	mu       sync.Mutex
	products []domain.Product
	err      error
	release  chan struct{}
	ctxErrs  []error
}

func (f *fakeCatalog) FetchCatalog(ctx context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	release := f.release
	products, err := f.products, f.err
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	return products, err
}

type catalogFunc func(ctx context.Context) ([]domain.Product, error)

func (f catalogFunc) FetchCatalog(ctx context.Context) ([]domain.Product, error) {
	return f(ctx)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore() *wishlist.Store {
	return wishlist.NewStore(memory.New(), wishlist.DefaultKey, newTestLogger())
}

func rated(id int64, price, rate float64) domain.Product {
	return domain.Product{
		ID:          id,
		Title:       "Product",
		Description: "A product",
		Price:       price,
		Rating:      &domain.Rating{Rate: rate, Count: 3},
	}
}

func testCatalog() []domain.Product {
	return []domain.Product{rated(1, 10, 4.5), rated(2, 50, 2), rated(3, 150, 4)}
}

func waitSettled(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "catalog fetch did not settle")
	}
}

func viewIDs(products []ProductView) []int64 {
	out := make([]int64, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

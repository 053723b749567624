package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository/memory"
	"github.com/utafrali/storefront/internal/screen"
	"github.com/utafrali/storefront/internal/wishlist"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httputil"
)

// ============================================================================
// Fakes
// ============================================================================

type fakeCatalog struct {
	products []domain.Product
	err      error
}

func (f *fakeCatalog) FetchCatalog(_ context.Context) ([]domain.Product, error) {
	return f.products, f.err
}

// ============================================================================
// Test helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func rated(id int64, price, rate float64) domain.Product {
	return domain.Product{
		ID:          id,
		Title:       "Product",
		Description: "A product",
		Category:    "misc",
		Price:       price,
		Rating:      &domain.Rating{Rate: rate, Count: 3},
	}
}

func testCatalog() []domain.Product {
	return []domain.Product{rated(1, 10, 4.5), rated(2, 50, 2), rated(3, 150, 4)}
}

type testServer struct {
	router   http.Handler
	store    *wishlist.Store
	registry *screen.Registry
}

func newTestServer(t *testing.T, catalog screen.CatalogFetcher) *testServer {
	t.Helper()

	logger := testLogger()
	store := wishlist.NewStore(memory.New(), wishlist.DefaultKey, logger)
	registry := screen.NewRegistry(func() *screen.Listing {
		return screen.NewListing(catalog, store, logger)
	}, time.Hour, logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router := NewRouter(ctx, registry, store, health.NewHandler(), logger, RouterConfig{Environment: "test"})
	return &testServer{router: router, store: store, registry: registry}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := newRequest(t, method, path, body)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return serve(s.router, req)
}

func newRequest(t *testing.T, method, path, body string) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	return httptest.NewRequest(method, path, reader)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// mount creates a listing and returns its id.
func (s *testServer) mount(t *testing.T) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/v1/listings", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp listingBody
	decodeData(t, rec, &resp)
	return resp.ListingID
}

type envelope struct {
	Data  json.RawMessage         `json:"data"`
	Error *httputil.ErrorResponse `json:"error"`
}

type listingBody struct {
	ListingID string               `json:"listing_id"`
	State     string               `json:"state"`
	Error     string               `json:"error"`
	Products  []screen.ProductView `json:"products"`
	Total     int                  `json:"total"`
	Criteria  struct {
		Query  string `json:"query"`
		Price  string `json:"price"`
		Rating string `json:"rating"`
	} `json:"criteria"`
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Nil(t, env.Error, "unexpected error response: %s", rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *httputil.ErrorResponse {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Error, "expected error response: %s", rec.Body.String())
	return env.Error
}

func productIDs(products []screen.ProductView) []int64 {
	out := make([]int64, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

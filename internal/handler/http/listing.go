package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/screen"
	"github.com/utafrali/storefront/internal/wishlist"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

// ListingResponse is a listing view together with the id to address it by.
type ListingResponse struct {
	ListingID uuid.UUID `json:"listing_id"`
	screen.ListingView
}

// ToggleResponse reports wish-list membership after a toggle.
type ToggleResponse struct {
	ProductID  int64 `json:"product_id"`
	InWishList bool  `json:"in_wish_list"`
}

// ListingHandler handles HTTP requests for listing screens.
type ListingHandler struct {
	registry *screen.Registry
	store    *wishlist.Store
	logger   *slog.Logger
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(registry *screen.Registry, store *wishlist.Store, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{registry: registry, store: store, logger: logger}
}

// Mount handles POST /api/v1/listings. It waits for the catalog fetch to
// settle, or for the request to end, before rendering.
func (h *ListingHandler) Mount(w http.ResponseWriter, r *http.Request) {
	criteria, err := criteriaFromQuery(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	id, listing, done := h.registry.Mount(r.Context())
	listing.SetCriteria(criteria)

	select {
	case <-done:
	case <-r.Context().Done():
	}

	logger.FromContext(r.Context()).InfoContext(r.Context(), "listing mounted",
		slog.String("listing_id", id.String()),
		slog.String("state", string(listing.State())),
	)

	w.Header().Set("Location", "/api/v1/listings/"+id.String())
	httputil.WriteData(w, http.StatusCreated, ListingResponse{ListingID: id, ListingView: listing.View()})
}

// Get handles GET /api/v1/listings/{listingId}?q=&price=&rating=.
// Criteria are rebuilt from the full query on every call.
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, listing, ok := h.listing(w, r)
	if !ok {
		return
	}

	criteria, err := criteriaFromQuery(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	listing.SetCriteria(criteria)
	httputil.WriteData(w, http.StatusOK, ListingResponse{ListingID: id, ListingView: listing.View()})
}

// Unmount handles DELETE /api/v1/listings/{listingId}.
func (h *ListingHandler) Unmount(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "listingId"))
	if !ok {
		return
	}

	if !h.registry.Unmount(id) {
		httputil.WriteError(w, r, apperrors.NotFound("listing", id.String()), h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetProduct handles GET /api/v1/listings/{listingId}/products/{productId}.
// A listing whose catalog failed to load answers 502, one still loading 503.
func (h *ListingHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	_, listing, ok := h.listing(w, r)
	if !ok {
		return
	}

	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	p, err := listing.Lookup(productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, screen.NewDetail(p, h.store, h.logger).View())
}

// ToggleWishList handles POST /api/v1/listings/{listingId}/products/{productId}/wishlist.
func (h *ListingHandler) ToggleWishList(w http.ResponseWriter, r *http.Request) {
	_, listing, ok := h.listing(w, r)
	if !ok {
		return
	}

	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	in, err := listing.ToggleWishList(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, ToggleResponse{ProductID: productID, InWishList: in})
}

func (h *ListingHandler) listing(w http.ResponseWriter, r *http.Request) (uuid.UUID, *screen.Listing, bool) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "listingId"))
	if !ok {
		return uuid.Nil, nil, false
	}

	listing, found := h.registry.Get(id)
	if !found {
		httputil.WriteError(w, r, apperrors.NotFound("listing", id.String()), h.logger)
		return uuid.Nil, nil, false
	}
	return id, listing, true
}

func criteriaFromQuery(r *http.Request) (domain.FilterCriteria, error) {
	q := r.URL.Query()
	c, err := domain.NewFilterCriteria(q.Get("q"), q.Get("price"), q.Get("rating"))
	if err != nil {
		return domain.FilterCriteria{}, apperrors.InvalidInput(err.Error())
	}
	return c, nil
}

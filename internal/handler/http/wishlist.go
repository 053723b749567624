package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/screen"
	"github.com/utafrali/storefront/internal/wishlist"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

const maxBodyBytes = 1 << 20

// RemoveResponse reports whether a delete changed the wish list.
type RemoveResponse struct {
	ProductID int64 `json:"product_id"`
	Removed   bool  `json:"removed"`
}

// WishListHandler handles HTTP requests for the wish-list screen.
type WishListHandler struct {
	screen *screen.WishList
	store  *wishlist.Store
	logger *slog.Logger
}

// NewWishListHandler creates a new WishListHandler.
func NewWishListHandler(wl *screen.WishList, store *wishlist.Store, logger *slog.Logger) *WishListHandler {
	return &WishListHandler{screen: wl, store: store, logger: logger}
}

// List handles GET /api/v1/wishlist
func (h *WishListHandler) List(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.screen.View())
}

// Get handles GET /api/v1/wishlist/{productId}
func (h *WishListHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	detail, found := h.screen.Detail(productID)
	if !found {
		httputil.WriteError(w, r, apperrors.NotFound("wish list product", chi.URLParam(r, "productId")), h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, detail.View())
}

// Put handles PUT /api/v1/wishlist/{productId}. The body is the full product;
// a missing id takes the path value. Responds 201 when the product was added
// and 200 when it was already saved.
func (h *WishListHandler) Put(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	p := domain.Product{ID: productID}
	if err := decodeBody(w, r, &p); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}
	if p.ID != productID {
		httputil.WriteError(w, r, apperrors.InvalidInput(
			fmt.Sprintf("product id %d does not match path id %d", p.ID, productID)), h.logger)
		return
	}

	status := http.StatusOK
	if h.store.Add(r.Context(), p) {
		status = http.StatusCreated
	}

	saved, found := h.store.Get(p.ID)
	if !found {
		saved = p
	}
	httputil.WriteData(w, status, screen.ProductView{Product: saved, InWishList: true})
}

// Delete handles DELETE /api/v1/wishlist/{productId}. Deleting an absent
// product succeeds with removed=false.
func (h *WishListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	removed := h.screen.Remove(r.Context(), productID)
	httputil.WriteData(w, http.StatusOK, RemoveResponse{ProductID: productID, Removed: removed})
}

// decodeBody decodes and validates a JSON body of at most maxBodyBytes.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return validator.DecodeAndValidate(r, dst)
}

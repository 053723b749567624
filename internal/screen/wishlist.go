package screen

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/wishlist"
)

// EmptyWishListMessage is shown when the wish list has no products.
const EmptyWishListMessage = "Your wish list is empty"

// WishListView is the rendered wish-list screen.
type WishListView struct {
	Items   []ProductView `json:"items"`
	Count   int           `json:"count"`
	Empty   bool          `json:"empty"`
	Message string        `json:"message,omitempty"`
}

// WishList is the wish-list screen controller.
type WishList struct {
	store  *wishlist.Store
	logger *slog.Logger
}

// NewWishList creates the wish-list controller.
func NewWishList(store *wishlist.Store, logger *slog.Logger) *WishList {
	return &WishList{store: store, logger: logger}
}

// View renders saved products in insertion order.
func (w *WishList) View() WishListView {
	items := w.store.Items()
	v := WishListView{
		Items: make([]ProductView, len(items)),
		Count: len(items),
		Empty: len(items) == 0,
	}
	for i, p := range items {
		v.Items[i] = ProductView{Product: p, InWishList: true}
	}
	if v.Empty {
		v.Message = EmptyWishListMessage
	}
	return v
}

// Remove deletes the product with id. Removing an absent id is a no-op.
func (w *WishList) Remove(ctx context.Context, id int64) bool {
	return w.store.Remove(ctx, id)
}

// Detail opens the detail controller for a saved product.
func (w *WishList) Detail(id int64) (*Detail, bool) {
	p, ok := w.store.Get(id)
	if !ok {
		return nil, false
	}
	return NewDetail(p, w.store, w.logger), true
}

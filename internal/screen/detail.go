package screen

import (
	"context"
	"log/slog"
	"strconv"
	"unicode/utf8"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/wishlist"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
)

// Detail is the product detail controller.
type Detail struct {
	product domain.Product
	store   *wishlist.Store
	logger  *slog.Logger
}

// NewDetail creates a detail controller for p.
func NewDetail(p domain.Product, store *wishlist.Store, logger *slog.Logger) *Detail {
	return &Detail{product: p, store: store, logger: logger}
}

// View renders the product with its current wish-list flag.
func (d *Detail) View() ProductView {
	return ProductView{Product: d.product, InWishList: d.store.Contains(d.product.ID)}
}

// ToggleWishList adds or removes the product and returns whether it is now in
// the wish list.
func (d *Detail) ToggleWishList(ctx context.Context) bool {
	return d.store.Toggle(ctx, d.product)
}

// SubmitInquiry validates the inquiry form for this product.
func (d *Detail) SubmitInquiry(ctx context.Context, in domain.Inquiry) (domain.Confirmation, error) {
	return SubmitInquiry(ctx, d.product.ID, in, d.logger)
}

// SubmitInquiry validates in and, on success, returns the fixed confirmation.
// The inquiry is discarded: nothing is stored or sent.
func SubmitInquiry(ctx context.Context, productID int64, in domain.Inquiry, l *slog.Logger) (domain.Confirmation, error) {
	if err := validator.Validate(in); err != nil {
		return domain.Confirmation{}, err
	}

	logger.WithContext(ctx, l).InfoContext(ctx, "inquiry accepted",
		slog.Int64("product_id", productID),
		slog.Int("message_length", utf8.RuneCountInString(in.Message)),
	)
	return domain.InquiryConfirmation, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

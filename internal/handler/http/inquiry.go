package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/screen"
	"github.com/utafrali/storefront/pkg/httputil"
)

// InquiryHandler accepts product inquiry forms. Inquiries are validated and
// then discarded.
type InquiryHandler struct {
	logger *slog.Logger
}

// NewInquiryHandler creates a new InquiryHandler.
func NewInquiryHandler(logger *slog.Logger) *InquiryHandler {
	return &InquiryHandler{logger: logger}
}

// Submit handles POST /api/v1/products/{productId}/inquiries
func (h *InquiryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	var in domain.Inquiry
	if err := decodeBody(w, r, &in); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	confirmation, err := screen.SubmitInquiry(r.Context(), productID, in, h.logger)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, confirmation)
}

package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/screen"
	"github.com/utafrali/storefront/internal/wishlist"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// RouterConfig carries the transport settings for NewRouter.
type RouterConfig struct {
	Environment    string
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	PprofCIDRs     []string
	RequestTimeout time.Duration
}

// NewRouter creates a chi router with all storefront routes registered. ctx
// bounds the background cleanup of the rate limiter.
func NewRouter(
	ctx context.Context,
	registry *screen.Registry,
	store *wishlist.Store,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	cors := middleware.DefaultCORSConfig()
	cors.Environment = cfg.Environment
	if len(cfg.CORSOrigins) > 0 {
		cors.AllowedOrigins = cfg.CORSOrigins
	}

	listingHandler := NewListingHandler(registry, store, logger)
	wishListHandler := NewWishListHandler(screen.NewWishList(store, logger), store, logger)
	inquiryHandler := NewInquiryHandler(logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CORS(cors))
		r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
		r.Use(middleware.NoStore)
		r.Use(ContentTypeJSON)

		r.Route("/listings", func(r chi.Router) {
			r.Post("/", listingHandler.Mount)

			r.Route("/{listingId}", func(r chi.Router) {
				r.Use(ListingScope(logger))

				r.Get("/", listingHandler.Get)
				r.Delete("/", listingHandler.Unmount)
				r.Get("/products/{productId}", listingHandler.GetProduct)
				r.Post("/products/{productId}/wishlist", listingHandler.ToggleWishList)
			})
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", wishListHandler.List)
			r.Get("/{productId}", wishListHandler.Get)
			r.Put("/{productId}", wishListHandler.Put)
			r.Delete("/{productId}", wishListHandler.Delete)
		})

		r.Post("/products/{productId}/inquiries", inquiryHandler.Submit)
	})

	return r
}

// Package catalog fetches the product catalog from the remote endpoint.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/tracing"
	"github.com/utafrali/storefront/pkg/validator"
)

const (
	tracerName = "github.com/utafrali/storefront/internal/catalog"
	upstream   = "catalog"
)

var (
	// ErrNetwork is returned when the catalog cannot be reached or answers
	// with a non-2xx status.
	ErrNetwork = errors.New("catalog network error")

	// ErrParse is returned when the response body is not a JSON array of
	// well-formed products.
	ErrParse = errors.New("catalog parse error")
)

// Config holds catalog client settings.
type Config struct {
	URL     string
	Timeout time.Duration

	// Breaker enables the circuit breaker when non-nil.
	Breaker *httpclient.CircuitBreakerConfig
}

// NewDoer builds the transport for the catalog: a single attempt per fetch,
// optionally behind a circuit breaker.
func NewDoer(cfg Config, logger *slog.Logger) httpclient.Doer {
	base := httpclient.New(httpclient.Config{
		Timeout:         cfg.Timeout,
		MaxRetries:      0,
		MaxConnsPerHost: 4,
		UserAgent:       "storefront/1.0",
	})
	if cfg.Breaker == nil {
		return base
	}
	return httpclient.NewCircuitBreakerClient(base, *cfg.Breaker, logger)
}

// Client fetches the catalog.
type Client struct {
	doer   httpclient.Doer
	url    string
	logger *slog.Logger
}

// NewClient creates a catalog client that GETs url through doer.
func NewClient(doer httpclient.Doer, url string, logger *slog.Logger) *Client {
	return &Client{doer: doer, url: url, logger: logger}
}

// FetchCatalog performs one GET against the catalog endpoint. Failures wrap
// ErrNetwork or ErrParse. There are no retries.
func (c *Client) FetchCatalog(ctx context.Context) (products []domain.Product, err error) {
	start := time.Now()
	ctx, span := tracing.Tracer(tracerName).Start(ctx, "catalog.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("url.full", c.url)),
	)
	defer func() {
		fetchDuration.Observe(time.Since(start).Seconds())
		fetchTotal.WithLabelValues(resultLabel(err)).Inc()
		if err == nil {
			span.SetAttributes(attribute.Int("catalog.products", len(products)))
		}
		tracing.RecordError(span, err)
		span.End()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		c.logger.WarnContext(ctx, "catalog fetch failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if err := httpclient.CheckStatus(resp, upstream); err != nil {
		// A 4xx will not heal on its own; it usually means CATALOG_URL is wrong.
		level := slog.LevelWarn
		if httpclient.IsClientError(resp.StatusCode) {
			level = slog.LevelError
		}
		c.logger.Log(ctx, level, "catalog returned error status", slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	products, err = decode(resp)
	if err != nil {
		c.logger.WarnContext(ctx, "catalog response malformed", slog.String("error", err.Error()))
		return nil, err
	}

	c.logger.DebugContext(ctx, "catalog fetched", slog.Int("products", len(products)))
	return products, nil
}

func decode(resp *http.Response) ([]domain.Product, error) {
	var products []domain.Product
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&products); err != nil {
		return nil, fmt.Errorf("%w: decode body: %w", ErrParse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON array", ErrParse)
	}
	if products == nil {
		return nil, fmt.Errorf("%w: body is not a JSON array", ErrParse)
	}
	for i := range products {
		if err := validator.Validate(products[i]); err != nil {
			return nil, fmt.Errorf("%w: product at index %d: %w", ErrParse, i, err)
		}
	}
	return products, nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrParse):
		return "parse_error"
	default:
		return "network_error"
	}
}

package httpclient

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testCBConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      5 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  3,
	}
}

func statusServer(status *atomic.Int32, hits *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.WriteHeader(int(status.Load()))
	}))
}

func newBreaker(name string, mutate func(*CircuitBreakerConfig)) *CircuitBreakerClient {
	cfg := testCBConfig(name)
	if mutate != nil {
		mutate(&cfg)
	}
	return NewCircuitBreakerClient(New(fastRetry(0)), cfg, testLogger())
}

func trip(t *testing.T, cb *CircuitBreakerClient, url string) {
	t.Helper()
	for i := 0; i < 3; i++ {
		_, _ = cb.Get(context.Background(), url)
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())
}

func TestDefaultCircuitBreakerConfig(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig("catalog")
	assert.Equal(t, "catalog", cfg.Name)
	assert.Equal(t, uint32(1), cfg.MaxRequests)
	assert.Equal(t, 60*time.Second, cfg.Interval)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 0.5, cfg.FailureRatio)
	assert.Equal(t, uint32(5), cfg.MinRequests)
}

func TestCircuitBreaker_ClosedState_Success(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	server := statusServer(&status, nil)
	defer server.Close()

	cb := newBreaker("cb-closed", nil)
	resp, err := cb.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_5xxReturnedAsStatusError(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusBadGateway)
	server := statusServer(&status, nil)
	defer server.Close()

	_, err := newBreaker("cb-status", nil).Get(context.Background(), server.URL)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, "cb-status", se.Upstream)
}

func TestCircuitBreaker_OpenStateRejectsWithoutCallingUpstream(t *testing.T) {
	var status, hits atomic.Int32
	status.Store(http.StatusInternalServerError)
	server := statusServer(&status, &hits)
	defer server.Close()

	cb := newBreaker("cb-open", nil)
	trip(t, cb, server.URL)
	before := hits.Load()

	for i := 0; i < 5; i++ {
		_, err := cb.Get(context.Background(), server.URL)
		assert.ErrorIs(t, err, ErrCircuitOpen)
	}
	assert.Equal(t, before, hits.Load())
}

func TestCircuitBreaker_HalfOpenToClosedRecovery(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusInternalServerError)
	server := statusServer(&status, nil)
	defer server.Close()

	cb := newBreaker("cb-recovery", func(c *CircuitBreakerConfig) {
		c.Timeout = 100 * time.Millisecond
	})
	trip(t, cb, server.URL)

	time.Sleep(150 * time.Millisecond)
	status.Store(http.StatusOK)

	resp, err := cb.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_4xxNotCountedAsFailure(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusNotFound)
	server := statusServer(&status, nil)
	defer server.Close()

	cb := newBreaker("cb-4xx", nil)
	for i := 0; i < 5; i++ {
		resp, err := cb.Get(context.Background(), server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_CallerCancellationNotCounted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	cb := newBreaker("cb-cancel", nil)
	for i := 0; i < 4; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()
		_, err := cb.Get(ctx, server.URL)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

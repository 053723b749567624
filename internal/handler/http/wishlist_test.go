package http

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/screen"
)

const productBody = `{"id":7,"title":"Backpack","price":109.95,"description":"Fits laptops","category":"bags","image":"https://example.com/7.jpg","rating":{"rate":3.9,"count":120}}`

func TestListWishList_Empty(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{})

	rec := srv.do(t, http.MethodGet, "/api/v1/wishlist", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view screen.WishListView
	decodeData(t, rec, &view)
	assert.True(t, view.Empty)
	assert.Equal(t, 0, view.Count)
	assert.Equal(t, "Your wish list is empty", view.Message)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestPutWishList(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{})

	rec := srv.do(t, http.MethodPut, "/api/v1/wishlist/7", productBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	var view screen.ProductView
	decodeData(t, rec, &view)
	assert.Equal(t, int64(7), view.ID)
	assert.Equal(t, "Backpack", view.Title)
	assert.True(t, view.InWishList)
	require.NotNil(t, view.Rating)
	assert.Equal(t, 120, view.Rating.Count)

	rec = srv.do(t, http.MethodPut, "/api/v1/wishlist/7", productBody)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, srv.store.Len())

	rec = srv.do(t, http.MethodGet, "/api/v1/wishlist", "")
	var list screen.WishListView
	decodeData(t, rec, &list)
	assert.Equal(t, 1, list.Count)
	assert.False(t, list.Empty)
	assert.Empty(t, list.Message)
	require.Len(t, list.Items, 1)
	assert.True(t, list.Items[0].InWishList)
}

func TestPutWishList_IDFromPath(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{})

	rec := srv.do(t, http.MethodPut, "/api/v1/wishlist/5", `{"title":"Ring","price":10}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, srv.store.Contains(5))
}

func TestPutWishList_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		wantCode string
		wantKey  string
	}{
		{name: "id mismatch", path: "/api/v1/wishlist/8", body: productBody, wantCode: "INVALID_INPUT"},
		{name: "malformed json", path: "/api/v1/wishlist/7", body: `{"id":`, wantCode: "INVALID_INPUT"},
		{name: "negative price", path: "/api/v1/wishlist/7", body: `{"id":7,"price":-1}`, wantCode: "VALIDATION_ERROR", wantKey: "price"},
		{name: "rating out of range", path: "/api/v1/wishlist/7", body: `{"id":7,"price":1,"rating":{"rate":6,"count":1}}`, wantCode: "VALIDATION_ERROR", wantKey: "rating.rate"},
		{name: "bad path id", path: "/api/v1/wishlist/zero", body: productBody, wantCode: "INVALID_PARAMETER"},
		{name: "body too large", path: "/api/v1/wishlist/7", body: `{"id":7,"title":"` + strings.Repeat("a", maxBodyBytes) + `"}`, wantCode: "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeCatalog{})

			rec := srv.do(t, http.MethodPut, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			errResp := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, errResp.Code)
			if tt.wantKey != "" {
				assert.Contains(t, errResp.Fields, tt.wantKey)
			}
			assert.Equal(t, 0, srv.store.Len())
		})
	}
}

func TestPutWishList_UnsupportedMediaType(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{})

	req := newRequest(t, http.MethodPut, "/api/v1/wishlist/7", productBody)
	req.Header.Set("Content-Type", "text/plain")
	rec := serve(srv.router, req)

	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, "UNSUPPORTED_MEDIA_TYPE", decodeError(t, rec).Code)
}

func TestGetWishListProduct(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{})
	srv.store.Add(context.Background(), rated(4, 30, 4))

	rec := srv.do(t, http.MethodGet, "/api/v1/wishlist/4", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view screen.ProductView
	decodeData(t, rec, &view)
	assert.Equal(t, int64(4), view.ID)
	assert.True(t, view.InWishList)

	rec = srv.do(t, http.MethodGet, "/api/v1/wishlist/5", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)
}

func TestDeleteWishList_Idempotent(t *testing.T) {
	srv := newTestServer(t, &fakeCatalog{})
	srv.store.Add(context.Background(), rated(7, 30, 4))
	srv.store.Add(context.Background(), rated(9, 30, 4))

	rec := srv.do(t, http.MethodDelete, "/api/v1/wishlist/7", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RemoveResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, RemoveResponse{ProductID: 7, Removed: true}, resp)

	rec = srv.do(t, http.MethodDelete, "/api/v1/wishlist/7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &resp)
	assert.False(t, resp.Removed)

	items := srv.store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(9), items[0].ID)
}

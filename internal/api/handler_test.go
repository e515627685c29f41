package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cart-service/internal/cart"
	"cart-service/internal/catalog"
	"cart-service/internal/checkout"
	"cart-service/internal/models"
	"cart-service/internal/slot"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cartBody struct {
	Items []models.CartItem `json:"items"`
	Total float64           `json:"total"`
	Count int               `json:"count"`
}

func setupRouter(t *testing.T, store *cart.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	handler := NewHandler(store, catalog.NewStatic(), checkout.NewService(nil, cart.DefaultKey, 0))
	handler.SetupRoutes(router)
	return router
}

func newStore(t *testing.T) *cart.Store {
	t.Helper()
	store, err := cart.Open(context.Background(), slot.NewMemory(), cart.WithLogger(zap.NewNop()))
	require.NoError(t, err)
	return store
}

func do(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) cartBody {
	t.Helper()
	var body cartBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthAndReady(t *testing.T) {
	router := setupRouter(t, newStore(t))

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/ready", nil).Code)
}

func TestReadyBeforeRehydration(t *testing.T) {
	store := cart.New(slot.NewMemory(), cart.WithLogger(zap.NewNop()))
	router := setupRouter(t, store)

	assert.Equal(t, http.StatusServiceUnavailable, do(t, router, http.MethodGet, "/ready", nil).Code)
}

func TestProducts(t *testing.T) {
	router := setupRouter(t, newStore(t))

	w := do(t, router, http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/products/3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var product models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))
	assert.Equal(t, "Trail Blazer", product.Name)

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/v1/products/99", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/v1/products/abc", nil).Code)
}

func TestCartFlow(t *testing.T) {
	router := setupRouter(t, newStore(t))

	w := do(t, router, http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	empty := decodeCart(t, w)
	assert.Empty(t, empty.Items)
	assert.Zero(t, empty.Total)

	w = do(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequest{ProductID: 1, Size: "10", Color: "Black"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequest{ProductID: 1, Size: "10", Color: "Black", Quantity: 2})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeCart(t, w)
	require.Len(t, body.Items, 1)
	assert.Equal(t, 3, body.Items[0].Quantity)
	assert.Equal(t, 3, body.Count)
	assert.InDelta(t, 389.97, body.Total, 0.001)

	id := body.Items[0].ID

	w = do(t, router, http.MethodPatch, "/api/v1/cart/items/"+id, map[string]int{"quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decodeCart(t, w).Count)

	w = do(t, router, http.MethodPatch, "/api/v1/cart/items/"+id, map[string]int{"quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeCart(t, w).Items)

	w = do(t, router, http.MethodDelete, "/api/v1/cart/items/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code, "removing a missing item is not an error")
}

func TestAddItemValidation(t *testing.T) {
	router := setupRouter(t, newStore(t))

	tests := []struct {
		name string
		body interface{}
		code int
	}{
		{"missing fields", map[string]interface{}{"productId": 1}, http.StatusBadRequest},
		{"negative quantity", AddItemRequest{ProductID: 1, Size: "10", Color: "Black", Quantity: -1}, http.StatusBadRequest},
		{"unknown product", AddItemRequest{ProductID: 99, Size: "10", Color: "Black"}, http.StatusNotFound},
		{"unknown size", AddItemRequest{ProductID: 1, Size: "99", Color: "Black"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/api/v1/cart/items", tt.body)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestUpdateQuantityRequiresQuantity(t *testing.T) {
	router := setupRouter(t, newStore(t))

	w := do(t, router, http.MethodPatch, "/api/v1/cart/items/abc", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClearCart(t *testing.T) {
	router := setupRouter(t, newStore(t))

	do(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequest{ProductID: 1, Size: "10", Color: "Black"})
	do(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequest{ProductID: 2, Size: "9", Color: "White"})

	w := do(t, router, http.MethodDelete, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeCart(t, w).Items)
}

func TestCheckout(t *testing.T) {
	store := newStore(t)
	router := setupRouter(t, store)

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/v1/checkout", nil).Code)

	do(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequest{ProductID: 10, Size: "9", Color: "Red"})

	w := do(t, router, http.MethodGet, "/api/v1/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		Summary struct {
			Subtotal     float64 `json:"subtotal"`
			Shipping     float64 `json:"shipping"`
			Tax          float64 `json:"tax"`
			Total        float64 `json:"total"`
			FreeShipping bool    `json:"freeShipping"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.InDelta(t, 89.99, summary.Summary.Subtotal, 0.001)
	assert.InDelta(t, 10, summary.Summary.Shipping, 0.001)
	assert.InDelta(t, 7.20, summary.Summary.Tax, 0.001)
	assert.InDelta(t, 107.19, summary.Summary.Total, 0.001)
	assert.False(t, summary.Summary.FreeShipping)

	w = do(t, router, http.MethodPost, "/api/v1/checkout", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var placed struct {
		OrderRef string `json:"orderRef"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &placed))
	assert.NotEmpty(t, placed.OrderRef)
	assert.Empty(t, store.Items())
}

func TestMissingStoreIsFatal(t *testing.T) {
	router := setupRouter(t, nil)

	w := do(t, router, http.MethodGet, "/api/v1/cart", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

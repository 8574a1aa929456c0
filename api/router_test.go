package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"api_sales/internal/sales"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testServer struct {
	router   *gin.Engine
	products *sales.LocalProductStorage
}

func initRoutesTests(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	users := sales.NewLocalUserStorage()
	products := sales.NewLocalProductStorage()
	require.NoError(t, users.Save(ctx, &sales.User{ID: "user123", Name: "Test User 123"}))
	require.NoError(t, products.Save(ctx, &sales.Product{ID: "P1", Name: "Keyboard", Price: decimal.NewFromInt(5), Quantity: 10}))

	logger := zaptest.NewLogger(t)
	svc := sales.NewService(sales.Stores{
		Sales:    sales.NewLocalStorage(),
		Users:    users,
		Products: products,
	}, logger)

	return testServer{router: NewRouter(svc, logger), products: products}
}

func (s testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s testServer) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := s.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Quantity
}

// TestSalesHappyPath_FullFlow prueba el flujo completo de POST -> GET -> PUT -> DELETE.
func TestSalesHappyPath_FullFlow(t *testing.T) {
	srv := initRoutesTests(t)

	var saleID string

	t.Run("POST_CreateSale", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/sales", map[string]any{
			"user_id":    "user123",
			"product_id": "P1",
			"quantity":   3,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.NotEmpty(t, w.Header().Get(requestIDHeader))

		var created sales.SaleResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID, "Expected sale ID to be generated")
		assert.Equal(t, 3, created.Quantity)
		assert.True(t, decimal.NewFromInt(15).Equal(created.Price))
		assert.Equal(t, "user123", created.UserID)
		assert.Equal(t, "P1", created.ProductID)
		assert.Equal(t, 7, srv.stock(t, "P1"))

		saleID = created.ID
	})

	if saleID == "" {
		t.Fatal("Sale ID was not successfully generated in POST_CreateSale step.")
	}

	t.Run("GET_Sale", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/sales/"+saleID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var got sales.SaleResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, saleID, got.ID)
		assert.Equal(t, 3, got.Quantity)
	})

	t.Run("PUT_UpdateSale", func(t *testing.T) {
		w := srv.do(t, http.MethodPut, fmt.Sprintf("/sales/%s", saleID), map[string]any{
			"user_id":    "user123",
			"product_id": "P1",
			"quantity":   3,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var updated sales.SaleResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, saleID, updated.ID)
		assert.Equal(t, 4, srv.stock(t, "P1"), "update consumes stock again")
	})

	t.Run("DELETE_Sale", func(t *testing.T) {
		w := srv.do(t, http.MethodDelete, "/sales/"+saleID, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())

		w = srv.do(t, http.MethodGet, "/sales/"+saleID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSales_ErrorResponses(t *testing.T) {
	srv := initRoutesTests(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		substr string
	}{
		{
			name:   "insufficient stock",
			method: http.MethodPost,
			path:   "/sales",
			body:   map[string]any{"user_id": "user123", "product_id": "P1", "quantity": 20},
			status: http.StatusConflict,
			substr: "Keyboard",
		},
		{
			name:   "unknown user",
			method: http.MethodPost,
			path:   "/sales",
			body:   map[string]any{"user_id": "ghost", "product_id": "P1", "quantity": 1},
			status: http.StatusNotFound,
			substr: "user",
		},
		{
			name:   "unknown product",
			method: http.MethodPost,
			path:   "/sales",
			body:   map[string]any{"user_id": "user123", "product_id": "P404", "quantity": 1},
			status: http.StatusNotFound,
			substr: "product",
		},
		{
			name:   "zero quantity",
			method: http.MethodPost,
			path:   "/sales",
			body:   map[string]any{"user_id": "user123", "product_id": "P1", "quantity": 0},
			status: http.StatusBadRequest,
			substr: "quantity",
		},
		{
			name:   "missing product id",
			method: http.MethodPost,
			path:   "/sales",
			body:   map[string]any{"user_id": "user123", "quantity": 1},
			status: http.StatusBadRequest,
			substr: "invalid request payload",
		},
		{
			name:   "get unknown sale",
			method: http.MethodGet,
			path:   "/sales/none",
			status: http.StatusNotFound,
			substr: "sale",
		},
		{
			name:   "update unknown sale",
			method: http.MethodPut,
			path:   "/sales/none",
			body:   map[string]any{"user_id": "user123", "product_id": "P1", "quantity": 1},
			status: http.StatusNotFound,
			substr: "sale",
		},
		{
			name:   "delete unknown sale",
			method: http.MethodDelete,
			path:   "/sales/none",
			status: http.StatusNotFound,
			substr: "sale",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)

			var resp struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Contains(t, resp.Error, tt.substr)
		})
	}

	assert.Equal(t, 10, srv.stock(t, "P1"))
}

func TestPing(t *testing.T) {
	srv := initRoutesTests(t)

	w := srv.do(t, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/hatchbot-backend/internal/domain"
	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
	"github.com/yungbote/hatchbot-backend/internal/store"
)

func newOrderRouter(t *testing.T, orders *store.Orders) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewOrderHandler(logger.NewNop(), orders)
	r := gin.New()
	r.GET("/api/orders/:id", h.GetOrder)
	return r
}

func TestGetOrder(t *testing.T) {
	orders := store.NewOrders(logger.NewNop())
	orders.Put(types.Order{
		ID:           "NEO-20250601T093015-beef",
		CustomerName: "Jane Wanjiku",
		ItemName:     "Neo-616",
		ItemPrice:    66000,
	})
	r := newOrderRouter(t, orders)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders/NEO-20250601T093015-beef", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got types.Order
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "NEO-20250601T093015-beef" || got.CustomerName != "Jane Wanjiku" || got.ItemPrice != 66000 {
		t.Fatalf("order = %+v", got)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	r := newOrderRouter(t, store.NewOrders(logger.NewNop()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders/NEO-nope", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not_found") {
		t.Fatalf("body = %q, want the error envelope", w.Body.String())
	}
}

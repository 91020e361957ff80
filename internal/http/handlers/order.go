package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/hatchbot-backend/internal/http/response"
	"github.com/yungbote/hatchbot-backend/internal/platform/errs"
	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
	"github.com/yungbote/hatchbot-backend/internal/store"
)

// OrderHandler exposes recorded orders to the ops dashboard.
type OrderHandler struct {
	log    *logger.Logger
	orders *store.Orders
}

func NewOrderHandler(log *logger.Logger, orders *store.Orders) *OrderHandler {
	return &OrderHandler{log: log.With("handler", "OrderHandler"), orders: orders}
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID := strings.TrimSpace(c.Param("id"))
	order, ok := h.orders.Get(orderID)
	if !ok {
		response.RespondErr(c, errs.ErrNotFound)
		return
	}
	response.RespondOK(c, order)
}

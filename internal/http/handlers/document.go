package handlers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/hatchbot-backend/internal/http/response"
	"github.com/yungbote/hatchbot-backend/internal/platform/errs"
	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
	"github.com/yungbote/hatchbot-backend/internal/services"
	"github.com/yungbote/hatchbot-backend/internal/store"
)

// DocumentHandler serves invoice PNGs behind the links the dispatcher
// hands out. Cache misses re-render from the recorded order; a shared
// link can arrive as a burst of identical requests, so re-renders go
// through a singleflight group.
type DocumentHandler struct {
	log      *logger.Logger
	orders   *store.Orders
	invoices *store.Invoices
	renderer services.InvoiceService
	signer   *services.LinkSigner
	sf       singleflight.Group
}

func NewDocumentHandler(log *logger.Logger, orders *store.Orders, invoices *store.Invoices, renderer services.InvoiceService, signer *services.LinkSigner) *DocumentHandler {
	return &DocumentHandler{
		log:      log.With("handler", "DocumentHandler"),
		orders:   orders,
		invoices: invoices,
		renderer: renderer,
		signer:   signer,
	}
}

// GetDocument answers GET /documents/:order_id. Auth failures answer
// 404, same as unknown orders, so the route never confirms which order
// ids exist.
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	orderID := strings.TrimSpace(c.Param("order_id"))
	if orderID == "" {
		response.RespondErr(c, errs.ErrNotFound)
		return
	}

	if h.signer != nil {
		if err := h.signer.Verify(c.Query("token"), orderID); err != nil {
			h.log.Warn("Document link rejected", "order_id", orderID, "error", err)
			response.RespondErr(c, errs.ErrNotFound)
			return
		}
	}

	png, err := h.loadOrRender(orderID)
	if err != nil {
		h.log.Warn("Document unavailable", "order_id", orderID, "kind", errs.Kind(err), "error", err)
		response.RespondErr(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", "proforma-"+orderID+".png"))
	c.Data(200, "image/png", png)
}

func (h *DocumentHandler) loadOrRender(orderID string) ([]byte, error) {
	if png, ok := h.invoices.Get(orderID); ok {
		return png, nil
	}

	v, err, _ := h.sf.Do(orderID, func() (any, error) {
		if png, ok := h.invoices.Get(orderID); ok {
			return png, nil
		}
		order, ok := h.orders.Get(orderID)
		if !ok {
			return nil, errs.ErrNotFound
		}
		png, err := h.renderer.Render(order)
		if err != nil {
			return nil, fmt.Errorf("re-render invoice: %w", err)
		}
		h.invoices.Put(orderID, png)
		h.log.Info("Invoice re-rendered", "order_id", orderID, "bytes", len(png))
		return png, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

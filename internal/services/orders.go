package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/hatchbot-backend/internal/domain"
	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
	"github.com/yungbote/hatchbot-backend/internal/store"
)

const orderIDPrefix = "NEO"

type OrderService interface {
	Assemble(sess *types.Session) (types.Order, error)
}

type orderService struct {
	log    *logger.Logger
	orders *store.Orders
	now    func() time.Time
}

func NewOrderService(log *logger.Logger, orders *store.Orders) (OrderService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order store required")
	}
	return &orderService{
		log:    log.With("service", "OrderService"),
		orders: orders,
		now:    time.Now,
	}, nil
}

// Assemble snapshots a completed checkout into an immutable Order and
// records it. The dialogue guard has already verified the fields; the
// re-check here turns a broken caller into an error instead of a bad
// order.
func (os *orderService) Assemble(sess *types.Session) (types.Order, error) {
	if sess == nil {
		return types.Order{}, fmt.Errorf("session required")
	}
	if !sess.CheckoutComplete() {
		return types.Order{}, fmt.Errorf("order incomplete: item=%v zone=%q name=%q phone=%q",
			sess.LastViewedItem != nil, sess.LastDeliveryZone, sess.CustomerName, sess.CustomerPhone)
	}

	now := os.now().UTC()
	item := *sess.LastViewedItem

	order := types.Order{
		ID:            newOrderID(now),
		CustomerID:    sess.CustomerID,
		CustomerName:  sess.CustomerName,
		CustomerPhone: sess.CustomerPhone,
		DeliveryZone:  sess.LastDeliveryZone,
		EtaLabel:      sess.LastEtaLabel,
		ItemName:      item.Name,
		ItemCategory:  item.Category,
		ItemCapacity:  item.Capacity,
		ItemPrice:     item.Price,
		CreatedAt:     now,
	}

	os.orders.Put(order)
	os.log.Info("Order assembled",
		"order_id", order.ID,
		"customer_id", order.CustomerID,
		"item", order.ItemName,
		"zone", order.DeliveryZone,
	)
	return order, nil
}

// newOrderID stamps orders to the second, with a short random suffix so
// two confirmations inside the same second cannot share an ID.
func newOrderID(t time.Time) string {
	u := uuid.New()
	return fmt.Sprintf("%s-%s-%x", orderIDPrefix, t.UTC().Format("20060102T150405"), u[:2])
}

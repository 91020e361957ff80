package store

import (
	"sync"

	types "github.com/yungbote/hatchbot-backend/internal/domain"
	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
)

// Orders is the process-lifetime record of placed orders. Records are
// immutable once stored.
type Orders struct {
	log *logger.Logger

	mu   sync.RWMutex
	byID map[string]types.Order
}

func NewOrders(log *logger.Logger) *Orders {
	return &Orders{
		log:  log.With("component", "Orders"),
		byID: make(map[string]types.Order),
	}
}

// Put stores a placed order under its ID.
func (o *Orders) Put(order types.Order) {
	o.mu.Lock()
	o.byID[order.ID] = order
	o.mu.Unlock()
	o.log.Info("Order recorded", "order_id", order.ID, "customer_id", order.CustomerID)
}

// Get looks an order up by ID.
func (o *Orders) Get(orderID string) (types.Order, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	order, ok := o.byID[orderID]
	return order, ok
}

// Count reports how many orders have been placed.
func (o *Orders) Count() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.byID)
}

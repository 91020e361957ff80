package store

import (
	"sync"
	"time"

	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
)

// DefaultInvoiceTTL is how long a rendered invoice stays servable
// before the document endpoint has to re-render it.
const DefaultInvoiceTTL = 24 * time.Hour

type cachedInvoice struct {
	png       []byte
	expiresAt time.Time
}

// Invoices caches rendered invoice PNGs by order ID with a TTL.
// Expired entries are swept lazily on writes; there is no background
// goroutine to manage.
type Invoices struct {
	log *logger.Logger
	ttl time.Duration
	now func() time.Time

	mu   sync.Mutex
	byID map[string]cachedInvoice
}

func NewInvoices(log *logger.Logger, ttl time.Duration) *Invoices {
	if ttl <= 0 {
		ttl = DefaultInvoiceTTL
	}
	return &Invoices{
		log:  log.With("component", "Invoices"),
		ttl:  ttl,
		now:  time.Now,
		byID: make(map[string]cachedInvoice),
	}
}

// Put caches a rendered invoice and sweeps anything already expired.
func (c *Invoices) Put(orderID string, png []byte) {
	now := c.now()
	c.mu.Lock()
	for id, entry := range c.byID {
		if now.After(entry.expiresAt) {
			delete(c.byID, id)
		}
	}
	c.byID[orderID] = cachedInvoice{png: png, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()
	c.log.Debug("Invoice cached", "order_id", orderID, "bytes", len(png))
}

// Get returns the cached PNG if it is still fresh.
func (c *Invoices) Get(orderID string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.byID[orderID]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.byID, orderID)
		return nil, false
	}
	return entry.png, true
}

package store

import (
	"testing"
	"time"

	types "github.com/yungbote/hatchbot-backend/internal/domain"
	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
)

func TestOrdersPutGet(t *testing.T) {
	o := NewOrders(logger.NewNop())

	order := types.Order{ID: "NEO-20250101T090000-ab12", CustomerID: "254700000001"}
	o.Put(order)

	got, ok := o.Get(order.ID)
	if !ok {
		t.Fatalf("Get(%q) missed", order.ID)
	}
	if got.CustomerID != order.CustomerID {
		t.Fatalf("CustomerID = %q, want %q", got.CustomerID, order.CustomerID)
	}
	if _, ok := o.Get("NEO-nope"); ok {
		t.Fatalf("Get on unknown ID should miss")
	}
	if o.Count() != 1 {
		t.Fatalf("Count = %d, want 1", o.Count())
	}
}

func TestInvoiceCacheTTL(t *testing.T) {
	c := NewInvoices(logger.NewNop(), time.Minute)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	c.now = func() time.Time { return now }

	c.Put("NEO-a", []byte("png-a"))

	if got, ok := c.Get("NEO-a"); !ok || string(got) != "png-a" {
		t.Fatalf("fresh entry should hit, got ok=%v", ok)
	}

	now = base.Add(59 * time.Second)
	if _, ok := c.Get("NEO-a"); !ok {
		t.Fatalf("entry inside TTL should still hit")
	}

	now = base.Add(61 * time.Second)
	if _, ok := c.Get("NEO-a"); ok {
		t.Fatalf("entry past TTL should miss")
	}
}

func TestInvoiceCacheSweepOnPut(t *testing.T) {
	c := NewInvoices(logger.NewNop(), time.Minute)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	c.now = func() time.Time { return now }

	c.Put("NEO-old", []byte("png-old"))

	now = base.Add(2 * time.Minute)
	c.Put("NEO-new", []byte("png-new"))

	c.mu.Lock()
	_, oldKept := c.byID["NEO-old"]
	_, newKept := c.byID["NEO-new"]
	c.mu.Unlock()

	if oldKept {
		t.Fatalf("expired entry should be swept on Put")
	}
	if !newKept {
		t.Fatalf("fresh entry missing after Put")
	}
}

func TestInvoiceCacheDefaultTTL(t *testing.T) {
	c := NewInvoices(logger.NewNop(), 0)
	if c.ttl != DefaultInvoiceTTL {
		t.Fatalf("ttl = %v, want %v", c.ttl, DefaultInvoiceTTL)
	}
}

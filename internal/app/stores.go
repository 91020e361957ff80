package app

import (
	"fmt"

	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
	"github.com/yungbote/hatchbot-backend/internal/store"
)

type Stores struct {
	Catalog  *store.Catalog
	Zones    *store.Zones
	Sessions *store.Sessions
	Orders   *store.Orders
	Invoices *store.Invoices
}

func wireStores(log *logger.Logger, cfg Config) (Stores, error) {
	log.Info("Wiring stores...")

	catalog, err := store.LoadCatalog(log)
	if err != nil {
		return Stores{}, fmt.Errorf("load catalog: %w", err)
	}
	zones, err := store.LoadZones(log)
	if err != nil {
		return Stores{}, fmt.Errorf("load zones: %w", err)
	}

	return Stores{
		Catalog:  catalog,
		Zones:    zones,
		Sessions: store.NewSessions(log),
		Orders:   store.NewOrders(log),
		Invoices: store.NewInvoices(log, cfg.InvoiceCacheTTL),
	}, nil
}

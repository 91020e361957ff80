package app

import (
	"fmt"

	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
	"github.com/yungbote/hatchbot-backend/internal/services"
)

type Services struct {
	Order    services.OrderService
	Dialog   services.DialogService
	Invoice  services.InvoiceService
	Dispatch services.DispatchService
	Signer   *services.LinkSigner
}

func wireServices(log *logger.Logger, cfg Config, stores Stores, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	orderService, err := services.NewOrderService(log, stores.Orders)
	if err != nil {
		return Services{}, fmt.Errorf("init order service: %w", err)
	}

	dialogService, err := services.NewDialogService(log, stores.Catalog, stores.Zones, orderService, services.DialogConfig{
		PageSize:            cfg.PageSize,
		ZoneShortcutEnabled: cfg.ZoneShortcutEnabled,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init dialog service: %w", err)
	}

	invoiceService, err := services.NewInvoiceService(log)
	if err != nil {
		return Services{}, fmt.Errorf("init invoice service: %w", err)
	}

	signer := services.NewLinkSigner(cfg.LinkSigningSecret, cfg.LinkTTL)
	if signer == nil {
		log.Warn("LINK_SIGNING_SECRET not set, invoice links go out unsigned")
	}

	dispatchService, err := services.NewDispatchService(log, clients.WhatsApp, clients.Email, invoiceService, stores.Invoices, signer, services.DispatchConfig{
		PublicBaseURL: cfg.PublicBaseURL,
		StaffEmail:    cfg.StaffEmail,
		Timeout:       cfg.DispatchTimeout,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init dispatch service: %w", err)
	}

	return Services{
		Order:    orderService,
		Dialog:   dialogService,
		Invoice:  invoiceService,
		Dispatch: dispatchService,
		Signer:   signer,
	}, nil
}

package app

import (
	transport "github.com/yungbote/hatchbot-backend/internal/http"
	httpH "github.com/yungbote/hatchbot-backend/internal/http/handlers"
	httpMW "github.com/yungbote/hatchbot-backend/internal/http/middleware"
	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Webhook  *httpH.WebhookHandler
	Document *httpH.DocumentHandler
	Order    *httpH.OrderHandler
}

type Middleware struct {
	WebhookSignature *httpMW.WebhookSignature
}

func wireHandlers(log *logger.Logger, cfg Config, stores Stores, clients Clients, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Webhook:  httpH.NewWebhookHandler(log, stores.Sessions, services.Dialog, services.Dispatch, clients.WhatsApp, cfg.VerifyToken),
		Document: httpH.NewDocumentHandler(log, stores.Orders, stores.Invoices, services.Invoice, services.Signer),
		Order:    httpH.NewOrderHandler(log, stores.Orders),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	mw := Middleware{
		WebhookSignature: httpMW.NewWebhookSignature(log, cfg.AppSecret),
	}
	if mw.WebhookSignature == nil {
		log.Warn("APP_SECRET not set, webhook signatures are not checked")
	}
	return mw
}

func wireServer(log *logger.Logger, cfg Config, stores Stores, clients Clients, services Services) *transport.Server {
	handlers := wireHandlers(log, cfg, stores, clients, services)
	middleware := wireMiddleware(log, cfg)

	return transport.NewServer(":"+cfg.Port, transport.RouterConfig{
		Log:              log,
		CORSOrigins:      cfg.CORSOrigins,
		HealthHandler:    handlers.Health,
		WebhookHandler:   handlers.Webhook,
		DocumentHandler:  handlers.Document,
		OrderHandler:     handlers.Order,
		WebhookSignature: middleware.WebhookSignature,
	})
}

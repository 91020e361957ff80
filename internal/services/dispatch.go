package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/hatchbot-backend/internal/clients/whatsapp"
	types "github.com/yungbote/hatchbot-backend/internal/domain"
	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
	"github.com/yungbote/hatchbot-backend/internal/platform/sendgrid"
	"github.com/yungbote/hatchbot-backend/internal/store"
)

// DefaultDispatchTimeout bounds the whole post-confirmation fan-out.
const DefaultDispatchTimeout = 60 * time.Second

type DispatchService interface {
	Dispatch(ctx context.Context, order types.Order)
}

type DispatchConfig struct {
	PublicBaseURL string
	StaffEmail    string
	Timeout       time.Duration
}

type dispatchService struct {
	log      *logger.Logger
	channel  whatsapp.Client
	email    sendgrid.Client
	renderer InvoiceService
	cache    *store.Invoices
	signer   *LinkSigner
	cfg      DispatchConfig
}

// NewDispatchService wires the post-confirmation fan-out. email may be
// nil (staff notification off) and signer may be nil (bare links).
func NewDispatchService(log *logger.Logger, channel whatsapp.Client, email sendgrid.Client, renderer InvoiceService, cache *store.Invoices, signer *LinkSigner, cfg DispatchConfig) (DispatchService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if channel == nil {
		return nil, fmt.Errorf("whatsapp client required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("invoice renderer required")
	}
	if cache == nil {
		return nil, fmt.Errorf("invoice cache required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultDispatchTimeout
	}
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	cfg.StaffEmail = strings.TrimSpace(cfg.StaffEmail)

	return &dispatchService{
		log:      log.With("service", "DispatchService"),
		channel:  channel,
		email:    email,
		renderer: renderer,
		cache:    cache,
		signer:   signer,
		cfg:      cfg,
	}, nil
}

// Dispatch runs after an order is confirmed, outside the session lock.
// The order already exists; every failure here is logged and swallowed,
// and each delivery attempt falls back to a cheaper one.
func (ds *dispatchService) Dispatch(ctx context.Context, order types.Order) {
	ctx, cancel := context.WithTimeout(ctx, ds.cfg.Timeout)
	defer cancel()

	png, err := ds.renderer.Render(order)
	if err != nil {
		ds.log.Error("Invoice render failed", "order_id", order.ID, "error", err)
		png = nil
	} else {
		ds.cache.Put(order.ID, png)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ds.notifyStaff(gctx, order, png)
		return nil
	})
	g.Go(func() error {
		ds.deliverToCustomer(gctx, order, png)
		return nil
	})
	_ = g.Wait()

	ds.log.Info("Dispatch complete", "order_id", order.ID)
}

func (ds *dispatchService) notifyStaff(ctx context.Context, order types.Order, png []byte) {
	if ds.email == nil || ds.cfg.StaffEmail == "" {
		ds.log.Debug("Staff notification skipped", "order_id", order.ID)
		return
	}

	req := sendgrid.SendEmailRequest{
		To:      []sendgrid.EmailAddress{{Email: ds.cfg.StaffEmail}},
		Subject: fmt.Sprintf("New order %s: %s", order.ID, order.ItemName),
		Text:    staffEmailBody(order),
	}
	if len(png) > 0 {
		req.Attachments = []sendgrid.Attachment{{
			Filename: invoiceFilename(order.ID),
			MIMEType: "image/png",
			Content:  png,
		}}
	}

	if _, err := ds.email.Send(ctx, req); err != nil {
		ds.log.Warn("Staff notification failed", "order_id", order.ID, "error", err)
		return
	}
	ds.log.Info("Staff notified", "order_id", order.ID, "to", ds.cfg.StaffEmail)
}

// deliverToCustomer walks the fallback cascade: uploaded document,
// then document by link, then a plain text link.
func (ds *dispatchService) deliverToCustomer(ctx context.Context, order types.Order, png []byte) {
	caption := fmt.Sprintf("Pro forma invoice %s", order.ID)
	filename := invoiceFilename(order.ID)

	if len(png) > 0 {
		media, err := ds.channel.UploadMedia(ctx, filename, "image/png", png)
		if err == nil {
			if _, err := ds.channel.SendDocumentByID(ctx, order.CustomerID, media.ID, filename, caption); err == nil {
				ds.log.Info("Invoice delivered", "order_id", order.ID, "via", "upload")
				return
			} else {
				ds.log.Warn("Document send by id failed", "order_id", order.ID, "error", err)
			}
		} else {
			ds.log.Warn("Media upload failed", "order_id", order.ID, "error", err)
		}
	}

	link := ds.documentLink(order.ID)
	if link != "" {
		if _, err := ds.channel.SendDocumentByLink(ctx, order.CustomerID, link, filename, caption); err == nil {
			ds.log.Info("Invoice delivered", "order_id", order.ID, "via", "link")
			return
		} else {
			ds.log.Warn("Document send by link failed", "order_id", order.ID, "error", err)
		}

		text := fmt.Sprintf("Your pro forma invoice for order %s: %s", order.ID, link)
		if _, err := ds.channel.SendText(ctx, order.CustomerID, text); err == nil {
			ds.log.Info("Invoice delivered", "order_id", order.ID, "via", "text")
			return
		} else {
			ds.log.Error("Invoice text fallback failed", "order_id", order.ID, "error", err)
		}
		return
	}

	ds.log.Error("Invoice undeliverable: no rendered document and no public base URL", "order_id", order.ID)
}

func (ds *dispatchService) documentLink(orderID string) string {
	if ds.cfg.PublicBaseURL == "" {
		return ""
	}
	link := fmt.Sprintf("%s/documents/%s", ds.cfg.PublicBaseURL, orderID)
	if ds.signer != nil {
		token, err := ds.signer.Sign(orderID)
		if err != nil {
			ds.log.Warn("Link signing failed, sending bare link", "order_id", orderID, "error", err)
			return link
		}
		link += "?token=" + token
	}
	return link
}

func invoiceFilename(orderID string) string {
	return fmt.Sprintf("proforma-%s.png", orderID)
}

func staffEmailBody(order types.Order) string {
	return fmt.Sprintf(
		"New order placed via the WhatsApp assistant.\n\n"+
			"Order:    %s\n"+
			"Item:     %s (%d %s)\n"+
			"Price:    %s\n"+
			"Customer: %s\n"+
			"Phone:    %s\n"+
			"County:   %s\n"+
			"Delivery: %s\n"+
			"Placed:   %s\n",
		order.ID,
		order.ItemName, order.ItemCapacity, categoryUnit(order.ItemCategory),
		types.FormatKSh(order.ItemPrice),
		order.CustomerName,
		order.CustomerPhone,
		titleCase(order.DeliveryZone),
		order.EtaLabel,
		order.CreatedAt.In(eatZone).Format("02 Jan 2006, 15:04 MST"),
	)
}

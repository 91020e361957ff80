package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/hatchbot-backend/internal/clients/whatsapp"
	types "github.com/yungbote/hatchbot-backend/internal/domain"
	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
	"github.com/yungbote/hatchbot-backend/internal/services"
	"github.com/yungbote/hatchbot-backend/internal/store"
)

// WebhookHandler terminates the WhatsApp Cloud API webhook: the GET
// subscription handshake and the POST message deliveries that drive
// the dialogue.
type WebhookHandler struct {
	log         *logger.Logger
	sessions    *store.Sessions
	dialog      services.DialogService
	dispatch    services.DispatchService
	channel     whatsapp.Client
	verifyToken string
}

func NewWebhookHandler(log *logger.Logger, sessions *store.Sessions, dialog services.DialogService, dispatch services.DispatchService, channel whatsapp.Client, verifyToken string) *WebhookHandler {
	return &WebhookHandler{
		log:         log.With("handler", "WebhookHandler"),
		sessions:    sessions,
		dialog:      dialog,
		dispatch:    dispatch,
		channel:     channel,
		verifyToken: strings.TrimSpace(verifyToken),
	}
}

// VerifySubscription answers Meta's one-time GET handshake.
func (h *WebhookHandler) VerifySubscription(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && h.verifyToken != "" && token == h.verifyToken {
		h.log.Info("Webhook subscription verified")
		c.String(http.StatusOK, challenge)
		return
	}
	h.log.Warn("Webhook verification rejected", "mode", mode)
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"error": gin.H{"message": "verification failed", "code": "forbidden"},
	})
}

// Receive handles one webhook delivery. Meta disables webhooks that
// keep failing, so every path out of here acks 200; failures are
// logged, never surfaced.
func (h *WebhookHandler) Receive(c *gin.Context) {
	ack := func() { c.JSON(http.StatusOK, gin.H{"status": "received"}) }

	var payload whatsapp.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.log.Warn("Webhook payload unparseable", "error", err)
		ack()
		return
	}

	msg, ok := whatsapp.FirstInbound(payload)
	if !ok {
		// Status updates and other non-message events.
		ack()
		return
	}

	h.handleTurn(c.Request.Context(), msg)
	ack()
}

func (h *WebhookHandler) handleTurn(ctx context.Context, msg whatsapp.Inbound) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("Turn panicked", "customer_id", msg.From, "panic", r)
		}
	}()

	var result services.DialogResult
	h.sessions.With(msg.From, func(sess *types.Session) {
		result = h.dialog.Handle(msg.Text, sess)
	})

	h.send(ctx, msg.From, result.Reply)

	if result.Order != nil {
		// The fan-out outlives this request and carries its own timeout.
		go h.dispatch.Dispatch(context.Background(), *result.Order)
	}
}

func (h *WebhookHandler) send(ctx context.Context, to string, reply types.Reply) {
	if reply.Media != nil && reply.Media.Kind == types.MediaImage {
		if _, err := h.channel.SendImage(ctx, to, reply.Media.URL, reply.Media.Caption); err != nil {
			h.log.Warn("Image send failed", "to", to, "error", err)
		}
	}

	if reply.Text == "" {
		return
	}
	if len(reply.Options) > 0 {
		buttons := make([]whatsapp.Button, 0, len(reply.Options))
		for _, label := range reply.Options {
			buttons = append(buttons, whatsapp.Button{Title: label})
		}
		if _, err := h.channel.SendButtons(ctx, to, reply.Text, buttons); err != nil {
			h.log.Warn("Button send failed", "to", to, "error", err)
		}
		return
	}
	if _, err := h.channel.SendText(ctx, to, reply.Text); err != nil {
		h.log.Warn("Text send failed", "to", to, "error", err)
	}
}

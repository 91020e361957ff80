package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
)

const signatureHeader = "X-Hub-Signature-256"

// WebhookSignature checks Meta's HMAC signature on webhook deliveries.
// A nil *WebhookSignature means no app secret is configured and the
// router skips the check entirely.
type WebhookSignature struct {
	log    *logger.Logger
	secret []byte
}

func NewWebhookSignature(log *logger.Logger, secret string) *WebhookSignature {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil
	}
	return &WebhookSignature{
		log:    log.With("Middleware", "WebhookSignature"),
		secret: []byte(secret),
	}
}

func (ws *WebhookSignature) Verify() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			ws.log.Warn("Webhook body read failed", "error", err)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": gin.H{"message": "unreadable body", "code": "bad_request"},
			})
			return
		}
		// The handler still needs to bind the payload.
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		header := strings.TrimSpace(c.GetHeader(signatureHeader))
		provided, ok := strings.CutPrefix(header, "sha256=")
		if !ok {
			ws.log.Warn("Webhook delivery missing signature")
			abortUnauthorized(c)
			return
		}
		providedMAC, err := hex.DecodeString(provided)
		if err != nil {
			ws.log.Warn("Webhook signature not hex", "error", err)
			abortUnauthorized(c)
			return
		}

		mac := hmac.New(sha256.New, ws.secret)
		mac.Write(body)
		if !hmac.Equal(providedMAC, mac.Sum(nil)) {
			ws.log.Warn("Webhook signature mismatch")
			abortUnauthorized(c)
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"message": "invalid signature", "code": "unauthorized"},
	})
}

package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
)

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func newSignatureRouter(t *testing.T, secret string) (*gin.Engine, *[]byte) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ws := NewWebhookSignature(logger.NewNop(), secret)
	if ws == nil {
		t.Fatalf("middleware not built for secret %q", secret)
	}

	var seen []byte
	r := gin.New()
	r.POST("/webhook", ws.Verify(), func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			t.Errorf("handler could not re-read body: %v", err)
		}
		seen = body
		c.Status(http.StatusOK)
	})
	return r, &seen
}

func TestWebhookSignatureAccepts(t *testing.T) {
	body := []byte(`{"object":"whatsapp_business_account"}`)
	r, seen := newSignatureRouter(t, "app-secret")

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set(signatureHeader, signBody("app-secret", body))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !bytes.Equal(*seen, body) {
		t.Fatalf("handler saw %q, want %q", *seen, body)
	}
}

func TestWebhookSignatureRejects(t *testing.T) {
	body := []byte(`{"object":"whatsapp_business_account"}`)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong secret", header: signBody("other-secret", body)},
		{name: "no prefix", header: hex.EncodeToString([]byte("junk"))},
		{name: "not hex", header: "sha256=zzzz"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newSignatureRouter(t, "app-secret")
			req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
			if tc.header != "" {
				req.Header.Set(signatureHeader, tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestWebhookSignatureDisabled(t *testing.T) {
	if ws := NewWebhookSignature(logger.NewNop(), "  "); ws != nil {
		t.Fatalf("blank secret should disable the middleware")
	}
}

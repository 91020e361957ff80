package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/hatchbot-backend/internal/domain"
	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
	"github.com/yungbote/hatchbot-backend/internal/services"
	"github.com/yungbote/hatchbot-backend/internal/store"
)

type stubRenderer struct {
	calls int
	png   []byte
	err   error
}

func (s *stubRenderer) Render(types.Order) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.png, nil
}

type documentRig struct {
	router   *gin.Engine
	orders   *store.Orders
	invoices *store.Invoices
	renderer *stubRenderer
}

func newDocumentRig(t *testing.T, signer *services.LinkSigner) *documentRig {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rig := &documentRig{
		orders:   store.NewOrders(logger.NewNop()),
		invoices: store.NewInvoices(logger.NewNop(), time.Hour),
		renderer: &stubRenderer{png: []byte("rendered-png")},
	}
	h := NewDocumentHandler(logger.NewNop(), rig.orders, rig.invoices, rig.renderer, signer)
	rig.router = gin.New()
	rig.router.GET("/documents/:order_id", h.GetDocument)
	return rig
}

func (rig *documentRig) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	rig.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestGetDocumentServesCachedInvoice(t *testing.T) {
	rig := newDocumentRig(t, nil)
	rig.invoices.Put("NEO-20250601T093015-beef", []byte("cached-png"))

	w := rig.get("/documents/NEO-20250601T093015-beef")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
	if w.Body.String() != "cached-png" {
		t.Fatalf("body = %q, want the cached bytes", w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "proforma-NEO-20250601T093015-beef.png") {
		t.Fatalf("content disposition = %q", cd)
	}
	if rig.renderer.calls != 0 {
		t.Fatalf("renderer ran %d times on a cache hit", rig.renderer.calls)
	}
}

func TestGetDocumentReRendersOnCacheMiss(t *testing.T) {
	rig := newDocumentRig(t, nil)
	rig.orders.Put(types.Order{ID: "NEO-1", CustomerName: "Jane Wanjiku"})

	w := rig.get("/documents/NEO-1")
	if w.Code != http.StatusOK || w.Body.String() != "rendered-png" {
		t.Fatalf("status = %d, body = %q", w.Code, w.Body.String())
	}
	if rig.renderer.calls != 1 {
		t.Fatalf("renderer calls = %d, want 1", rig.renderer.calls)
	}

	// The re-render lands back in the cache.
	rig.get("/documents/NEO-1")
	if rig.renderer.calls != 1 {
		t.Fatalf("renderer calls = %d after second request, want still 1", rig.renderer.calls)
	}
}

func TestGetDocumentUnknownOrder(t *testing.T) {
	rig := newDocumentRig(t, nil)

	w := rig.get("/documents/NEO-nope")

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not_found") {
		t.Fatalf("body = %q, want the error envelope", w.Body.String())
	}
	if rig.renderer.calls != 0 {
		t.Fatalf("renderer ran for an unknown order")
	}
}

func TestGetDocumentRenderFailure(t *testing.T) {
	rig := newDocumentRig(t, nil)
	rig.orders.Put(types.Order{ID: "NEO-2"})
	rig.renderer.err = errors.New("font missing")

	w := rig.get("/documents/NEO-2")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	// The response never leaks the renderer error.
	if strings.Contains(w.Body.String(), "font missing") {
		t.Fatalf("body leaked internals: %q", w.Body.String())
	}
}

func TestGetDocumentSignedLinks(t *testing.T) {
	signer := services.NewLinkSigner("doc-secret", time.Hour)
	rig := newDocumentRig(t, signer)
	rig.invoices.Put("NEO-3", []byte("cached-png"))

	good, err := signer.Sign("NEO-3")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	other, err := signer.Sign("NEO-4")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tests := []struct {
		name string
		path string
		want int
	}{
		{"valid token", "/documents/NEO-3?token=" + good, http.StatusOK},
		{"missing token", "/documents/NEO-3", http.StatusNotFound},
		{"garbage token", "/documents/NEO-3?token=abc.def.ghi", http.StatusNotFound},
		{"token for another order", "/documents/NEO-3?token=" + other, http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := rig.get(tc.path)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestGetDocumentWithoutSignerSkipsTokenCheck(t *testing.T) {
	rig := newDocumentRig(t, nil)
	rig.invoices.Put("NEO-5", []byte("cached-png"))

	if w := rig.get("/documents/NEO-5"); w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with signing disabled", w.Code)
	}
}

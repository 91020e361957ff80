package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/hatchbot-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// AttachTraceContext stamps every request with correlation ids.
// Caller-provided headers win, then the live otel span, then fresh
// uuids; the chosen ids are echoed back on the response so a webhook
// delivery can be matched to its log lines from either side.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := ctxutil.Trace{
			TraceID:   headerOr(c, headerTraceID, ""),
			RequestID: headerOr(c, headerRequestID, uuid.NewString()),
		}
		if t.TraceID == "" {
			if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
				t.TraceID = sc.TraceID().String()
			} else {
				t.TraceID = uuid.NewString()
			}
		}

		c.Request = c.Request.WithContext(ctxutil.WithTrace(c.Request.Context(), t))
		c.Writer.Header().Set(headerTraceID, t.TraceID)
		c.Writer.Header().Set(headerRequestID, t.RequestID)
		c.Next()
	}
}

func headerOr(c *gin.Context, name, fallback string) string {
	if v := strings.TrimSpace(c.GetHeader(name)); v != "" {
		return v
	}
	return fallback
}

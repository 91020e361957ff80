package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/hatchbot-backend/internal/http/handlers"
	httpMW "github.com/yungbote/hatchbot-backend/internal/http/middleware"
	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	CORSOrigins []string

	HealthHandler   *httpH.HealthHandler
	WebhookHandler  *httpH.WebhookHandler
	DocumentHandler *httpH.DocumentHandler
	OrderHandler    *httpH.OrderHandler

	WebhookSignature *httpMW.WebhookSignature
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("hatchbot"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Webhook endpoints live at the root; Meta's app config points here.
	if cfg.WebhookHandler != nil {
		r.GET("/webhook", cfg.WebhookHandler.VerifySubscription)
		if cfg.WebhookSignature != nil {
			r.POST("/webhook", cfg.WebhookSignature.Verify(), cfg.WebhookHandler.Receive)
		} else {
			r.POST("/webhook", cfg.WebhookHandler.Receive)
		}
	}

	// Invoice links handed to customers resolve here.
	if cfg.DocumentHandler != nil {
		r.GET("/documents/:order_id", cfg.DocumentHandler.GetDocument)
	}

	api := r.Group("/api")
	{
		if cfg.OrderHandler != nil {
			api.GET("/orders/:id", cfg.OrderHandler.GetOrder)
		}
	}

	return r
}

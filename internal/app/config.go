package app

import (
	"time"

	"github.com/yungbote/hatchbot-backend/internal/platform/envutil"
	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
	"github.com/yungbote/hatchbot-backend/internal/services"
	"github.com/yungbote/hatchbot-backend/internal/store"
)

// Config is the app-level knob set. Client credentials stay out of
// here; each client reads its own environment.
type Config struct {
	Port        string
	VerifyToken string
	AppSecret   string

	PublicBaseURL     string
	StaffEmail        string
	LinkSigningSecret string
	LinkTTL           time.Duration

	InvoiceCacheTTL time.Duration
	DispatchTimeout time.Duration

	PageSize            int
	ZoneShortcutEnabled bool

	CORSOrigins []string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		VerifyToken: envutil.String("VERIFY_TOKEN", ""),
		AppSecret:   envutil.String("APP_SECRET", ""),

		PublicBaseURL:     envutil.String("PUBLIC_BASE_URL", ""),
		StaffEmail:        envutil.String("STAFF_EMAIL", ""),
		LinkSigningSecret: envutil.String("LINK_SIGNING_SECRET", ""),
		LinkTTL:           envutil.Duration("LINK_TTL", services.DefaultLinkTTL),

		InvoiceCacheTTL: envutil.Duration("INVOICE_CACHE_TTL", store.DefaultInvoiceTTL),
		DispatchTimeout: envutil.Duration("DISPATCH_TIMEOUT", services.DefaultDispatchTimeout),

		PageSize:            envutil.Int("PAGE_SIZE", 6),
		ZoneShortcutEnabled: envutil.Bool("ZONE_SHORTCUT_ENABLED", false),

		CORSOrigins: envutil.List("CORS_ALLOWED_ORIGINS"),
	}

	log.Info("Config loaded",
		"port", cfg.Port,
		"webhook_verification", cfg.VerifyToken != "",
		"signature_check", cfg.AppSecret != "",
		"public_base_url", cfg.PublicBaseURL,
		"staff_email", cfg.StaffEmail != "",
		"signed_links", cfg.LinkSigningSecret != "",
		"invoice_cache_ttl", cfg.InvoiceCacheTTL,
		"page_size", cfg.PageSize,
		"zone_shortcut", cfg.ZoneShortcutEnabled,
	)
	return cfg
}

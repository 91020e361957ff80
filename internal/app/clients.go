package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/hatchbot-backend/internal/clients/whatsapp"
	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
	"github.com/yungbote/hatchbot-backend/internal/platform/sendgrid"
)

type Clients struct {
	WhatsApp whatsapp.Client
	Email    sendgrid.Client
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	// WhatsApp is the product; no degraded mode without it.
	wa, err := whatsapp.NewFromEnv(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init whatsapp client: %w", err)
	}

	// Email is the staff side channel; absent key means it stays off.
	var email sendgrid.Client
	if strings.TrimSpace(os.Getenv("SENDGRID_API_KEY")) != "" {
		sg, err := sendgrid.NewFromEnv(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init sendgrid client: %w", err)
		}
		email = sg
	} else {
		log.Warn("SENDGRID_API_KEY not set, staff notifications disabled")
	}

	return Clients{WhatsApp: wa, Email: email}, nil
}

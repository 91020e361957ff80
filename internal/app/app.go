package app

import (
	"context"
	"fmt"
	"os"

	transport "github.com/yungbote/hatchbot-backend/internal/http"
	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Stores   Stores
	Clients  Clients
	Services Services
	Server   *transport.Server
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	storeset, err := wireStores(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	clientset, err := wireClients(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	serviceset, err := wireServices(log, cfg, storeset, clientset)
	if err != nil {
		log.Sync()
		return nil, err
	}

	server := wireServer(log, cfg, storeset, clientset, serviceset)

	return &App{
		Log:      log,
		Cfg:      cfg,
		Stores:   storeset,
		Clients:  clientset,
		Services: serviceset,
		Server:   server,
	}, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Server listening", "port", a.Cfg.Port)
	return a.Server.Run(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

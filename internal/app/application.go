// Package app wires the components together and owns startup and shutdown
// ordering.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"pollroom/internal/api"
	"pollroom/internal/config"
	"pollroom/internal/gateway"
	"pollroom/internal/session"
	"pollroom/internal/ws"
)

// Application coordinates all system components.
type Application struct {
	config     *config.Config
	store      *session.Store
	registry   *ws.Registry
	gateway    *gateway.Gateway
	apiServer  *api.Server
	httpServer *http.Server
}

// NewApplication builds the component graph in dependency order:
// Store -> Registry -> Gateway -> WebSocket handler -> API -> HTTP.
func NewApplication(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store := session.NewStore()
	registry := ws.NewRegistry()
	gw := gateway.NewGateway(store, registry, cfg.Poll.MaxTimeLimitSeconds)
	wsHandler := ws.NewHandler(registry, gw, cfg.WebSocket)
	apiServer := api.NewServer(store, registry)

	mux := http.NewServeMux()
	mux.Handle("/api/", apiServer)
	mux.Handle("/health", apiServer)
	mux.HandleFunc("/ws", wsHandler.HandleWebSocket)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      mux,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return &Application{
		config:     cfg,
		store:      store,
		registry:   registry,
		gateway:    gw,
		apiServer:  apiServer,
		httpServer: httpServer,
	}, nil
}

// Start begins serving and returns once the listener is up.
func (app *Application) Start(ctx context.Context) error {
	log.Printf("Starting pollroom on %s", app.httpServer.Addr)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case err := <-serverErrCh:
		return err
	case <-time.After(100 * time.Millisecond):
		log.Printf("Pollroom started")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop shuts down in reverse order: HTTP listener first, then the poll
// timers. Session state is in-memory only and simply dropped.
func (app *Application) Stop(ctx context.Context) error {
	log.Printf("Shutting down pollroom")

	if err := app.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	app.gateway.Shutdown()

	log.Printf("Pollroom shutdown complete")
	return nil
}

// GetAddr returns the server address for external connections.
func (app *Application) GetAddr() string {
	return app.httpServer.Addr
}

package bot

import (
	"context"
	"fmt"
	"log"
	"net/http"
)

// HealthServer provides HTTP health endpoints for Kubernetes probes.
type HealthServer struct {
	bot    *Bot
	server *http.Server
	port   int
}

// NewHealthServer creates a new health server for the given bot.
func NewHealthServer(bot *Bot, port int) *HealthServer {
	return &HealthServer{
		bot:  bot,
		port: port,
	}
}

// Start begins serving health endpoints. This should be called in a goroutine.
func (h *HealthServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	// /healthz - liveness probe: checks if the bot is connected to Slack
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if h.bot.IsConnected() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("disconnected"))
		}
	})

	// /readyz - readiness probe: checks if the bot is ready to receive traffic
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		// Ready once the bot exists. Even while briefly disconnected it
		// still queues Socket Mode events.
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	h.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", h.port),
		Handler: mux,
	}

	log.Printf("tickbot: starting health server on :%d", h.port)

	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("tickbot: shutting down health server")
		return h.server.Shutdown(context.Background())
	case err := <-errCh:
		return fmt.Errorf("health server error: %w", err)
	}
}

// Package api exposes the conversation engine over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/orchestrator"
	logx "github.com/Chative-core-poc-v1/frontdesk/pkg/logger"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// TurnHandler answers one conversation turn.
type TurnHandler interface {
	HandleTurn(ctx context.Context, req *model.TurnRequest) (*orchestrator.Reply, error)
}

// Server serves the chat endpoint.
type Server struct {
	engine TurnHandler
	now    func() time.Time
}

func NewServer(engine TurnHandler) *Server {
	return &Server{engine: engine, now: time.Now}
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.chatHandler)
	mux.HandleFunc("GET /healthz", s.healthHandler)
	return mux
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logx.Info().Str("addr", addr).Msg("API server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logx.Info().Msg("API server shutting down")
	return srv.Shutdown(shutdownCtx)
}

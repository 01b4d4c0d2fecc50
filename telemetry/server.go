package telemetry

import (
	"context"
	"fmt"
	"net/http"
)

// Server owns a Hub and the HTTP listener that upgrades incoming
// connections at /ws.
type Server struct {
	Hub *Hub
	srv *http.Server
}

// NewServer constructs a Server with a fresh, not-yet-running Hub.
func NewServer() *Server {
	return &Server{Hub: NewHub()}
}

// Start runs the hub and begins serving on port until ctx is canceled.
func (s *Server) Start(ctx context.Context, port int) error {
	done := make(chan struct{})
	go s.Hub.Run(done)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ServeWS(s.Hub, w, r)
	})

	s.srv = &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		close(done)
		return s.srv.Close()
	case err := <-errCh:
		close(done)
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("telemetry server: %w", err)
	}
}

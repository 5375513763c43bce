package observer

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"chosenoffset.com/nightwood/internal/logger"
)

// Server exposes a Hub over HTTP: /ws streams frames, /frame returns the
// latest one, /health answers ok.
type Server struct {
	Hub  *Hub
	Addr string

	srv *http.Server
	ln  net.Listener
}

func NewServer(addr string, hub *Hub) *Server {
	return &Server{Hub: hub, Addr: addr}
}

// Handler returns the observer routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", s.Hub)
	mux.HandleFunc("/frame", enableCORS(s.handleFrame))
	mux.HandleFunc("/health", enableCORS(s.handleHealth))
	return mux
}

// Start listens on Addr and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.srv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	logger.Log.WithField("addr", ln.Addr().String()).Info("Observer feed listening")
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Error("observer server stopped")
		}
	}()
	return nil
}

// ListenAddr returns the bound address once started.
func (s *Server) ListenAddr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Shutdown closes clients and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Hub.Close()
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next(w, r)
	}
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	last := s.Hub.Last()
	if last == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(last)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

package web

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

//go:embed static/index.html
var indexHTML []byte

// Server serves the browser terminal. Every websocket gets its own
// `swapdesk tui` process and therefore its own swap session on the API.
type Server struct {
	addr      string
	apiAddr   string
	extraArgs []string
	log       *zap.Logger
	router    chi.Router
	httpSrv   *http.Server
	terminals atomic.Int64
}

// NewServer creates a web terminal server that points spawned terminals at
// apiAddr. extraArgs are appended to the child command line.
func NewServer(addr, apiAddr string, log *zap.Logger, extraArgs ...string) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	s := &Server{
		addr:      addr,
		apiAddr:   apiAddr,
		extraArgs: extraArgs,
		log:       log.Named("web"),
		router:    r,
	}

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Terminals reports how many browser terminals are attached.
func (s *Server) Terminals() int64 { return s.terminals.Load() }

func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe starts the web terminal server. It returns nil after Shutdown.
func (s *Server) ListenAndServe() error {
	s.log.Info("web terminal listening", zap.String("addr", s.addr), zap.String("api", s.apiAddr))
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

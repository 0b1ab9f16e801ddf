package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/BrunoViet/swapdesk/internal/ledger"
	"github.com/BrunoViet/swapdesk/internal/metrics"
	"github.com/BrunoViet/swapdesk/internal/store"
	"github.com/BrunoViet/swapdesk/internal/swap"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Options struct {
	Prices  swap.PriceFetcher
	Swap    swap.Config
	Seed    map[string]float64
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

type Server struct {
	store    *store.Store
	sessions *Sessions
	opts     Options
	metrics  *metrics.Metrics
	log      *zap.Logger
	router   chi.Router
	addr     string
	httpSrv  *http.Server
}

// New wires the session API onto st, which journals every confirmed swap.
func New(st *store.Store, addr string, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Seed == nil {
		opts.Seed = ledger.DefaultSeed()
	}
	if len(opts.Swap.Symbols) == 0 {
		opts.Swap = swap.DefaultConfig()
	}

	r := chi.NewRouter()
	s := &Server{
		store:    st,
		sessions: NewSessions(),
		opts:     opts,
		metrics:  opts.Metrics,
		log:      opts.Logger.Named("server"),
		router:   r,
		addr:     addr,
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/prices", s.getPrices)
		r.Get("/assets", s.listAssets)

		r.Post("/sessions", s.createSession)
		r.Get("/sessions", s.listSessions)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)

			r.Put("/source", s.selectSource)
			r.Put("/destination", s.selectDestination)
			r.Put("/amount", s.editAmount)
			r.Post("/flip", s.flip)
			r.Post("/max", s.setMax)
			r.Post("/validate", s.validate)
			r.Post("/submit", s.submit)
			r.Delete("/confirmation", s.dismissConfirmation)

			r.Get("/balances", s.getBalances)
			r.Get("/swaps", s.listSwaps)
			r.Get("/swaps/volume", s.swapVolume)
			r.Get("/swaps/{swapID}", s.getSwap)
		})
	})

	return s
}

func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("swapdesk server listening", zap.String("addr", ln.Addr().String()))
	s.httpSrv = &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	err := s.httpSrv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// newController builds an unloaded session wired to the shared journal.
func (s *Server) newController() *swap.Controller {
	seed := make(map[string]float64, len(s.opts.Seed))
	for sym, qty := range s.opts.Seed {
		seed[sym] = qty
	}
	return swap.NewController(s.opts.Prices, ledger.New(seed), s.opts.Swap,
		swap.WithJournal(s.store),
		swap.WithLogger(s.log),
		swap.WithMetrics(s.metrics),
	)
}

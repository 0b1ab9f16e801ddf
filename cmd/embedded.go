package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/BrunoViet/swapdesk/internal/asset"
	"github.com/BrunoViet/swapdesk/internal/client"
	"github.com/BrunoViet/swapdesk/internal/metrics"
	"github.com/BrunoViet/swapdesk/internal/prices"
	"github.com/BrunoViet/swapdesk/internal/server"
	"github.com/BrunoViet/swapdesk/internal/store"
	"go.uber.org/zap"
)

func newPriceAdapter(m *metrics.Metrics) *prices.Adapter {
	hc := &http.Client{Timeout: cfg.Prices.Timeout}
	return prices.NewAdapter(
		prices.NewBulkSource(hc, cfg.Prices.PrimaryURL),
		prices.NewQuoteSource(hc, cfg.Prices.SecondaryURL, asset.CoinGeckoIDs()),
		log.Named("prices"),
		m,
	)
}

func newServer(st *store.Store, addr string) *server.Server {
	m := metrics.New("swapdesk")
	return server.New(st, addr, server.Options{
		Prices:  newPriceAdapter(m),
		Swap:    cfg.SwapConfig(),
		Seed:    cfg.SeedBalances(),
		Metrics: m,
		Logger:  log,
	})
}

// startEmbedded runs an API server on a loopback port for the lifetime of
// the command and waits until it answers.
func startEmbedded(ctx context.Context) (string, func(), error) {
	st, err := store.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open store: %w", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		st.Close()
		return "", nil, fmt.Errorf("listen: %w", err)
	}
	srv := newServer(st, ln.Addr().String())
	go func() {
		if err := srv.Serve(ln); err != nil {
			log.Error("embedded server", zap.Error(err))
		}
	}()

	stop := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		st.Close()
	}

	apiAddr := "http://" + ln.Addr().String()
	c := client.New(apiAddr)
	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for {
		if err := c.Ping(waitCtx); err == nil {
			break
		}
		if waitCtx.Err() != nil {
			stop()
			return "", nil, fmt.Errorf("timeout waiting for embedded server")
		}
		time.Sleep(50 * time.Millisecond)
	}
	return apiAddr, stop, nil
}

// apiAddress returns the configured server, or starts an embedded one.
func apiAddress(ctx context.Context, remote bool) (string, func(), error) {
	if remote {
		return cfg.Server, func() {}, nil
	}
	return startEmbedded(ctx)
}

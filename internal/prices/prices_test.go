package prices

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BrunoViet/swapdesk/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	name  string
	table Table
	err   error
	calls int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(context.Context) (Table, error) {
	f.calls++
	return f.table, f.err
}

func TestAdapterUsesPrimaryWhenUsable(t *testing.T) {
	primary := &fakeSource{name: "primary", table: Table{"BTC": 50000}}
	secondary := &fakeSource{name: "secondary", table: Table{"BTC": 1}}

	got := NewAdapter(primary, secondary, zap.NewNop(), nil).FetchPrices(context.Background())

	assert.Equal(t, Table{"BTC": 50000}, got)
	assert.Equal(t, 0, secondary.calls)
}

func TestAdapterFallsBackOnEmptyPrimary(t *testing.T) {
	m := metrics.New("test")
	primary := &fakeSource{name: "primary", table: Table{}}
	secondary := &fakeSource{name: "secondary", table: Table{"BTC": 50000, "USDT": 1}}

	got := NewAdapter(primary, secondary, zap.NewNop(), m).FetchPrices(context.Background())

	assert.Equal(t, Table{"BTC": 50000, "USDT": 1}, got)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
	series, err := testutil.GatherAndCount(m.Registry(), "test_price_fetch_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series, "one empty primary fetch and one ok secondary fetch")
}

func TestAdapterFallsBackOnError(t *testing.T) {
	primary := &fakeSource{name: "primary", err: errors.New("boom")}
	secondary := &fakeSource{name: "secondary", table: Table{"ETH": 3000}}

	got := NewAdapter(primary, secondary, zap.NewNop(), nil).FetchPrices(context.Background())
	assert.Equal(t, Table{"ETH": 3000}, got)
}

func TestAdapterPrimaryWithOnlyUnusablePricesFallsBack(t *testing.T) {
	primary := &fakeSource{name: "primary", table: Table{"BTC": 0, "ETH": -1}}
	secondary := &fakeSource{name: "secondary", table: Table{"ETH": 3000}}

	got := NewAdapter(primary, secondary, zap.NewNop(), nil).FetchPrices(context.Background())
	assert.Equal(t, Table{"ETH": 3000}, got)
}

func TestAdapterBothEmpty(t *testing.T) {
	primary := &fakeSource{name: "primary", err: errors.New("down")}
	secondary := &fakeSource{name: "secondary", table: nil}

	got := NewAdapter(primary, secondary, zap.NewNop(), nil).FetchPrices(context.Background())
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBulkSourceFlatMap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"BTC": 50000, "usdt": 1}`))
	}))
	defer srv.Close()

	got, err := NewBulkSource(srv.Client(), srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Table{"BTC": 50000, "USDT": 1}, got)
}

func TestBulkSourceRecordList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"currency":"ETH","date":"2023-08-29T07:10:52.000Z","price":1645.93},
			{"currency":"ETH","date":"2023-08-29T07:10:40.000Z","price":1600},
			{"currency":"USDC","date":"2023-08-29T07:10:30.000Z","price":0.99}
		]`))
	}))
	defer srv.Close()

	got, err := NewBulkSource(srv.Client(), srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Table{"ETH": 1645.93, "USDC": 0.99}, got)
}

func TestBulkSourceErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()
		_, err := NewBulkSource(srv.Client(), srv.URL).Fetch(context.Background())
		assert.ErrorIs(t, err, ErrUpstreamStatus)
	})
	t.Run("malformed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer srv.Close()
		_, err := NewBulkSource(srv.Client(), srv.URL).Fetch(context.Background())
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestQuoteSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bitcoin,switcheo,tether", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":50000},"tether":{"usd":1},"switcheo":{"eur":0.004}}`))
	}))
	defer srv.Close()

	ids := map[string]string{"BTC": "bitcoin", "USDT": "tether", "SWTH": "switcheo"}
	got, err := NewQuoteSource(srv.Client(), srv.URL, ids).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Table{"BTC": 50000, "USDT": 1}, got, "quote without usd is unknown, not a failure")
}

func TestQuoteSourceBadQuoteOnlyDropsThatSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"bitcoin":{"usd":50000,"last_updated_at":"2026-10-19T00:00:00Z"},
			"tether":{"usd":"n/a"},
			"switcheo":{"error":{"code":404,"message":"coin not found"}},
			"ethereum":"unavailable"
		}`))
	}))
	defer srv.Close()

	ids := map[string]string{"BTC": "bitcoin", "USDT": "tether", "SWTH": "switcheo", "ETH": "ethereum"}
	got, err := NewQuoteSource(srv.Client(), srv.URL, ids).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Table{"BTC": 50000}, got)
}

func TestQuoteSourceStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewQuoteSource(srv.Client(), srv.URL, map[string]string{"BTC": "bitcoin"}).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrUpstreamStatus)
}

func TestAdapterEndToEndFallback(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer primary.Close()
	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":50000}}`))
	}))
	defer secondary.Close()

	a := NewAdapter(
		NewBulkSource(primary.Client(), primary.URL),
		NewQuoteSource(secondary.Client(), secondary.URL, map[string]string{"BTC": "bitcoin"}),
		zap.NewNop(), nil,
	)
	assert.Equal(t, Table{"BTC": 50000}, a.FetchPrices(context.Background()))
}

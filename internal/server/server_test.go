package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BrunoViet/swapdesk/internal/ledger"
	"github.com/BrunoViet/swapdesk/internal/metrics"
	"github.com/BrunoViet/swapdesk/internal/prices"
	"github.com/BrunoViet/swapdesk/internal/store"
	"github.com/BrunoViet/swapdesk/internal/swap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedPrices prices.Table

func (f fixedPrices) FetchPrices(context.Context) prices.Table { return prices.Table(f) }

func newTestServer(t *testing.T) (*httptest.Server, *metrics.Metrics) {
	t.Helper()
	st, err := store.Open()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	m := metrics.New("test")
	srv := New(st, "", Options{
		Prices:  fixedPrices{"BTC": 50000, "USDT": 1, "ETH": 2500},
		Swap:    swap.DefaultConfig(),
		Seed:    map[string]float64{"BTC": 5, "USDT": 100},
		Metrics: m,
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, m
}

func do(t *testing.T, ts *httptest.Server, method, path string, body any, out any) int {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func openSession(t *testing.T, ts *httptest.Server) swap.View {
	t.Helper()
	var v swap.View
	require.Equal(t, http.StatusCreated, do(t, ts, http.MethodPost, "/api/v1/sessions", nil, &v))
	require.NotEmpty(t, v.SessionID)
	return v
}

func TestSessionLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)
	v := openSession(t, ts)
	base := "/api/v1/sessions/" + v.SessionID

	assert.False(t, v.Loading)
	assert.Equal(t, "BTC", v.Form.Source.Symbol)
	assert.Equal(t, "USDT", v.Form.Destination.Symbol)

	require.Equal(t, http.StatusOK, do(t, ts, http.MethodPut, base+"/amount", amountRequest{Amount: "0.001"}, &v))
	assert.Equal(t, "50", v.DestinationAmount)
	assert.Equal(t, "1 BTC = 50000 USDT", v.RateLabel)
	assert.True(t, v.CanSubmit)

	var sub submitResponse
	require.Equal(t, http.StatusCreated, do(t, ts, http.MethodPost, base+"/submit", nil, &sub))
	assert.Equal(t, "0.001", sub.Receipt.SourceAmount)
	assert.Equal(t, "50", sub.Receipt.DestinationAmount)
	require.NotNil(t, sub.View.Confirmation)
	assert.Empty(t, sub.View.Form.SourceAmount)

	var swaps []swap.Receipt
	require.Equal(t, http.StatusOK, do(t, ts, http.MethodGet, base+"/swaps", nil, &swaps))
	require.Len(t, swaps, 1)
	assert.Equal(t, sub.Receipt.ID, swaps[0].ID)

	var one swap.Receipt
	require.Equal(t, http.StatusOK, do(t, ts, http.MethodGet, base+"/swaps/"+sub.Receipt.ID, nil, &one))
	assert.Equal(t, sub.Receipt.ID, one.ID)

	var vols []ledger.Volume
	require.Equal(t, http.StatusOK, do(t, ts, http.MethodGet, base+"/swaps/volume", nil, &vols))
	assert.Len(t, vols, 2)

	require.Equal(t, http.StatusOK, do(t, ts, http.MethodDelete, base+"/confirmation", nil, &v))
	assert.Nil(t, v.Confirmation)

	assert.Equal(t, http.StatusNoContent, do(t, ts, http.MethodDelete, base, nil, nil))
	var e errorResponse
	assert.Equal(t, http.StatusNotFound, do(t, ts, http.MethodGet, base, nil, &e))
}

func TestSubmitValidationErrors(t *testing.T) {
	ts, _ := newTestServer(t)
	v := openSession(t, ts)
	base := "/api/v1/sessions/" + v.SessionID

	require.Equal(t, http.StatusOK, do(t, ts, http.MethodPut, base+"/amount", amountRequest{Amount: "10"}, &v))
	assert.False(t, v.CanSubmit)

	var e errorResponse
	require.Equal(t, http.StatusUnprocessableEntity, do(t, ts, http.MethodPost, base+"/submit", nil, &e))
	require.Len(t, e.Fields, 1)
	assert.Equal(t, swap.FieldSourceAmount, e.Fields[0].Field)
	assert.Equal(t, swap.MsgInsufficient, e.Fields[0].Message)

	var holdings []struct {
		Symbol  string  `json:"symbol"`
		Balance float64 `json:"balance"`
	}
	require.Equal(t, http.StatusOK, do(t, ts, http.MethodGet, base+"/balances", nil, &holdings))
	require.Len(t, holdings, 2)
	assert.Equal(t, "BTC", holdings[0].Symbol)
	assert.Equal(t, 5.0, holdings[0].Balance)
}

func TestIntentErrors(t *testing.T) {
	ts, _ := newTestServer(t)
	v := openSession(t, ts)
	base := "/api/v1/sessions/" + v.SessionID

	var e errorResponse
	assert.Equal(t, http.StatusBadRequest, do(t, ts, http.MethodPut, base+"/source", symbolRequest{Symbol: "DOGE"}, &e))
	assert.Contains(t, e.Error, "DOGE")
	assert.Equal(t, http.StatusBadRequest, do(t, ts, http.MethodPut, base+"/amount", amountRequest{Amount: "1.2.3"}, &e))
	assert.Equal(t, http.StatusNotFound, do(t, ts, http.MethodPost, "/api/v1/sessions/nope/flip", nil, &e))

	req, err := http.NewRequest(http.MethodPut, ts.URL+base+"/amount", strings.NewReader("{"))
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFlipAndMax(t *testing.T) {
	ts, _ := newTestServer(t)
	v := openSession(t, ts)
	base := "/api/v1/sessions/" + v.SessionID

	require.Equal(t, http.StatusOK, do(t, ts, http.MethodPost, base+"/max", nil, &v))
	assert.Equal(t, "5", v.Form.SourceAmount)

	require.Equal(t, http.StatusOK, do(t, ts, http.MethodPost, base+"/flip", nil, &v))
	assert.Equal(t, "USDT", v.Form.Source.Symbol)
	assert.Equal(t, "250000", v.Form.SourceAmount)
	assert.False(t, v.CanSubmit, "only 100 USDT available")
}

func TestSessionsAreIsolated(t *testing.T) {
	ts, _ := newTestServer(t)
	a := openSession(t, ts)
	b := openSession(t, ts)

	var v swap.View
	require.Equal(t, http.StatusOK, do(t, ts, http.MethodPut, "/api/v1/sessions/"+a.SessionID+"/amount", amountRequest{Amount: "1"}, &v))
	require.Equal(t, http.StatusCreated, do(t, ts, http.MethodPost, "/api/v1/sessions/"+a.SessionID+"/submit", nil, &submitResponse{}))

	require.Equal(t, http.StatusOK, do(t, ts, http.MethodGet, "/api/v1/sessions/"+b.SessionID, nil, &v))
	assert.Equal(t, 5.0, v.Derived.SourceBalance)

	var ids []string
	require.Equal(t, http.StatusOK, do(t, ts, http.MethodGet, "/api/v1/sessions", nil, &ids))
	assert.ElementsMatch(t, []string{a.SessionID, b.SessionID}, ids)
}

func TestPricesAndMetrics(t *testing.T) {
	ts, _ := newTestServer(t)
	openSession(t, ts)

	var table map[string]float64
	require.Equal(t, http.StatusOK, do(t, ts, http.MethodGet, "/api/v1/prices", nil, &table))
	assert.Equal(t, 50000.0, table["BTC"])

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "test_sessions_active 1")
	assert.Contains(t, buf.String(), `route="/api/v1/sessions"`)
}

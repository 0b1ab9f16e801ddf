package prices

import (
	"context"
	"errors"
	"math"
	"net/http"

	"github.com/BrunoViet/swapdesk/internal/metrics"
	"go.uber.org/zap"
)

var (
	ErrUpstreamStatus = errors.New("price source returned non-success status")
	ErrMalformed      = errors.New("price source payload is malformed")
)

// Table maps symbol -> unit price in USD. A missing key means "unknown", never zero.
type Table map[string]float64

// Source fetches one upstream price listing.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (Table, error)
}

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Adapter tries the primary source, then the secondary when the primary
// yields no usable entries.
type Adapter struct {
	primary   Source
	secondary Source
	log       *zap.Logger
	metrics   *metrics.Metrics
}

func NewAdapter(primary, secondary Source, log *zap.Logger, m *metrics.Metrics) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{primary: primary, secondary: secondary, log: log, metrics: m}
}

// FetchPrices never fails: when both sources come back empty the result is an
// empty table and every price is treated as unknown.
func (a *Adapter) FetchPrices(ctx context.Context) Table {
	for _, src := range []Source{a.primary, a.secondary} {
		if src == nil {
			continue
		}
		table := a.try(ctx, src)
		if len(table) > 0 {
			return table
		}
	}
	a.log.Warn("no prices available from any source")
	return Table{}
}

func (a *Adapter) try(ctx context.Context, src Source) Table {
	table, err := src.Fetch(ctx)
	if err != nil {
		a.log.Warn("price source failed", zap.String("source", src.Name()), zap.Error(err))
		a.metrics.PriceFetch(src.Name(), "error")
		return nil
	}
	table = usable(table)
	if len(table) == 0 {
		a.log.Info("price source returned no usable prices", zap.String("source", src.Name()))
		a.metrics.PriceFetch(src.Name(), "empty")
		return nil
	}
	a.log.Info("using prices", zap.String("source", src.Name()), zap.Int("count", len(table)))
	a.metrics.PriceFetch(src.Name(), "ok")
	return table
}

// usable keeps finite, strictly positive prices.
func usable(t Table) Table {
	out := make(Table, len(t))
	for sym, p := range t {
		if sym == "" || math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
			continue
		}
		out[sym] = p
	}
	return out
}

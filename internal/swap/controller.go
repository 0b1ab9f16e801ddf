package swap

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/BrunoViet/swapdesk/internal/asset"
	"github.com/BrunoViet/swapdesk/internal/format"
	"github.com/BrunoViet/swapdesk/internal/ledger"
	"github.com/BrunoViet/swapdesk/internal/metrics"
	"github.com/BrunoViet/swapdesk/internal/prices"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var amountPattern = regexp.MustCompile(`^\d*\.?\d*$`)

// PriceFetcher is satisfied by *prices.Adapter.
type PriceFetcher interface {
	FetchPrices(ctx context.Context) prices.Table
}

// Journal receives every confirmed swap.
type Journal interface {
	RecordSwap(ctx context.Context, r Receipt) error
}

type Config struct {
	Symbols            []string
	IconBaseURL        string
	DefaultSource      string
	DefaultDestination string
}

// DefaultConfig uses the built-in catalog and BTC -> USDT as the opening pair.
func DefaultConfig() Config {
	return Config{
		Symbols:            asset.DefaultSymbols(),
		IconBaseURL:        asset.DefaultIconBaseURL,
		DefaultSource:      "BTC",
		DefaultDestination: "USDT",
	}
}

// Receipt is the confirmation snapshot of an executed swap.
type Receipt struct {
	ID                  string    `json:"id"`
	SessionID           string    `json:"session_id"`
	SourceAmount        string    `json:"source_amount"`
	SourceSymbol        string    `json:"source_symbol"`
	DestinationAmount   string    `json:"destination_amount"`
	DestinationSymbol   string    `json:"destination_symbol"`
	SourceQuantity      float64   `json:"source_quantity"`
	DestinationQuantity float64   `json:"destination_quantity"`
	Rate                float64   `json:"rate"`
	ExecutedAt          time.Time `json:"executed_at"`
}

type Option func(*Controller)

func WithJournal(j Journal) Option { return func(c *Controller) { c.journal = j } }

func WithLogger(l *zap.Logger) Option { return func(c *Controller) { c.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(c *Controller) { c.metrics = m } }

func WithSessionID(id string) Option { return func(c *Controller) { c.id = id } }

// Controller owns one swap form and its ledger. Every intent runs to
// completion under mu; while the catalog is loading all intents fail with
// ErrLoading.
type Controller struct {
	mu      sync.Mutex
	id      string
	cfg     Config
	fetcher PriceFetcher
	ledger  *ledger.Ledger
	journal Journal
	log     *zap.Logger
	metrics *metrics.Metrics

	loading      bool
	loadStarted  bool
	catalog      []asset.Asset
	form         FormState
	errors       []ValidationError
	confirmation *Receipt
}

func NewController(fetcher PriceFetcher, l *ledger.Ledger, cfg Config, opts ...Option) *Controller {
	if l == nil {
		l = ledger.New(ledger.DefaultSeed())
	}
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = asset.DefaultSymbols()
	}
	c := &Controller{
		cfg:     cfg,
		fetcher: fetcher,
		ledger:  l,
		loading: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.id == "" {
		c.id = uuid.Must(uuid.NewV7()).String()
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	c.log = c.log.With(zap.String("session", c.id))
	return c
}

func (c *Controller) ID() string { return c.id }

// Ledger exposes the session ledger for read-only listings.
func (c *Controller) Ledger() *ledger.Ledger { return c.ledger }

// Load fetches prices, builds the catalog and selects the default pair. The
// fetch runs without holding the lock so concurrent intents see ErrLoading
// instead of blocking. Only the first call does any work.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.loadStarted {
		c.mu.Unlock()
		return nil
	}
	c.loadStarted = true
	c.mu.Unlock()

	var table prices.Table
	if c.fetcher != nil {
		table = c.fetcher.FetchPrices(ctx)
	}
	catalog := asset.BuildCatalog(c.cfg.Symbols, table, c.cfg.IconBaseURL)
	src, dst := asset.PickDefaults(catalog, c.cfg.DefaultSource, c.cfg.DefaultDestination)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalog = catalog
	c.form = FormState{Source: src, Destination: dst}
	c.errors = nil
	c.loading = false

	c.log.Info("catalog loaded", zap.Int("assets", len(catalog)), zap.Int("priced", len(table)))
	return nil
}

// SelectSource replaces the source asset and clears the amount. An empty
// symbol clears the selection.
func (c *Controller) SelectSource(symbol string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return ErrLoading
	}
	a, err := c.resolve(symbol)
	if err != nil {
		return err
	}
	c.form.Source = a
	c.form.SourceAmount = ""
	c.errors = withoutFields(c.errors, FieldSourceAsset, FieldSourceAmount)
	return nil
}

// SelectDestination replaces the destination asset; the amount is kept
// because it is denominated in the source asset.
func (c *Controller) SelectDestination(symbol string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return ErrLoading
	}
	a, err := c.resolve(symbol)
	if err != nil {
		return err
	}
	c.form.Destination = a
	c.errors = withoutFields(c.errors, FieldDestinationAsset)
	return nil
}

// EditAmount accepts empty text or digits with at most one decimal point.
// Anything else is rejected and the field keeps its previous value.
func (c *Controller) EditAmount(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return ErrLoading
	}
	if text != "" && !amountPattern.MatchString(text) {
		return fmt.Errorf("%w: %q", ErrInvalidAmountSyntax, text)
	}
	c.form.SourceAmount = text
	c.errors = withoutFields(c.errors, FieldSourceAmount)
	return nil
}

// Flip swaps the two assets and feeds the displayed receive amount back in as
// the new source amount.
func (c *Controller) Flip() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return ErrLoading
	}
	displayed := displayedDestination(Derive(c.form, c.ledger))
	c.form = FormState{
		Source:       c.form.Destination,
		Destination:  c.form.Source,
		SourceAmount: displayed,
	}
	c.errors = nil
	return nil
}

// SetMax fills the amount with the whole available source balance, rounded
// down so it always passes the balance check.
func (c *Controller) SetMax() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return ErrLoading
	}
	if c.form.Source == nil {
		return nil
	}
	c.form.SourceAmount = format.MaxAmount(c.ledger.Balance(c.form.Source.Symbol), format.DefaultMaxDecimals)
	c.errors = withoutFields(c.errors, FieldSourceAmount)
	return nil
}

// Validate runs the validation pass and stores its result as the visible
// error set.
func (c *Controller) Validate() ([]ValidationError, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return nil, ErrLoading
	}
	c.errors = Validate(c.form, Derive(c.form, c.ledger).SufficientBalance)
	return append([]ValidationError(nil), c.errors...), nil
}

// Submit validates, applies the ledger transfer and records a confirmation.
// On validation failure only the error set changes.
func (c *Controller) Submit(ctx context.Context) (Receipt, error) {
	r, err := c.submit()
	if err != nil {
		return Receipt{}, err
	}

	c.metrics.Swap(r.SourceSymbol, r.DestinationSymbol)
	c.log.Info("swap executed",
		zap.String("receipt", r.ID),
		zap.String("from", r.SourceSymbol),
		zap.String("to", r.DestinationSymbol),
		zap.Float64("debit", r.SourceQuantity),
		zap.Float64("credit", r.DestinationQuantity),
	)
	if c.journal != nil {
		if err := c.journal.RecordSwap(ctx, r); err != nil {
			c.log.Warn("record swap", zap.String("receipt", r.ID), zap.Error(err))
		}
	}
	return r, nil
}

func (c *Controller) submit() (Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return Receipt{}, ErrLoading
	}

	d := Derive(c.form, c.ledger)
	c.errors = Validate(c.form, d.SufficientBalance)
	if len(c.errors) > 0 {
		c.metrics.SubmitRejected("validation")
		return Receipt{}, ErrInvalidForm
	}
	// Validate guarantees both assets are set.
	if d.SourceQuantity <= 0 || d.DestinationAmount <= 0 {
		c.metrics.SubmitRejected("no_quote")
		return Receipt{}, ErrNoQuote
	}

	src, dst := c.form.Source.Symbol, c.form.Destination.Symbol
	tr, err := c.ledger.Transfer(src, dst, d.SourceQuantity, d.DestinationAmount)
	if err != nil {
		c.metrics.SubmitRejected("ledger")
		return Receipt{}, fmt.Errorf("apply transfer: %w", err)
	}

	r := Receipt{
		ID:                  uuid.Must(uuid.NewV7()).String(),
		SessionID:           c.id,
		SourceAmount:        format.AssetAmount(d.SourceQuantity, format.DefaultMaxDecimals),
		SourceSymbol:        src,
		DestinationAmount:   format.AssetAmount(d.DestinationAmount, format.DefaultMaxDecimals),
		DestinationSymbol:   dst,
		SourceQuantity:      d.SourceQuantity,
		DestinationQuantity: d.DestinationAmount,
		ExecutedAt:          tr.AppliedAt,
	}
	if d.ExchangeRate != nil {
		r.Rate = *d.ExchangeRate
	}
	c.confirmation = &r
	c.form.SourceAmount = ""
	return r, nil
}

// DismissConfirmation clears the last confirmation. It never touches the ledger.
func (c *Controller) DismissConfirmation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirmation = nil
}

func (c *Controller) resolve(symbol string) (*asset.Asset, error) {
	if symbol == "" {
		return nil, nil
	}
	a, ok := asset.Lookup(c.catalog, symbol)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, symbol)
	}
	return &a, nil
}

func displayedDestination(d Derived) string {
	if d.DestinationAmount <= 0 {
		return ""
	}
	return format.AssetAmount(d.DestinationAmount, format.DefaultMaxDecimals)
}

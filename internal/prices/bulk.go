package prices

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBulkEndpoint = "https://interview.switcheo.com/prices.json"

// BulkSource reads a full price listing in one request. The payload may be a
// flat {"SYM": price} object or a list of {currency, date, price} records.
type BulkSource struct {
	client   HTTPDoer
	endpoint string
}

func NewBulkSource(client HTTPDoer, endpoint string) *BulkSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultBulkEndpoint
	}
	return &BulkSource{client: client, endpoint: endpoint}
}

func (s *BulkSource) Name() string { return "bulk" }

type priceRecord struct {
	Currency string    `json:"currency"`
	Date     time.Time `json:"date"`
	Price    float64   `json:"price"`
}

func (s *BulkSource) Fetch(ctx context.Context) (Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}
	return decodeBulk(body)
}

func decodeBulk(body []byte) (Table, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformed)
	}

	if trimmed[0] == '[' {
		var records []priceRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		table := make(Table, len(records))
		latest := make(map[string]time.Time, len(records))
		for _, r := range records {
			sym := strings.ToUpper(strings.TrimSpace(r.Currency))
			if sym == "" {
				continue
			}
			if seen, ok := latest[sym]; ok && r.Date.Before(seen) {
				continue
			}
			latest[sym] = r.Date
			table[sym] = r.Price
		}
		return table, nil
	}

	var flat map[string]float64
	if err := json.Unmarshal(trimmed, &flat); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	table := make(Table, len(flat))
	for sym, p := range flat {
		table[strings.ToUpper(strings.TrimSpace(sym))] = p
	}
	return table, nil
}

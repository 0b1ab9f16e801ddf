package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const DefaultQuoteEndpoint = "https://api.coingecko.com/api/v3/simple/price"

// QuoteSource queries a CoinGecko-style simple price endpoint for every
// mapped symbol in one batch. ids maps catalog symbol -> provider id.
type QuoteSource struct {
	client   HTTPDoer
	endpoint string
	ids      map[string]string
}

func NewQuoteSource(client HTTPDoer, endpoint string, ids map[string]string) *QuoteSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultQuoteEndpoint
	}
	mapped := make(map[string]string, len(ids))
	for sym, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		mapped[strings.ToUpper(strings.TrimSpace(sym))] = id
	}
	return &QuoteSource{client: client, endpoint: endpoint, ids: mapped}
}

func (s *QuoteSource) Name() string { return "coingecko" }

func (s *QuoteSource) Fetch(ctx context.Context) (Table, error) {
	if len(s.ids) == 0 {
		return Table{}, nil
	}

	idList := make([]string, 0, len(s.ids))
	for _, id := range s.ids {
		idList = append(idList, id)
	}
	sort.Strings(idList)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	values := url.Values{}
	values.Set("ids", strings.Join(idList, ","))
	values.Set("vs_currencies", "usd")
	req.URL.RawQuery = values.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %d: %s", ErrUpstreamStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	table := make(Table, len(s.ids))
	for sym, id := range s.ids {
		raw, ok := payload[id]
		if !ok {
			continue
		}
		// a malformed quote or one without usd leaves only this symbol unknown
		if usd, ok := quoteUSD(raw); ok {
			table[sym] = usd
		}
	}
	return table, nil
}

func quoteUSD(raw json.RawMessage) (float64, bool) {
	var quote map[string]json.RawMessage
	if err := json.Unmarshal(raw, &quote); err != nil {
		return 0, false
	}
	field, ok := quote["usd"]
	if !ok {
		return 0, false
	}
	var usd float64
	if err := json.Unmarshal(field, &usd); err != nil {
		return 0, false
	}
	return usd, true
}

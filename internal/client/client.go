package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/BrunoViet/swapdesk/internal/ledger"
	"github.com/BrunoViet/swapdesk/internal/prices"
	"github.com/BrunoViet/swapdesk/internal/swap"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx answer. Fields carries validation errors from submit.
type APIError struct {
	Status  int
	Message string
	Fields  []swap.ValidationError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

type SubmitResult struct {
	Receipt swap.Receipt `json:"receipt"`
	View    swap.View    `json:"view"`
}

func (c *Client) CreateSession(ctx context.Context) (*swap.View, error) {
	var v swap.View
	if err := c.send(ctx, http.MethodPost, "/api/v1/sessions", nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) ListSessions(ctx context.Context) ([]string, error) {
	var ids []string
	if err := c.send(ctx, http.MethodGet, "/api/v1/sessions", nil, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *Client) GetSession(ctx context.Context, id string) (*swap.View, error) {
	return c.view(ctx, http.MethodGet, id, "", nil)
}

func (c *Client) CloseSession(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, sessionPath(id, ""), nil, nil)
}

func (c *Client) SelectSource(ctx context.Context, id, symbol string) (*swap.View, error) {
	return c.view(ctx, http.MethodPut, id, "/source", map[string]string{"symbol": symbol})
}

func (c *Client) SelectDestination(ctx context.Context, id, symbol string) (*swap.View, error) {
	return c.view(ctx, http.MethodPut, id, "/destination", map[string]string{"symbol": symbol})
}

func (c *Client) EditAmount(ctx context.Context, id, amount string) (*swap.View, error) {
	return c.view(ctx, http.MethodPut, id, "/amount", map[string]string{"amount": amount})
}

func (c *Client) Flip(ctx context.Context, id string) (*swap.View, error) {
	return c.view(ctx, http.MethodPost, id, "/flip", nil)
}

func (c *Client) SetMax(ctx context.Context, id string) (*swap.View, error) {
	return c.view(ctx, http.MethodPost, id, "/max", nil)
}

func (c *Client) Validate(ctx context.Context, id string) (*swap.View, error) {
	return c.view(ctx, http.MethodPost, id, "/validate", nil)
}

func (c *Client) DismissConfirmation(ctx context.Context, id string) (*swap.View, error) {
	return c.view(ctx, http.MethodDelete, id, "/confirmation", nil)
}

// Submit executes the swap. Validation failures come back as *APIError with
// Fields set.
func (c *Client) Submit(ctx context.Context, id string) (*SubmitResult, error) {
	var res SubmitResult
	if err := c.send(ctx, http.MethodPost, sessionPath(id, "/submit"), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Balances(ctx context.Context, id string) ([]ledger.Holding, error) {
	var out []ledger.Holding
	if err := c.send(ctx, http.MethodGet, sessionPath(id, "/balances"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Swaps(ctx context.Context, id string, limit int) ([]swap.Receipt, error) {
	path := sessionPath(id, "/swaps")
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []swap.Receipt
	if err := c.send(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSwap(ctx context.Context, id, swapID string) (*swap.Receipt, error) {
	var out swap.Receipt
	if err := c.send(ctx, http.MethodGet, sessionPath(id, "/swaps/"+url.PathEscape(swapID)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Volume(ctx context.Context, id string) ([]ledger.Volume, error) {
	var out []ledger.Volume
	if err := c.send(ctx, http.MethodGet, sessionPath(id, "/swaps/volume"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Prices(ctx context.Context) (prices.Table, error) {
	var out prices.Table
	if err := c.send(ctx, http.MethodGet, "/api/v1/prices", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Ping checks if the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) view(ctx context.Context, method, id, suffix string, body any) (*swap.View, error) {
	var v swap.View
	if err := c.send(ctx, method, sessionPath(id, suffix), body, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func sessionPath(id, suffix string) string {
	return "/api/v1/sessions/" + url.PathEscape(id) + suffix
}

func (c *Client) send(ctx context.Context, method, path string, body any, result any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.doRequest(req, result)
}

type apiError struct {
	Error  string                 `json:"error"`
	Fields []swap.ValidationError `json:"fields"`
}

func (c *Client) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var body apiError
		if json.Unmarshal(bodyBytes, &body) == nil && body.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: body.Error, Fields: body.Fields}
		}
		return &APIError{Status: resp.StatusCode, Message: string(bodyBytes)}
	}

	if result != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

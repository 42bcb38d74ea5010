package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/zappabad/solotrader/internal/game"
	"github.com/zappabad/solotrader/internal/market"
	"github.com/zappabad/solotrader/internal/orders"
)

// HTTPClient talks to the game service over JSON/HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ GameService = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		logger: logger.With("module", "remote_http"),
	}
}

func gamePath(id game.ID, parts ...string) string {
	p := "/games/" + url.PathEscape(string(id))
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

func dayQuery(day int) url.Values {
	return url.Values{"day": []string{strconv.Itoa(day)}}
}

func (c *HTTPClient) FetchGameState(ctx context.Context, id game.ID) (game.State, error) {
	var w WireState
	if err := c.do(ctx, MethodGameState, http.MethodGet, gamePath(id), nil, nil, &w); err != nil {
		return game.State{}, err
	}
	return w.State()
}

func (c *HTTPClient) FetchNextPrice(ctx context.Context, id game.ID, day int) (PriceUpdate, error) {
	var res NextPriceResult
	body := NextPriceParams{Day: day}
	if err := c.do(ctx, MethodNextPrice, http.MethodPost, gamePath(id, "next-price"), nil, body, &res); err != nil {
		return PriceUpdate{}, err
	}
	return PriceUpdate{Price: res.Price, Cash: res.Cash}, nil
}

func (c *HTTPClient) NotifyPause(ctx context.Context, id game.ID, remaining time.Duration) error {
	body := PauseParams{RemainingMs: remaining.Milliseconds()}
	return c.do(ctx, MethodPause, http.MethodPost, gamePath(id, "pause"), nil, body, nil)
}

func (c *HTTPClient) NotifyResume(ctx context.Context, id game.ID) error {
	return c.do(ctx, MethodResume, http.MethodPost, gamePath(id, "resume"), nil, struct{}{}, nil)
}

func (c *HTTPClient) SubmitOrder(ctx context.Context, id game.ID, req OrderRequest) (orders.Order, error) {
	body := SubmitParams{
		ClientID: req.ClientID,
		PlayerID: string(req.PlayerID),
		Quantity: req.Quantity,
		Price:    req.Price,
		Day:      req.Day,
	}
	var w WireOrder
	if err := c.do(ctx, MethodSubmitOrder, http.MethodPost, gamePath(id, "orders"), nil, body, &w); err != nil {
		return orders.Order{}, err
	}
	return w.Order(), nil
}

func (c *HTTPClient) FetchDayOrders(ctx context.Context, id game.ID, stock market.StockID, day int) ([]orders.Order, error) {
	var ws []WireOrder
	path := gamePath(id, "stocks", url.PathEscape(string(stock)), "orders")
	if err := c.do(ctx, MethodDayOrders, http.MethodGet, path, dayQuery(day), nil, &ws); err != nil {
		return nil, err
	}
	return ordersFromWire(ws), nil
}

func (c *HTTPClient) FetchInterest(ctx context.Context, id game.ID, player game.PlayerID, day int) (game.Interest, error) {
	var w WireInterest
	path := gamePath(id, "players", url.PathEscape(string(player)), "interest")
	if err := c.do(ctx, MethodInterest, http.MethodGet, path, dayQuery(day), nil, &w); err != nil {
		return game.Interest{}, err
	}
	return w.Interest(), nil
}

func (c *HTTPClient) RemovePendingOrders(ctx context.Context, id game.ID) (int, error) {
	var res RemovedResult
	if err := c.do(ctx, MethodRemovePending, http.MethodDelete, gamePath(id, "orders", "pending"), nil, nil, &res); err != nil {
		return 0, err
	}
	return res.Removed, nil
}

func (c *HTTPClient) CreateGame(ctx context.Context, req CreateRequest) (game.ID, error) {
	body := CreateParams{Settings: SettingsToWire(req.Settings), Cash: req.Cash}
	var res CreateResult
	if err := c.do(ctx, MethodCreateGame, http.MethodPost, "/games", nil, body, &res); err != nil {
		return "", err
	}
	return game.ID(res.GameID), nil
}

// do sends one request and decodes a JSON response into out (if non-nil).
func (c *HTTPClient) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return NewFatalNetworkError(op, err)
		}
		bodyReader = bytes.NewReader(b)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return NewFatalNetworkError(op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return NewFatalNetworkError(op, err)
		}
		return NewNetworkError(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewNetworkError(op, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb ErrorBody
		msg := string(data)
		if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
			msg = eb.Error
		}
		c.logger.Debug("request rejected", "op", op, "status", resp.StatusCode, "msg", msg)
		return &StatusError{Op: op, Code: resp.StatusCode, Message: msg}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return NewFatalNetworkError(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

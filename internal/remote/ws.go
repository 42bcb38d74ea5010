package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/zappabad/solotrader/internal/game"
	"github.com/zappabad/solotrader/internal/market"
	"github.com/zappabad/solotrader/internal/orders"
)

type wsResult struct {
	env Envelope
	err error
}

// WSClient multiplexes service calls over one websocket connection.
// Requests carry a fresh id and responses are matched to callers by it.
// A dropped connection fails every call in flight and is redialled on the next call.
type WSClient struct {
	url    string
	dialer websocket.Dialer
	logger *slog.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	pending map[string]chan wsResult
	closed  bool

	writeMu sync.Mutex
	wg      sync.WaitGroup
}

var _ GameService = (*WSClient)(nil)

// DialWS connects to the service websocket endpoint at url.
func DialWS(ctx context.Context, url string, logger *slog.Logger) (*WSClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &WSClient{
		url:     url,
		dialer:  websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger:  logger.With("module", "remote_ws"),
		pending: make(map[string]chan wsResult),
	}
	if _, err := c.connection(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Close shuts the connection and fails calls in flight.
func (c *WSClient) Close() error {
	c.mu.Lock()
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}
	c.wg.Wait()
	return err
}

func (c *WSClient) connection(ctx context.Context) (*websocket.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if c.conn != nil {
		return c.conn, nil
	}

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, NewNetworkError("dial", err)
	}
	c.conn = conn
	c.wg.Add(1)
	go c.readLoop(conn)
	c.logger.Info("connected", "url", c.url)
	return conn, nil
}

func (c *WSClient) readLoop(conn *websocket.Conn) {
	defer c.wg.Done()
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			c.drop(conn, err)
			return
		}
		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			c.logger.Warn("malformed message", "err", err)
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[env.ID]
		delete(c.pending, env.ID)
		c.mu.Unlock()
		if !ok {
			c.logger.Debug("response for unknown request", "id", env.ID)
			continue
		}
		ch <- wsResult{env: env}
	}
}

// drop forgets conn and fails everything waiting on it.
func (c *WSClient) drop(conn *websocket.Conn, cause error) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	closed := c.closed
	waiting := c.pending
	c.pending = make(map[string]chan wsResult)
	c.mu.Unlock()

	_ = conn.Close()
	if !closed {
		c.logger.Warn("connection lost", "err", cause, "in_flight", len(waiting))
	}
	for _, ch := range waiting {
		ch <- wsResult{err: NewNetworkError("read", cause)}
	}
}

func (c *WSClient) call(ctx context.Context, method string, params, out any) error {
	conn, err := c.connection(ctx)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return NewFatalNetworkError(method, err)
	}
	id := uuid.NewString()
	msg, err := json.Marshal(Envelope{ID: id, Method: method, Params: raw})
	if err != nil {
		return NewFatalNetworkError(method, err)
	}

	ch := make(chan wsResult, 1)
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, msg)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		return NewNetworkError(method, err)
	}

	var res wsResult
	select {
	case <-ctx.Done():
		c.forget(id)
		return NewFatalNetworkError(method, ctx.Err())
	case res = <-ch:
	}
	if res.err != nil {
		return res.err
	}
	if res.env.Error != "" {
		code := res.env.Code
		if code == 0 {
			code = 500
		}
		return &StatusError{Op: method, Code: code, Message: res.env.Error}
	}
	if out == nil || len(res.env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.env.Result, out); err != nil {
		return NewFatalNetworkError(method, fmt.Errorf("decode result: %w", err))
	}
	return nil
}

func (c *WSClient) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *WSClient) FetchGameState(ctx context.Context, id game.ID) (game.State, error) {
	var w WireState
	if err := c.call(ctx, MethodGameState, GameParams{GameID: string(id)}, &w); err != nil {
		return game.State{}, err
	}
	return w.State()
}

func (c *WSClient) FetchNextPrice(ctx context.Context, id game.ID, day int) (PriceUpdate, error) {
	var res NextPriceResult
	if err := c.call(ctx, MethodNextPrice, NextPriceParams{GameID: string(id), Day: day}, &res); err != nil {
		return PriceUpdate{}, err
	}
	return PriceUpdate{Price: res.Price, Cash: res.Cash}, nil
}

func (c *WSClient) NotifyPause(ctx context.Context, id game.ID, remaining time.Duration) error {
	return c.call(ctx, MethodPause, PauseParams{GameID: string(id), RemainingMs: remaining.Milliseconds()}, nil)
}

func (c *WSClient) NotifyResume(ctx context.Context, id game.ID) error {
	return c.call(ctx, MethodResume, GameParams{GameID: string(id)}, nil)
}

func (c *WSClient) SubmitOrder(ctx context.Context, id game.ID, req OrderRequest) (orders.Order, error) {
	params := SubmitParams{
		GameID:   string(id),
		ClientID: req.ClientID,
		PlayerID: string(req.PlayerID),
		Quantity: req.Quantity,
		Price:    req.Price,
		Day:      req.Day,
	}
	var w WireOrder
	if err := c.call(ctx, MethodSubmitOrder, params, &w); err != nil {
		return orders.Order{}, err
	}
	return w.Order(), nil
}

func (c *WSClient) FetchDayOrders(ctx context.Context, id game.ID, stock market.StockID, day int) ([]orders.Order, error) {
	var ws []WireOrder
	params := DayOrdersParams{GameID: string(id), StockID: string(stock), Day: day}
	if err := c.call(ctx, MethodDayOrders, params, &ws); err != nil {
		return nil, err
	}
	return ordersFromWire(ws), nil
}

func (c *WSClient) FetchInterest(ctx context.Context, id game.ID, player game.PlayerID, day int) (game.Interest, error) {
	var w WireInterest
	params := InterestParams{GameID: string(id), PlayerID: string(player), Day: day}
	if err := c.call(ctx, MethodInterest, params, &w); err != nil {
		return game.Interest{}, err
	}
	return w.Interest(), nil
}

func (c *WSClient) RemovePendingOrders(ctx context.Context, id game.ID) (int, error) {
	var res RemovedResult
	if err := c.call(ctx, MethodRemovePending, GameParams{GameID: string(id)}, &res); err != nil {
		return 0, err
	}
	return res.Removed, nil
}

func (c *WSClient) CreateGame(ctx context.Context, req CreateRequest) (game.ID, error) {
	var res CreateResult
	params := CreateParams{Settings: SettingsToWire(req.Settings), Cash: req.Cash}
	if err := c.call(ctx, MethodCreateGame, params, &res); err != nil {
		return "", err
	}
	return game.ID(res.GameID), nil
}

package remote

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zappabad/solotrader/internal/game"
	"github.com/zappabad/solotrader/internal/market"
	"github.com/zappabad/solotrader/internal/orders"
)

// Wire types are shared by the clients and the mock service.

type WireSettings struct {
	GameType     string          `json:"game_type"`
	TicksPerDay  int             `json:"ticks_per_day"`
	TradingDays  int             `json:"trading_days"`
	TickPeriodMs int64           `json:"tick_period_ms"`
	Volatility   decimal.Decimal `json:"volatility"`
	Seed         string          `json:"seed"`
}

type WirePlayer struct {
	ID    string           `json:"id"`
	Role  string           `json:"role"`
	Cash  decimal.Decimal  `json:"cash"`
	Owned map[string]int64 `json:"owned,omitempty"`
}

const (
	WireRolePlayer = "player"
	WireRoleBot    = "bot"

	WireOrderPending   = "pending"
	WireOrderFulfilled = "fulfilled"
)

type WireOrder struct {
	ID        string          `json:"id"`
	ClientID  string          `json:"client_id,omitempty"`
	PlayerID  string          `json:"player_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Day       int             `json:"day"`
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
}

type WireState struct {
	ID           string            `json:"id"`
	StockID      string            `json:"stock_id"`
	PriceHistory []decimal.Decimal `json:"price_history"`
	Players      []WirePlayer      `json:"players"`
	Settings     WireSettings      `json:"settings"`
	Orders       []WireOrder       `json:"orders"`
}

type WireInterest struct {
	Earned decimal.Decimal `json:"earned"`
	Paid   decimal.Decimal `json:"paid"`
}

// Request and result bodies. HTTP carries the game id in the path; the
// websocket transport carries it in the params.

type GameParams struct {
	GameID string `json:"game_id"`
}

type NextPriceParams struct {
	GameID string `json:"game_id,omitempty"`
	Day    int    `json:"day"`
}

type NextPriceResult struct {
	Price decimal.Decimal `json:"price"`
	Cash  decimal.Decimal `json:"cash"`
}

type PauseParams struct {
	GameID      string `json:"game_id,omitempty"`
	RemainingMs int64  `json:"remaining_ms"`
}

type SubmitParams struct {
	GameID   string          `json:"game_id,omitempty"`
	ClientID string          `json:"client_id"`
	PlayerID string          `json:"player_id"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Day      int             `json:"day"`
}

type DayOrdersParams struct {
	GameID  string `json:"game_id"`
	StockID string `json:"stock_id"`
	Day     int    `json:"day"`
}

type InterestParams struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
	Day      int    `json:"day"`
}

type RemovedResult struct {
	Removed int `json:"removed"`
}

type CreateParams struct {
	Settings WireSettings    `json:"settings"`
	Cash     decimal.Decimal `json:"cash"`
}

type CreateResult struct {
	GameID string `json:"game_id"`
}

type ErrorBody struct {
	Error string `json:"error"`
}

// Websocket methods.
const (
	MethodGameState     = "game_state"
	MethodNextPrice     = "next_price"
	MethodPause         = "pause"
	MethodResume        = "resume"
	MethodSubmitOrder   = "submit_order"
	MethodDayOrders     = "day_orders"
	MethodInterest      = "interest"
	MethodRemovePending = "remove_pending"
	MethodCreateGame    = "create_game"
)

// Envelope frames every websocket message. Responses echo the request id.
type Envelope struct {
	ID     string          `json:"id"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
	Code   int             `json:"code,omitempty"`
}

// Settings converts to the engine's settings value.
func (w WireSettings) Settings() game.Settings {
	return game.Settings{
		GameType:    w.GameType,
		TicksPerDay: w.TicksPerDay,
		TradingDays: w.TradingDays,
		TickPeriod:  time.Duration(w.TickPeriodMs) * time.Millisecond,
		Volatility:  w.Volatility,
		Seed:        w.Seed,
	}
}

// SettingsToWire is the inverse of WireSettings.Settings.
func SettingsToWire(s game.Settings) WireSettings {
	return WireSettings{
		GameType:     s.GameType,
		TicksPerDay:  s.TicksPerDay,
		TradingDays:  s.TradingDays,
		TickPeriodMs: s.TickPeriod.Milliseconds(),
		Volatility:   s.Volatility,
		Seed:         s.Seed,
	}
}

// Order converts a server order. Fulfilled orders arrive confirmed.
func (w WireOrder) Order() orders.Order {
	status := orders.StatusConfirmed
	if w.Status == WireOrderPending {
		status = orders.StatusPending
	}
	return orders.Order{
		ID:          orders.ID(w.ID),
		ClientID:    w.ClientID,
		Quantity:    w.Quantity,
		Price:       w.Price,
		Status:      status,
		DayPlacedOn: w.Day,
		Timestamp:   w.Timestamp,
	}
}

// Player converts a wire player.
func (w WirePlayer) Player() (game.Player, error) {
	var role game.Role
	switch w.Role {
	case WireRolePlayer:
		role = game.RolePlayer
	case WireRoleBot:
		role = game.RoleBot
	default:
		return game.Player{}, fmt.Errorf("unknown player role %q", w.Role)
	}
	owned := make(map[market.StockID]int64, len(w.Owned))
	for k, v := range w.Owned {
		owned[market.StockID(k)] = v
	}
	return game.Player{ID: game.PlayerID(w.ID), Role: role, Cash: w.Cash, Owned: owned}, nil
}

// State converts the load payload. Only fulfilled orders are kept.
func (w WireState) State() (game.State, error) {
	st := game.State{
		ID:           game.ID(w.ID),
		StockID:      market.StockID(w.StockID),
		PriceHistory: w.PriceHistory,
		Settings:     w.Settings.Settings(),
	}
	for _, wp := range w.Players {
		p, err := wp.Player()
		if err != nil {
			return game.State{}, err
		}
		st.Players = append(st.Players, p)
	}
	for _, wo := range w.Orders {
		if wo.Status == WireOrderFulfilled {
			st.FulfilledOrders = append(st.FulfilledOrders, wo.Order())
		}
	}
	return st, nil
}

func (w WireInterest) Interest() game.Interest {
	return game.Interest{Earned: w.Earned, Paid: w.Paid}
}

func ordersFromWire(ws []WireOrder) []orders.Order {
	out := make([]orders.Order, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Order())
	}
	return out
}

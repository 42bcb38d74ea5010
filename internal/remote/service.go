// Package remote is the client side of the game service: the operations the
// tick engine consumes, their wire format, and HTTP and websocket transports.
package remote

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zappabad/solotrader/internal/game"
	"github.com/zappabad/solotrader/internal/market"
	"github.com/zappabad/solotrader/internal/orders"
)

// GameService is everything the engine asks of the game service.
type GameService interface {
	// FetchGameState is called once at load.
	FetchGameState(ctx context.Context, id game.ID) (game.State, error)
	// FetchNextPrice generates the next tick of the current day.
	FetchNextPrice(ctx context.Context, id game.ID, day int) (PriceUpdate, error)
	// NotifyPause is best-effort.
	NotifyPause(ctx context.Context, id game.ID, remaining time.Duration) error
	// NotifyResume is awaited before the delayed tick is scheduled.
	NotifyResume(ctx context.Context, id game.ID) error
	SubmitOrder(ctx context.Context, id game.ID, req OrderRequest) (orders.Order, error)
	FetchDayOrders(ctx context.Context, id game.ID, stock market.StockID, day int) ([]orders.Order, error)
	FetchInterest(ctx context.Context, id game.ID, player game.PlayerID, day int) (game.Interest, error)
	// RemovePendingOrders deletes orders left unfulfilled by an earlier session.
	RemovePendingOrders(ctx context.Context, id game.ID) (int, error)
	CreateGame(ctx context.Context, req CreateRequest) (game.ID, error)
}

// PriceUpdate is the result of a price fetch.
type PriceUpdate struct {
	Price decimal.Decimal
	Cash  decimal.Decimal
}

// OrderRequest places an order at the price shown when it was entered.
type OrderRequest struct {
	ClientID string
	PlayerID game.PlayerID
	Quantity int64
	Price    decimal.Decimal
	Day      int
}

// CreateRequest starts a new solo game.
type CreateRequest struct {
	Settings game.Settings
	Cash     decimal.Decimal
}

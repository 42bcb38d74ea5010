package game

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zappabad/solotrader/internal/market"
	"github.com/zappabad/solotrader/internal/orders"
)

// TypeSolo is the only game type this client can drive.
const TypeSolo = "Base game (solo)"

// ID identifies a game on the game service.
type ID string

// PlayerID identifies a player within a game.
type PlayerID string

// Role distinguishes the human player from server-side bots.
type Role uint8

const (
	RolePlayer Role = iota
	RoleBot
)

func (r Role) String() string {
	switch r {
	case RolePlayer:
		return "Player"
	case RoleBot:
		return "Bot"
	default:
		return "Unknown"
	}
}

// Player is a participant as reported by the game service.
type Player struct {
	ID    PlayerID
	Role  Role
	Cash  decimal.Decimal
	Owned map[market.StockID]int64
}

// Settings is the immutable per-game configuration, produced once at load.
type Settings struct {
	GameType    string
	TicksPerDay int
	TradingDays int
	TickPeriod  time.Duration
	Volatility  decimal.Decimal
	Seed        string
}

// Validate reports settings the tick engine cannot run with.
func (s Settings) Validate() error {
	if s.TicksPerDay <= 0 {
		return fmt.Errorf("%w: ticks per day must be positive, got %d", ErrInvalidSettings, s.TicksPerDay)
	}
	if s.TradingDays <= 0 {
		return fmt.Errorf("%w: trading days must be positive, got %d", ErrInvalidSettings, s.TradingDays)
	}
	if s.TickPeriod <= 0 {
		return fmt.Errorf("%w: tick period must be positive, got %s", ErrInvalidSettings, s.TickPeriod)
	}
	return nil
}

// State is the game snapshot fetched once when a game is loaded.
type State struct {
	ID              ID
	StockID         market.StockID
	PriceHistory    []decimal.Decimal
	Players         []Player
	Settings        Settings
	FulfilledOrders []orders.Order
}

// HumanPlayer returns the first player with the Player role.
func (s State) HumanPlayer() (Player, bool) {
	for _, p := range s.Players {
		if p.Role == RolePlayer {
			return p, true
		}
	}
	return Player{}, false
}

// Interest is the interest credited and charged to a player over one trading day.
type Interest struct {
	Earned decimal.Decimal
	Paid   decimal.Decimal
}

// DaySummary is what the end-of-day dialog shows.
type DaySummary struct {
	Day      int
	Orders   []orders.Order
	Interest Interest
	Final    bool
}

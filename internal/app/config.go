package app

import (
	"github.com/google/uuid"
	"github.com/zappabad/solotrader/internal/config"
	"github.com/zappabad/solotrader/internal/game"
	"github.com/zappabad/solotrader/internal/remote"
	"github.com/zappabad/solotrader/internal/session"
)

// SessionConfig maps the engine section of cfg onto the session loop.
func SessionConfig(cfg *config.Config) session.Config {
	sc := session.DefaultConfig()
	sc.MinimumDelay = cfg.Engine.MinimumDelay
	sc.PriceRetry = remote.RetryPolicy{
		Retries: cfg.Engine.PriceRetries,
		Base:    cfg.Engine.RetryBase,
		Max:     cfg.Engine.RetryMax,
	}
	sc.RequestTimeout = cfg.Server.RequestTimeout
	sc.MaxDigits = cfg.Engine.MaxDigits
	sc.OrderHistory = cfg.Engine.OrderHistory
	sc.SnapshotBuffer = cfg.Engine.SnapshotBuffer
	return sc
}

// NewGameRequest builds the create request for a fresh solo game. An empty
// seed gets a random one so every new game walks differently.
func NewGameRequest(cfg *config.Config) remote.CreateRequest {
	ng := cfg.NewGame
	seed := ng.Seed
	if seed == "" {
		seed = uuid.NewString()
	}
	return remote.CreateRequest{
		Settings: game.Settings{
			GameType:    game.TypeSolo,
			TicksPerDay: ng.TicksPerDay,
			TradingDays: ng.TradingDays,
			TickPeriod:  ng.TickPeriod,
			Volatility:  ng.Volatility,
			Seed:        seed,
		},
		Cash: ng.StartingCash,
	}
}

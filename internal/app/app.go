// Package app wires the game service client, local storage and the tick
// engine together and manages their lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/zappabad/solotrader/internal/config"
	"github.com/zappabad/solotrader/internal/game"
	"github.com/zappabad/solotrader/internal/remote"
	"github.com/zappabad/solotrader/internal/session"
	"github.com/zappabad/solotrader/internal/storage"
)

// App owns all the client subsystems.
type App struct {
	Service remote.GameService
	Store   *storage.Store
	Session *session.Session

	cfg *config.Config
	log *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan error
	started bool
}

// New connects to the game service and opens local storage. Nothing ticks
// until Start.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{cfg: cfg, log: logger.With("module", "app")}

	switch cfg.Server.Transport {
	case "ws":
		ws, err := remote.DialWS(ctx, cfg.Server.URL, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to game service: %w", err)
		}
		a.Service = ws
	default:
		a.Service = remote.NewHTTPClient(cfg.Server.URL, cfg.Server.RequestTimeout, logger)
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		a.closeService()
		return nil, err
	}
	a.Store = store

	a.Session = session.New(SessionConfig(cfg), session.Deps{
		Service: a.Service,
		Logger:  logger,
	})
	return a, nil
}

// Resolve returns the game to play: the remembered one unless fresh is set
// or the service no longer knows it, otherwise a newly created game.
func (a *App) Resolve(ctx context.Context, fresh bool) (game.ID, error) {
	if !fresh {
		saved, ok, err := a.Store.CurrentGame()
		if err != nil {
			return "", fmt.Errorf("read saved game: %w", err)
		}
		if ok {
			_, err := a.Service.FetchGameState(ctx, saved.ID)
			switch {
			case err == nil:
				a.log.Info("continuing saved game", "game", saved.ID)
				return saved.ID, nil
			case errors.Is(err, remote.ErrNotFound):
				a.log.Warn("saved game no longer exists", "game", saved.ID)
				if err := a.Store.ForgetCurrentGame(); err != nil {
					return "", err
				}
			default:
				return "", fmt.Errorf("check saved game: %w", err)
			}
		}
	}

	req := NewGameRequest(a.cfg)
	id, err := a.Service.CreateGame(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create game: %w", err)
	}
	if err := a.Store.SaveCurrentGame(id, req.Settings); err != nil {
		return "", fmt.Errorf("save game: %w", err)
	}
	a.log.Info("created game", "game", id, "ticks_per_day", req.Settings.TicksPerDay, "trading_days", req.Settings.TradingDays)
	return id, nil
}

// Start runs the session loop and loads game id into it.
func (a *App) Start(ctx context.Context, id game.ID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return errors.New("app already started")
	}
	a.started = true

	ctx, a.cancel = context.WithCancel(ctx)
	a.done = make(chan error, 1)
	go func() {
		a.done <- a.Session.Run(ctx)
	}()
	return a.Session.Load(id)
}

// Close shuts down all subsystems in reverse dependency order.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Stop the engine first
	if a.cancel != nil {
		a.cancel()
		<-a.done
		a.cancel = nil
	}
	a.Session.Close()

	a.closeService()

	// Storage last
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.log.Warn("close storage", "err", err)
		}
	}
}

func (a *App) closeService() {
	if c, ok := a.Service.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.log.Warn("close service", "err", err)
		}
	}
}

// Package mockserver is an in-memory game service for local play and tests.
// It speaks the same JSON bodies as the remote clients over HTTP and websocket.
package mockserver

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/zappabad/solotrader/internal/game"
	"github.com/zappabad/solotrader/internal/market"
	"github.com/zappabad/solotrader/internal/remote"
)

type apiError struct {
	Code int
	Msg  string
}

func (e *apiError) Error() string { return e.Msg }

func errf(code int, format string, args ...any) *apiError {
	return &apiError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

type soloGame struct {
	id       string
	stock    string
	settings remote.WireSettings
	rng      *rand.Rand

	prices   []decimal.Decimal
	player   remote.WirePlayer
	orders   []remote.WireOrder
	clientID map[string]int // client order id -> index into orders
	interest map[int]remote.WireInterest

	paused      bool
	remainingMs int64
}

func (g *soloGame) generated() int {
	return len(g.prices) - market.SeedWindow
}

// day returns the trading day the next generated tick belongs to.
func (g *soloGame) day() int {
	return g.generated()/g.settings.TicksPerDay + 1
}

func (g *soloGame) over() bool {
	return g.generated() >= g.settings.TicksPerDay*g.settings.TradingDays
}

// Server holds every game in memory.
type Server struct {
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
	upgrader websocket.Upgrader

	mu    sync.Mutex
	games map[string]*soloGame
}

// New creates an empty Server.
func New(cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:    cfg.withDefaults(),
		logger: logger.With("module", "mockserver"),
		now:    time.Now,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		games: make(map[string]*soloGame),
	}
}

func seedOf(s string) int64 {
	if s == "" {
		return time.Now().UnixNano()
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64())
}

// walk returns max(0, p + U(-2.5, 3.5) * volatility), rounded to cents.
func (g *soloGame) walk(p decimal.Decimal) decimal.Decimal {
	step := decimal.NewFromFloat(g.rng.Float64()*6 - 2.5)
	if g.settings.Volatility.IsPositive() {
		step = step.Mul(g.settings.Volatility)
	}
	next := p.Add(step).Round(2)
	if next.IsNegative() {
		return decimal.Zero
	}
	return next
}

func (s *Server) game(id string) (*soloGame, *apiError) {
	g, ok := s.games[id]
	if !ok {
		return nil, errf(http.StatusNotFound, "game %q not found", id)
	}
	return g, nil
}

func (s *Server) createGame(p remote.CreateParams) (remote.CreateResult, *apiError) {
	settings := p.Settings.Settings()
	if settings.GameType == "" {
		settings.GameType = game.TypeSolo
	}
	if err := settings.Validate(); err != nil {
		return remote.CreateResult{}, errf(http.StatusBadRequest, "%v", err)
	}
	cash := p.Cash
	if cash.IsZero() {
		cash = s.cfg.StartCash
	}

	g := &soloGame{
		id:       uuid.NewString(),
		stock:    s.cfg.StockID,
		settings: remote.SettingsToWire(settings),
		rng:      rand.New(rand.NewSource(seedOf(settings.Seed))),
		player: remote.WirePlayer{
			ID:    uuid.NewString(),
			Role:  remote.WireRolePlayer,
			Cash:  cash,
			Owned: map[string]int64{s.cfg.StockID: 0},
		},
		clientID: make(map[string]int),
		interest: make(map[int]remote.WireInterest),
	}
	price := s.cfg.StartPrice
	for i := 0; i < market.SeedWindow; i++ {
		g.prices = append(g.prices, price)
		price = g.walk(price)
	}

	s.mu.Lock()
	s.games[g.id] = g
	s.mu.Unlock()

	s.logger.Info("game created", "game", g.id, "ticks_per_day", settings.TicksPerDay, "days", settings.TradingDays)
	return remote.CreateResult{GameID: g.id}, nil
}

func (s *Server) gameState(id string) (remote.WireState, *apiError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, aerr := s.game(id)
	if aerr != nil {
		return remote.WireState{}, aerr
	}

	owned := make(map[string]int64, len(g.player.Owned))
	for k, v := range g.player.Owned {
		owned[k] = v
	}
	player := g.player
	player.Owned = owned

	return remote.WireState{
		ID:           g.id,
		StockID:      g.stock,
		PriceHistory: append([]decimal.Decimal(nil), g.prices...),
		Players:      []remote.WirePlayer{player},
		Settings:     g.settings,
		Orders:       append([]remote.WireOrder(nil), g.orders...),
	}, nil
}

func (s *Server) nextPrice(id string, p remote.NextPriceParams) (remote.NextPriceResult, *apiError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, aerr := s.game(id)
	if aerr != nil {
		return remote.NextPriceResult{}, aerr
	}
	if g.over() {
		return remote.NextPriceResult{}, errf(http.StatusConflict, "game %s is over", id)
	}
	if p.Day != g.day() {
		return remote.NextPriceResult{}, errf(http.StatusConflict, "day %d requested, game is on day %d", p.Day, g.day())
	}

	price := g.walk(g.prices[len(g.prices)-1])
	g.prices = append(g.prices, price)
	g.paused = false

	s.fulfillPending(g, price)
	if g.generated()%g.settings.TicksPerDay == 0 {
		s.applyInterest(g, p.Day)
	}
	return remote.NextPriceResult{Price: price, Cash: g.player.Cash}, nil
}

func (s *Server) fulfillPending(g *soloGame, price decimal.Decimal) {
	for i := range g.orders {
		o := &g.orders[i]
		if o.Status != remote.WireOrderPending {
			continue
		}
		o.Price = price
		s.fill(g, o)
	}
}

func (s *Server) fill(g *soloGame, o *remote.WireOrder) {
	o.Status = remote.WireOrderFulfilled
	g.player.Cash = g.player.Cash.Sub(o.Price.Mul(decimal.NewFromInt(o.Quantity)))
	g.player.Owned[g.stock] += o.Quantity
}

func (s *Server) applyInterest(g *soloGame, day int) {
	var in remote.WireInterest
	switch {
	case g.player.Cash.IsPositive():
		in.Earned = g.player.Cash.Mul(s.cfg.InterestRate).Round(2)
	case g.player.Cash.IsNegative():
		in.Paid = g.player.Cash.Neg().Mul(s.cfg.BorrowRate).Round(2)
	}
	g.player.Cash = g.player.Cash.Add(in.Earned).Sub(in.Paid)
	g.interest[day] = in
	s.logger.Debug("day closed", "game", g.id, "day", day, "earned", in.Earned, "paid", in.Paid)
}

func (s *Server) pause(id string, p remote.PauseParams) *apiError {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, aerr := s.game(id)
	if aerr != nil {
		return aerr
	}
	g.paused = true
	g.remainingMs = p.RemainingMs
	s.logger.Debug("paused", "game", id, "remaining_ms", p.RemainingMs)
	return nil
}

func (s *Server) resume(id string) *apiError {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, aerr := s.game(id)
	if aerr != nil {
		return aerr
	}
	g.paused = false
	s.logger.Debug("resumed", "game", id, "remaining_ms", g.remainingMs)
	return nil
}

func (s *Server) submitOrder(id string, p remote.SubmitParams) (remote.WireOrder, *apiError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, aerr := s.game(id)
	if aerr != nil {
		return remote.WireOrder{}, aerr
	}
	if p.PlayerID != g.player.ID {
		return remote.WireOrder{}, errf(http.StatusNotFound, "player %q not found", p.PlayerID)
	}
	if p.Quantity == 0 {
		return remote.WireOrder{}, errf(http.StatusBadRequest, "quantity must be non-zero")
	}
	if p.ClientID != "" {
		if i, ok := g.clientID[p.ClientID]; ok {
			return g.orders[i], nil
		}
	}

	o := remote.WireOrder{
		ID:        uuid.NewString(),
		ClientID:  p.ClientID,
		PlayerID:  p.PlayerID,
		Quantity:  p.Quantity,
		Price:     p.Price,
		Day:       p.Day,
		Status:    remote.WireOrderPending,
		Timestamp: s.now().UTC(),
	}
	if !s.cfg.FulfillOnNextTick {
		s.fill(g, &o)
	}
	g.orders = append(g.orders, o)
	if p.ClientID != "" {
		g.clientID[p.ClientID] = len(g.orders) - 1
	}
	return o, nil
}

func (s *Server) dayOrders(p remote.DayOrdersParams) ([]remote.WireOrder, *apiError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, aerr := s.game(p.GameID)
	if aerr != nil {
		return nil, aerr
	}
	if p.StockID != g.stock {
		return nil, errf(http.StatusNotFound, "stock %q not found", p.StockID)
	}
	out := []remote.WireOrder{}
	for _, o := range g.orders {
		if o.Day == p.Day && o.Status == remote.WireOrderFulfilled {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *Server) interest(p remote.InterestParams) (remote.WireInterest, *apiError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, aerr := s.game(p.GameID)
	if aerr != nil {
		return remote.WireInterest{}, aerr
	}
	if p.PlayerID != g.player.ID {
		return remote.WireInterest{}, errf(http.StatusNotFound, "player %q not found", p.PlayerID)
	}
	return g.interest[p.Day], nil
}

func (s *Server) removePending(id string) (remote.RemovedResult, *apiError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, aerr := s.game(id)
	if aerr != nil {
		return remote.RemovedResult{}, aerr
	}
	kept := g.orders[:0]
	removed := 0
	for _, o := range g.orders {
		if o.Status == remote.WireOrderPending {
			removed++
			continue
		}
		kept = append(kept, o)
	}
	g.orders = kept
	g.clientID = make(map[string]int, len(kept))
	for i, o := range kept {
		if o.ClientID != "" {
			g.clientID[o.ClientID] = i
		}
	}
	return remote.RemovedResult{Removed: removed}, nil
}

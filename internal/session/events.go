package session

import (
	"github.com/zappabad/solotrader/internal/game"
	"github.com/zappabad/solotrader/internal/orders"
	"github.com/zappabad/solotrader/internal/remote"
)

// event is anything the loop handles. Handlers never run concurrently.
type event interface {
	isEvent()
}

// loadCmd starts loading a game.
type loadCmd struct {
	id game.ID
}

// keyEvent is a terminal key name, e.g. "enter", " " or "7".
type keyEvent struct {
	key string
}

// timerEvent is posted by a scheduler timer.
type timerEvent struct {
	gen uint64
}

// pulseEvent ends a broker feedback pulse.
type pulseEvent struct {
	seq uint64
}

// bannerExpired hides the removed-pending notice.
type bannerExpired struct {
	seq uint64
}

type loadResult struct {
	id    game.ID
	state game.State
	err   error
}

type pendingRemoved struct {
	id      game.ID
	removed int
	err     error
}

type priceResult struct {
	epoch    uint64
	seq      uint64
	day      int
	update   remote.PriceUpdate
	attempts int
	err      error
}

type resumeAck struct {
	gen uint64
	err error
}

type orderResult struct {
	req   remote.OrderRequest
	order orders.Order
	err   error
}

type summaryResult struct {
	day      int
	orders   []orders.Order
	interest game.Interest
	err      error
}

func (loadCmd) isEvent()        {}
func (keyEvent) isEvent()       {}
func (timerEvent) isEvent()     {}
func (pulseEvent) isEvent()     {}
func (bannerExpired) isEvent()  {}
func (loadResult) isEvent()     {}
func (pendingRemoved) isEvent() {}
func (priceResult) isEvent()    {}
func (resumeAck) isEvent()      {}
func (orderResult) isEvent()    {}
func (summaryResult) isEvent()  {}

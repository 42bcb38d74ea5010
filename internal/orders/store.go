package orders

// Store is the newest-first log of orders placed in a game.
// It is owned by the session loop; reads return copies.
type Store struct {
	orders   []Order
	capacity int
}

// NewStore creates a Store that retains at most capacity orders.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Store{
		orders:   make([]Order, 0, 16),
		capacity: capacity,
	}
}

// Load seeds the store with orders already fulfilled on the server, given oldest first.
// They are treated as confirmed so they age out of the recent view on the next tick.
func (s *Store) Load(fulfilled []Order) {
	for _, o := range fulfilled {
		if o.Status == StatusPending {
			o.Status = StatusConfirmed
		}
		s.Unshift(o)
	}
}

// Unshift places o at the top of the log.
func (s *Store) Unshift(o Order) {
	if len(s.orders) >= s.capacity {
		// drop oldest
		s.orders = s.orders[:len(s.orders)-1]
	}
	s.orders = append(s.orders, Order{})
	copy(s.orders[1:], s.orders[:len(s.orders)-1])
	s.orders[0] = o
}

// Promote advances every non-hidden order by exactly one status step.
// It returns the number of orders whose status changed.
func (s *Store) Promote() int {
	n := 0
	for i := range s.orders {
		if s.orders[i].Status == StatusHidden {
			continue
		}
		s.orders[i].Status = s.orders[i].Status.Next()
		n++
	}
	return n
}

// Visible returns the orders shown in the recent-orders list, newest first.
func (s *Store) Visible() []Order {
	var out []Order
	for _, o := range s.orders {
		if o.Status != StatusHidden {
			out = append(out, o)
		}
	}
	return out
}

// All returns a copy of every retained order, newest first.
func (s *Store) All() []Order {
	out := make([]Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// Day returns the orders placed on the given trading day, newest first.
func (s *Store) Day(day int) []Order {
	var out []Order
	for _, o := range s.orders {
		if o.DayPlacedOn == day {
			out = append(out, o)
		}
	}
	return out
}

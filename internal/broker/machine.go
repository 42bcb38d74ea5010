// Package broker interprets raw key presses into order-entry intent.
// Reduce is pure; routing keys here only while the scheduler runs is the caller's job.
package broker

import "strconv"

// DefaultMaxDigits bounds the quantity buffer so it always fits in an int64.
const DefaultMaxDigits = 9

// Machine reduces key presses against a State.
type Machine struct {
	maxDigits int
}

// NewMachine creates a Machine. A non-positive maxDigits selects DefaultMaxDigits.
func NewMachine(maxDigits int) Machine {
	if maxDigits <= 0 || maxDigits > 18 {
		maxDigits = DefaultMaxDigits
	}
	return Machine{maxDigits: maxDigits}
}

// Initial is the state at game load and after every day advance.
func Initial() State {
	return State{Mode: ModeBuy}
}

// Reduce applies one key to s. Keys are terminal key names: "0".."9", "backspace",
// "enter", "b", "+", "s", "-"; anything else is ignored.
func (m Machine) Reduce(s State, key string) (State, Effect) {
	switch key {
	case "enter":
		if s.Buffer == "" {
			return s, Effect{}
		}
		qty, err := strconv.ParseInt(s.Buffer, 10, 64)
		s.Buffer = ""
		if err != nil || qty == 0 {
			return s, Effect{}
		}
		if s.Mode == ModeSell {
			qty = -qty
		}
		s.Guard = true
		return s, Effect{Kind: EffectSubmit, Mode: s.Mode, Quantity: qty}

	case "backspace":
		if n := len(s.Buffer); n > 0 {
			s.Buffer = s.Buffer[:n-1]
		}
		return s, Effect{}

	case "b", "+":
		s.Mode = ModeBuy
		s.Guard = true
		return s, Effect{Kind: EffectPulse, Mode: s.Mode}

	case "s", "-":
		s.Mode = ModeSell
		s.Guard = true
		return s, Effect{Kind: EffectPulse, Mode: s.Mode}
	}

	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return s, Effect{}
	}
	if s.Buffer == "" && key == "0" {
		return s, Effect{}
	}
	if len(s.Buffer) >= m.maxDigits {
		return s, Effect{}
	}
	s.Buffer += key
	return s, Effect{}
}

// ClearGuard ends the visual-feedback pulse.
func ClearGuard(s State) State {
	s.Guard = false
	return s
}

package broker

// Mode is the side the next submitted quantity is placed on.
type Mode uint8

const (
	ModeBuy Mode = iota
	ModeSell
)

func (m Mode) String() string {
	switch m {
	case ModeBuy:
		return "Buy"
	case ModeSell:
		return "Sell"
	default:
		return "Unknown"
	}
}

// State is the order-entry overlay state.
type State struct {
	Mode   Mode
	Buffer string // digits typed so far; never has a leading zero
	// Guard is set while a visual-feedback pulse is showing. It has no effect on input handling.
	Guard bool
}

// EffectKind says what the caller should do after a key was reduced.
type EffectKind uint8

const (
	EffectNone EffectKind = iota
	// EffectPulse flashes the mode colour after a mode key.
	EffectPulse
	// EffectSubmit places an order for Effect.Quantity at the current price.
	EffectSubmit
)

func (k EffectKind) String() string {
	switch k {
	case EffectNone:
		return "NONE"
	case EffectPulse:
		return "PULSE"
	case EffectSubmit:
		return "SUBMIT"
	default:
		return "UNKNOWN"
	}
}

// Effect is the outcome of one key.
type Effect struct {
	Kind     EffectKind
	Mode     Mode
	Quantity int64 // signed; negative sells. Only set for EffectSubmit.
}

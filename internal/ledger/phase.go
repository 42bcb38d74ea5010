package ledger

import "errors"

// Phase is where the current trading day stands in its end-of-day sequence.
type Phase uint8

const (
	// PhaseTrading: ticks are being generated.
	PhaseTrading Phase = iota
	// PhaseGate: the day is complete and its summary is being fetched.
	PhaseGate
	// PhaseAwaitContinue: the summary is ready; the next key press opens it.
	PhaseAwaitContinue
	// PhaseSummary: the summary dialog is open until the day is advanced.
	PhaseSummary
	// PhaseGameOver: the final day is complete.
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseTrading:
		return "TRADING"
	case PhaseGate:
		return "GATE"
	case PhaseAwaitContinue:
		return "AWAIT_CONTINUE"
	case PhaseSummary:
		return "SUMMARY"
	case PhaseGameOver:
		return "GAME_OVER"
	default:
		return "UNKNOWN"
	}
}

// Gated reports whether start/stop toggles must be rejected in this phase.
func (p Phase) Gated() bool {
	return p != PhaseTrading
}

var (
	ErrShortHistory = errors.New("price history shorter than the seed window")
	ErrDayComplete  = errors.New("trading day already complete")
	ErrWrongPhase   = errors.New("operation not valid in the current phase")
	ErrFinalDay     = errors.New("final trading day already reached")
)

package game

import "fmt"

// Phase is the round lifecycle state.
type Phase int

const (
	// PhaseOpen allows purchases and rejects draws.
	PhaseOpen Phase = iota
	// PhaseLocked rejects purchases and allows a draw.
	PhaseLocked
)

func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "open"
	case PhaseLocked:
		return "locked"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// MarshalText renders the phase by name in JSON payloads.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Event drives a phase transition.
type Event int

const (
	EventPurchase Event = iota
	EventDraw
)

func (e Event) String() string {
	switch e {
	case EventPurchase:
		return "purchase"
	case EventDraw:
		return "draw"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// NextPhase computes the phase after evt. Illegal transitions return the
// current phase and an error wrapping the matching guard error.
func NextPhase(cur Phase, evt Event) (Phase, error) {
	switch cur {
	case PhaseOpen:
		if evt == EventPurchase {
			return PhaseLocked, nil
		}
		return cur, fmt.Errorf("%w: %s --%s--> ?", ErrRoundOpen, cur, evt)
	case PhaseLocked:
		if evt == EventDraw {
			return PhaseOpen, nil
		}
		return cur, fmt.Errorf("%w: %s --%s--> ?", ErrRoundLocked, cur, evt)
	}
	return cur, fmt.Errorf("invalid transition: %s --%s--> ?", cur, evt)
}

package types

// SignalDirection is the last resolved signal of a bar. Only the entry edge trigger reads it.
type SignalDirection int

const (
	SignalDirectionNone  SignalDirection = 0
	SignalDirectionLong  SignalDirection = 1
	SignalDirectionShort SignalDirection = -1
)

// ResolveSignal collapses a bar's two signal columns; long wins when both are set.
func ResolveSignal(bar Bar) SignalDirection {
	switch {
	case bar.IsLong():
		return SignalDirectionLong
	case bar.IsShort():
		return SignalDirectionShort
	default:
		return SignalDirectionNone
	}
}

func (s SignalDirection) String() string {
	switch s {
	case SignalDirectionLong:
		return "long"
	case SignalDirectionShort:
		return "short"
	default:
		return "none"
	}
}

package types

type Signal int8

const (
	SignalNone Signal = iota
	SignalBuy
	SignalSell
)

func (s Signal) String() string {
	switch s {
	case SignalBuy:
		return "BUY"
	case SignalSell:
		return "SELL"
	default:
		return "NONE"
	}
}

// ParseSignal is the inverse of Signal.String. Unknown values map to SignalNone.
func ParseSignal(s string) Signal {
	switch s {
	case "BUY":
		return SignalBuy
	case "SELL":
		return SignalSell
	default:
		return SignalNone
	}
}

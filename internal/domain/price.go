package domain

import "fmt"

// Price is a resolved USD price or the distinguished Unknown value.
// Zero is a legitimate price; Unknown is not zero. Callers must check
// Known before using Value.
type Price struct {
	Value float64
	Known bool
}

// UnknownPrice is the sentinel for "no provider could resolve a price".
var UnknownPrice = Price{}

// KnownPrice wraps a resolved USD price.
func KnownPrice(v float64) Price {
	return Price{Value: v, Known: true}
}

// Sub returns the difference p - other, or Unknown if either side is unknown.
func (p Price) Sub(other Price) Price {
	if !p.Known || !other.Known {
		return UnknownPrice
	}
	return KnownPrice(p.Value - other.Value)
}

func (p Price) String() string {
	if !p.Known {
		return "unknown"
	}
	return fmt.Sprintf("%g", p.Value)
}

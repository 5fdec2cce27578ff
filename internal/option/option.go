// Package option defines vanilla option contracts and their payoffs.
package option

import (
	"fmt"
	"math"
	"strings"
)

// Right selects the payoff side of a vanilla option.
type Right int

const (
	Call Right = iota
	Put
)

func (r Right) String() string {
	switch r {
	case Call:
		return "CALL"
	case Put:
		return "PUT"
	}
	return fmt.Sprintf("Right(%d)", int(r))
}

// ParseRight accepts "call"/"c" and "put"/"p", case-insensitively.
func ParseRight(s string) (Right, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return 0, fmt.Errorf("unknown option right %q", s)
}

// Style is the exercise style of an option.
type Style int

const (
	European Style = iota
	American
)

func (s Style) String() string {
	switch s {
	case European:
		return "EUROPEAN"
	case American:
		return "AMERICAN"
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// ParseStyle accepts "european" and "american", case-insensitively.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "european", "eu":
		return European, nil
	case "american", "am":
		return American, nil
	}
	return 0, fmt.Errorf("unknown exercise style %q", s)
}

// Contract is a vanilla option on a single underlying.
type Contract struct {
	Strike         float64
	TimeToMaturity float64 // years
	Right          Right
	Style          Style
}

// NewEuropean returns a European contract.
func NewEuropean(right Right, strike, ttm float64) Contract {
	return Contract{Strike: strike, TimeToMaturity: ttm, Right: right, Style: European}
}

// NewAmerican returns an American contract. Such contracts can be described
// but not priced.
func NewAmerican(right Right, strike, ttm float64) Contract {
	return Contract{Strike: strike, TimeToMaturity: ttm, Right: right, Style: American}
}

func (c Contract) String() string {
	return fmt.Sprintf("%s %s K=%g T=%g", c.Style, c.Right, c.Strike, c.TimeToMaturity)
}

// Payoff is the contract's payoff for terminal value s.
func (c Contract) Payoff(s float64) float64 {
	return Payoff(s, c.Strike, c.Right)
}

// PayoffBatch is the contract's payoff for every terminal value.
func (c Contract) PayoffBatch(terminal []float64) []float64 {
	return PayoffBatch(terminal, c.Strike, c.Right)
}

// Payoff returns max(s-k, 0) for calls and max(k-s, 0) for puts.
func Payoff(s, k float64, r Right) float64 {
	switch r {
	case Call:
		return math.Max(s-k, 0)
	case Put:
		return math.Max(k-s, 0)
	}
	panic(fmt.Sprintf("option: unhandled right %v", r))
}

// PayoffBatch applies Payoff to every element of terminal and returns a new slice.
func PayoffBatch(terminal []float64, k float64, r Right) []float64 {
	out := make([]float64, len(terminal))
	switch r {
	case Call:
		for i, s := range terminal {
			out[i] = math.Max(s-k, 0)
		}
	case Put:
		for i, s := range terminal {
			out[i] = math.Max(k-s, 0)
		}
	default:
		panic(fmt.Sprintf("option: unhandled right %v", r))
	}
	return out
}

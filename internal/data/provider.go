// Package data supplies market inputs for a pricing run.
package data

import (
	"context"
	"fmt"
	"math"
	"time"
)

// SpotProvider supplies the current price of an underlying.
type SpotProvider interface {
	Spot(ctx context.Context, ticker string) (float64, error)
}

// Bar is a simplified OHLC aggregate.
type Bar struct {
	Date  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
	Vol   float64
}

// staticProvider returns a fixed, configured spot for every ticker.
type staticProvider struct {
	spot float64
}

// NewStaticProvider returns a provider that always reports spot.
func NewStaticProvider(spot float64) SpotProvider {
	return &staticProvider{spot: spot}
}

func (p *staticProvider) Spot(_ context.Context, _ string) (float64, error) {
	if math.IsNaN(p.spot) || math.IsInf(p.spot, 0) {
		return 0, fmt.Errorf("static spot %v is not finite", p.spot)
	}
	return p.spot, nil
}

// Package model holds the asset models driven by the path simulator.
package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidModel is returned by New for unusable model parameters.
var ErrInvalidModel = errors.New("invalid model parameters")

// BlackScholes is a geometric Brownian motion under the risk-neutral measure
// with a constant rate and volatility.
type BlackScholes struct {
	Rate       float64 // annual risk-free rate
	Volatility float64 // annualized volatility, >= 0
}

// New validates rate and vol and returns the model.
func New(rate, vol float64) (BlackScholes, error) {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return BlackScholes{}, fmt.Errorf("%w: rate %v is not finite", ErrInvalidModel, rate)
	}
	if math.IsNaN(vol) || math.IsInf(vol, 0) {
		return BlackScholes{}, fmt.Errorf("%w: volatility %v is not finite", ErrInvalidModel, vol)
	}
	if vol < 0 {
		return BlackScholes{}, fmt.Errorf("%w: volatility %v is negative", ErrInvalidModel, vol)
	}
	return BlackScholes{Rate: rate, Volatility: vol}, nil
}

// DiscountFactor returns exp(-Rate*horizon). Negative horizons are not rejected.
func (m BlackScholes) DiscountFactor(horizon float64) float64 {
	return math.Exp(-m.Rate * horizon)
}

// Growth is the drift-only factor applied by one Step of length dt.
func (m BlackScholes) Growth(dt float64) float64 {
	return 1 + m.Rate*dt
}

// Step advances every path by dt in place using the Euler scheme
//
//	S[i] *= 1 + r*dt + vol*sqrt(dt)*z[i]
//
// normals must hold at least len(prices) samples. The non-log form carries a
// discretization bias that vanishes as dt -> 0.
func (m BlackScholes) Step(prices []float64, dt float64, normals []float64) {
	drift := m.Rate * dt
	diffusion := m.Volatility * math.Sqrt(dt)
	normals = normals[:len(prices)]
	for i, z := range normals {
		prices[i] *= 1 + drift + diffusion*z
	}
}

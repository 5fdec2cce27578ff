package pricing

import (
	"math"

	"github.com/contactkeval/quantmc/internal/option"
)

// BlackScholesPrice is the closed-form price of a European option.
//
// Parameters:
//   - right: option.Call or option.Put
//   - S: spot price of the underlying asset
//   - K: strike price of the option
//   - T: time to expiry in years
//   - r: risk-free interest rate (annual)
//   - sigma: volatility of the underlying asset (annual, as a decimal)
//
// With T <= 0 the intrinsic value is returned. With sigma <= 0 the underlying
// grows deterministically at r and the discounted payoff of the forward is
// returned, which is the limit of the formula as sigma -> 0.
func BlackScholesPrice(right option.Right, S, K, T, r, sigma float64) float64 {
	if T <= 0 {
		return option.Payoff(S, K, right)
	}
	df := math.Exp(-r * T)
	if sigma <= 0 {
		return df * option.Payoff(S/df, K, right)
	}

	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	d2 := d1 - sigma*math.Sqrt(T)

	switch right {
	case option.Call:
		return S*normCDF(d1) - K*df*normCDF(d2)
	case option.Put:
		return K*df*normCDF(-d2) - S*normCDF(-d1)
	}
	panic("pricing: unhandled right " + right.String())
}

// normCDF computes the cumulative distribution function of the standard normal
// distribution through the error function.
func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

// Package pricing values European vanilla options by Monte Carlo simulation
// and provides the closed-form Black-Scholes reference.
package pricing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/contactkeval/quantmc/internal/logger"
	"github.com/contactkeval/quantmc/internal/model"
	"github.com/contactkeval/quantmc/internal/option"
	"github.com/contactkeval/quantmc/internal/sim"
)

// Pricer is a plain Monte Carlo estimator. It returns point estimates only.
type Pricer struct {
	sim *sim.Simulator
}

// NewPricer returns a Pricer that simulates with s. The caller owns the
// random source behind s and decides its seed.
func NewPricer(s *sim.Simulator) *Pricer {
	return &Pricer{sim: s}
}

// ComputePrice estimates the present value of c on an underlying at spot,
// averaging the discounted payoff over npaths paths of nsteps Euler steps.
//
// Returns an error wrapping ErrUnsupportedVariant for non-European contracts
// and ErrConfiguration for invalid inputs. Zero rate or zero volatility are
// valid and give a deterministic price.
func (p *Pricer) ComputePrice(m model.BlackScholes, c option.Contract, spot float64, npaths, nsteps int) (float64, error) {
	if err := Validate(m, c, spot, npaths, nsteps); err != nil {
		return 0, err
	}

	dt := c.TimeToMaturity / float64(nsteps)
	logger.Debugf("pricing %s spot=%g r=%g vol=%g npaths=%d nsteps=%d dt=%g",
		c, spot, m.Rate, m.Volatility, npaths, nsteps, dt)

	batch := make([]float64, npaths)
	for i := range batch {
		batch[i] = spot
	}

	terminal := p.sim.SimulateTerminal(m, batch, dt, nsteps)
	payoffs := c.PayoffBatch(terminal)
	floats.Scale(m.DiscountFactor(c.TimeToMaturity), payoffs)

	return stat.Mean(payoffs, nil), nil
}

// Validate checks every input of ComputePrice.
func Validate(m model.BlackScholes, c option.Contract, spot float64, npaths, nsteps int) error {
	if c.Style != option.European {
		return fmt.Errorf("%w: %s exercise", ErrUnsupportedVariant, c.Style)
	}
	switch c.Right {
	case option.Call, option.Put:
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedVariant, c.Right)
	}

	for _, f := range []struct {
		name string
		v    float64
	}{
		{"rate", m.Rate},
		{"volatility", m.Volatility},
		{"strike", c.Strike},
		{"time to maturity", c.TimeToMaturity},
		{"spot", spot},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s %v is not finite", ErrConfiguration, f.name, f.v)
		}
	}

	switch {
	case m.Volatility < 0:
		return fmt.Errorf("%w: volatility %v is negative", ErrConfiguration, m.Volatility)
	case c.TimeToMaturity <= 0:
		return fmt.Errorf("%w: time to maturity %v must be positive", ErrConfiguration, c.TimeToMaturity)
	case npaths <= 0:
		return fmt.Errorf("%w: npaths %d must be at least 1", ErrConfiguration, npaths)
	case nsteps <= 0:
		return fmt.Errorf("%w: nsteps %d must be at least 1", ErrConfiguration, nsteps)
	}
	return nil
}

package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/contactkeval/quantmc/internal/model"
	"github.com/contactkeval/quantmc/internal/option"
	"github.com/contactkeval/quantmc/internal/rng"
	"github.com/contactkeval/quantmc/internal/sim"
)

var standardModel = model.BlackScholes{Rate: 0.05, Volatility: 0.2}

func newPricer(seed uint64, opts ...sim.Option) *Pricer {
	return NewPricer(sim.New(rng.NewNormal(seed), opts...))
}

func TestComputePriceScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("full scenario is slow")
	}
	const (
		spot   = 100.0
		strike = 110.0
		npaths = 100000
		nsteps = 240
	)

	call, err := newPricer(2024).ComputePrice(standardModel, option.NewEuropean(option.Call, strike, 1), spot, npaths, nsteps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.IsNaN(call) || call < 5.5 || call > 6.6 {
		t.Fatalf("call price %v outside plausible band [5.5, 6.6]", call)
	}

	put, err := newPricer(2024).ComputePrice(standardModel, option.NewEuropean(option.Put, strike, 1), spot, npaths, nsteps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if put <= 0 {
		t.Fatalf("expected positive put price, got %v", put)
	}

	lhs := call - put
	rhs := spot - strike*standardModel.DiscountFactor(1)
	if !almostEqual(lhs, rhs, 0.25) {
		t.Fatalf("put-call parity violated: call-put=%v spot-K*df=%v", lhs, rhs)
	}
}

func TestComputePriceConverges(t *testing.T) {
	reference := BlackScholesPrice(option.Call, 100, 110, 1, 0.05, 0.2)
	c := option.NewEuropean(option.Call, 110, 1)

	// Tolerances are ~4 standard errors of the estimator plus a margin for
	// the Euler discretization bias.
	tests := []struct {
		npaths int
		tol    float64
	}{
		{npaths: 2000, tol: 1.05},
		{npaths: 200000, tol: 0.15},
	}

	for _, tt := range tests {
		price, err := newPricer(7).ComputePrice(standardModel, c, 100, tt.npaths, 50)
		if err != nil {
			t.Fatalf("npaths=%d: unexpected error: %v", tt.npaths, err)
		}
		if !almostEqual(price, reference, tt.tol) {
			t.Fatalf("npaths=%d: price %v not within %v of %v", tt.npaths, price, tt.tol, reference)
		}
	}
}

func TestComputePriceReproducibility(t *testing.T) {
	c := option.NewEuropean(option.Call, 110, 1)

	a, _ := newPricer(42).ComputePrice(standardModel, c, 100, 20000, 24)
	b, _ := newPricer(42).ComputePrice(standardModel, c, 100, 20000, 24)
	if a != b {
		t.Fatalf("same seed produced different prices: %v vs %v", a, b)
	}

	other, _ := newPricer(43).ComputePrice(standardModel, c, 100, 20000, 24)
	if other == a {
		t.Fatalf("different seeds produced identical prices: %v", a)
	}
	if !almostEqual(a, other, 0.5) {
		t.Fatalf("different seeds disagree beyond Monte Carlo noise: %v vs %v", a, other)
	}
}

func TestComputePriceParallelIsWorkerInvariant(t *testing.T) {
	c := option.NewEuropean(option.Put, 110, 1)

	base, err := newPricer(0, sim.WithSeed(9), sim.WithWorkers(2), sim.WithBlockSize(2500)).
		ComputePrice(standardModel, c, 100, 20000, 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, workers := range []int{4, 16} {
		got, _ := newPricer(0, sim.WithSeed(9), sim.WithWorkers(workers), sim.WithBlockSize(2500)).
			ComputePrice(standardModel, c, 100, 20000, 24)
		if got != base {
			t.Fatalf("workers=%d: %v vs %v", workers, got, base)
		}
	}
}

func TestComputePriceZeroVolatility(t *testing.T) {
	m := model.BlackScholes{Rate: 0.05}
	const nsteps = 240
	dt := 1.0 / nsteps

	terminal := 100.0
	for i := 0; i < nsteps; i++ {
		terminal *= 1 + 0.05*dt
	}

	tests := []struct {
		right  option.Right
		strike float64
	}{
		{option.Call, 90},
		{option.Call, 110},
		{option.Put, 110},
		{option.Put, 90},
	}
	for _, tt := range tests {
		want := m.DiscountFactor(1) * option.Payoff(terminal, tt.strike, tt.right)
		got, err := newPricer(1).ComputePrice(m, option.NewEuropean(tt.right, tt.strike, 1), 100, 1000, nsteps)
		if err != nil {
			t.Fatalf("%v K=%v: unexpected error: %v", tt.right, tt.strike, err)
		}
		if !almostEqual(got, want, 1e-9) {
			t.Fatalf("%v K=%v: expected %v, got %v", tt.right, tt.strike, want, got)
		}
	}
}

func TestComputePriceZeroRateAndVolatility(t *testing.T) {
	got, err := newPricer(1).ComputePrice(model.BlackScholes{}, option.NewEuropean(option.Put, 110, 1), 100, 10, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got, 10, 1e-12) {
		t.Fatalf("expected 10, got %v", got)
	}
}

func TestComputePriceRejectsAmerican(t *testing.T) {
	_, err := newPricer(1).ComputePrice(standardModel, option.NewAmerican(option.Put, 110, 1), 100, 10, 10)
	if !errors.Is(err, ErrUnsupportedVariant) {
		t.Fatalf("expected ErrUnsupportedVariant, got %v", err)
	}
}

func TestComputePriceRejectsInvalidInput(t *testing.T) {
	call := option.NewEuropean(option.Call, 110, 1)

	tests := []struct {
		name   string
		m      model.BlackScholes
		c      option.Contract
		spot   float64
		npaths int
		nsteps int
		want   error
	}{
		{"zero steps", standardModel, call, 100, 10, 0, ErrConfiguration},
		{"zero paths", standardModel, call, 100, 0, 10, ErrConfiguration},
		{"negative paths", standardModel, call, 100, -1, 10, ErrConfiguration},
		{"zero maturity", standardModel, option.NewEuropean(option.Call, 110, 0), 100, 10, 10, ErrConfiguration},
		{"negative maturity", standardModel, option.NewEuropean(option.Call, 110, -1), 100, 10, 10, ErrConfiguration},
		{"nan rate", model.BlackScholes{Rate: math.NaN(), Volatility: 0.2}, call, 100, 10, 10, ErrConfiguration},
		{"inf vol", model.BlackScholes{Rate: 0.05, Volatility: math.Inf(1)}, call, 100, 10, 10, ErrConfiguration},
		{"negative vol", model.BlackScholes{Rate: 0.05, Volatility: -0.2}, call, 100, 10, 10, ErrConfiguration},
		{"nan strike", standardModel, option.NewEuropean(option.Call, math.NaN(), 1), 100, 10, 10, ErrConfiguration},
		{"inf spot", standardModel, call, math.Inf(1), 10, 10, ErrConfiguration},
		{"unknown right", standardModel, option.Contract{Strike: 110, TimeToMaturity: 1, Right: option.Right(9)}, 100, 10, 10, ErrUnsupportedVariant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, err := newPricer(1).ComputePrice(tt.m, tt.c, tt.spot, tt.npaths, tt.nsteps)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if price != 0 {
				t.Fatalf("expected no price on error, got %v", price)
			}
		})
	}
}

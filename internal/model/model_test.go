package model

import (
	"errors"
	"math"
	"testing"
)

func TestNewRejectsInvalidParameters(t *testing.T) {
	tests := []struct {
		name      string
		rate, vol float64
	}{
		{"nan rate", math.NaN(), 0.2},
		{"inf rate", math.Inf(1), 0.2},
		{"nan vol", 0.05, math.NaN()},
		{"inf vol", 0.05, math.Inf(-1)},
		{"negative vol", 0.05, -0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.rate, tt.vol); !errors.Is(err, ErrInvalidModel) {
				t.Fatalf("expected ErrInvalidModel, got %v", err)
			}
		})
	}
}

func TestNewAcceptsDegenerateParameters(t *testing.T) {
	for _, p := range [][2]float64{{0, 0}, {-0.01, 0}, {0.05, 0}, {0, 0.3}} {
		m, err := New(p[0], p[1])
		if err != nil {
			t.Fatalf("New(%v, %v): unexpected error: %v", p[0], p[1], err)
		}
		if m.Rate != p[0] || m.Volatility != p[1] {
			t.Fatalf("New(%v, %v): got %+v", p[0], p[1], m)
		}
	}
}

func TestDiscountFactor(t *testing.T) {
	m := BlackScholes{Rate: 0.05, Volatility: 0.2}

	if got := m.DiscountFactor(0); got != 1 {
		t.Fatalf("expected DiscountFactor(0) == 1, got %v", got)
	}
	for _, h := range []float64{-1, 0.25, 1, 10} {
		if got, want := m.DiscountFactor(h), math.Exp(-0.05*h); got != want {
			t.Fatalf("DiscountFactor(%v): expected %v, got %v", h, want, got)
		}
	}

	prev := m.DiscountFactor(0)
	for h := 0.5; h <= 30; h += 0.5 {
		cur := m.DiscountFactor(h)
		if cur >= prev {
			t.Fatalf("expected decreasing discount factor at t=%v: %v >= %v", h, cur, prev)
		}
		prev = cur
	}
}

func TestStepAppliesEulerUpdate(t *testing.T) {
	m := BlackScholes{Rate: 0.05, Volatility: 0.2}
	dt := 1.0 / 240
	prices := []float64{100, 100, 50}
	normals := []float64{0.5, -1.25, 0, 99} // extra sample is ignored

	m.Step(prices, dt, normals)

	for i, s0 := range []float64{100, 100, 50} {
		want := s0 * (1 + 0.05*dt + 0.2*math.Sqrt(dt)*normals[i])
		if prices[i] != want {
			t.Fatalf("path %d: expected %v, got %v", i, want, prices[i])
		}
	}
}

func TestStepWithZeroVolatilityIsDeterministic(t *testing.T) {
	m := BlackScholes{Rate: 0.03}
	dt := 0.01
	prices := []float64{100, 100}

	m.Step(prices, dt, []float64{3, -3})

	want := 100 * m.Growth(dt)
	if prices[0] != want || prices[1] != want {
		t.Fatalf("expected both paths at %v, got %v", want, prices)
	}
}

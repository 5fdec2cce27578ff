package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/contactkeval/quantmc/internal/config"
	"github.com/contactkeval/quantmc/internal/data"
	"github.com/contactkeval/quantmc/internal/logger"
	"github.com/contactkeval/quantmc/internal/model"
	"github.com/contactkeval/quantmc/internal/option"
	"github.com/contactkeval/quantmc/internal/pricing"
	"github.com/contactkeval/quantmc/internal/report"
	"github.com/contactkeval/quantmc/internal/rng"
	"github.com/contactkeval/quantmc/internal/sim"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Parse("quantmc", args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		logger.Errorf("%v", err)
		return 2
	}
	logger.SetVerbosity(cfg.Verbosity)

	if err := cfg.Validate(); err != nil {
		logger.Errorf("%v", err)
		return 1
	}

	seed, err := cfg.RunSeed()
	if err != nil {
		logger.Errorf("%v", err)
		return 1
	}
	runID := report.NewRunID()
	logger.Infof("run %s seed=%d", runID, seed)

	// choose spot source
	var prov data.SpotProvider = data.NewStaticProvider(cfg.Spot)
	if cfg.Ticker != "" {
		prov = data.NewMassiveDataProvider(cfg.APIKey)
		logger.Infof("massive provider enabled for %s", cfg.Ticker)
	}
	spot, err := prov.Spot(ctx, cfg.Ticker)
	if err != nil {
		logger.Errorf("resolving spot: %v", err)
		return 1
	}

	m, err := model.New(cfg.Rate, cfg.Vol)
	if err != nil {
		logger.Errorf("%v: %v", pricing.ErrConfiguration, err)
		return 1
	}
	style, _ := cfg.ExerciseStyle()
	rights, _ := cfg.Rights()

	simulator := sim.New(rng.NewNormal(seed), sim.WithWorkers(cfg.Workers), sim.WithSeed(seed))
	pricer := pricing.NewPricer(simulator)

	res := &report.Run{
		ID:      runID,
		Seed:    seed,
		Rate:    m.Rate,
		Vol:     m.Volatility,
		Spot:    spot,
		Strike:  cfg.Strike,
		TTM:     cfg.TTM,
		NPaths:  cfg.NPaths,
		NSteps:  cfg.NSteps,
		Workers: cfg.Workers,
	}

	for _, right := range rights {
		c := option.Contract{Strike: cfg.Strike, TimeToMaturity: cfg.TTM, Right: right, Style: style}

		start := time.Now()
		price, err := pricer.ComputePrice(m, c, spot, cfg.NPaths, cfg.NSteps)
		elapsed := time.Since(start)
		if err != nil {
			logger.Errorf("pricing %s: %v", c, err)
			return 1
		}

		ref := pricing.BlackScholesPrice(right, spot, cfg.Strike, cfg.TTM, m.Rate, m.Volatility)
		r := report.NewResult(c, price, ref, elapsed)
		res.Results = append(res.Results, r)
		fmt.Fprintln(stdout, report.Line(r))
	}

	if cfg.ReportDir == "" {
		return 0
	}
	if err := writeReports(cfg, m, spot, seed, res); err != nil {
		logger.Errorf("writing reports: %v", err)
		return 1
	}
	logger.Infof("wrote reports to %s", cfg.ReportDir)
	return 0
}

// writeReports writes prices.json and, when requested, a full-path sample
// simulated on its own stream with the run seed.
func writeReports(cfg *config.Config, m model.BlackScholes, spot float64, seed uint64, res *report.Run) error {
	if err := os.MkdirAll(cfg.ReportDir, 0755); err != nil {
		return err
	}
	if err := report.WriteJSON(res, cfg.ReportDir); err != nil {
		return err
	}
	if cfg.DumpPaths == 0 {
		return nil
	}

	batch := make([]float64, cfg.DumpPaths)
	for i := range batch {
		batch[i] = spot
	}
	dt := cfg.TTM / float64(cfg.NSteps)
	paths := sim.New(rng.NewNormal(seed)).SimulatePaths(m, batch, dt, cfg.NSteps)
	return report.WriteCSV(paths, cfg.DumpPaths, cfg.ReportDir)
}

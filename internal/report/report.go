// Package report renders pricing results for the console and writes them to
// files.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/contactkeval/quantmc/internal/option"
)

// pricePlaces is the number of decimals kept in reported prices.
const pricePlaces = 6

// Run describes one invocation and the prices it produced.
type Run struct {
	ID      string   `json:"run_id"`
	Seed    uint64   `json:"seed"`
	Rate    float64  `json:"rate"`
	Vol     float64  `json:"vol"`
	Spot    float64  `json:"spot"`
	Strike  float64  `json:"strike"`
	TTM     float64  `json:"ttm"`
	NPaths  int      `json:"npaths"`
	NSteps  int      `json:"nsteps"`
	Workers int      `json:"workers"`
	Results []Result `json:"results"`
}

// Result is the price of one contract.
type Result struct {
	Right     string          `json:"right"`
	Style     string          `json:"style"`
	Price     decimal.Decimal `json:"price"`
	Reference decimal.Decimal `json:"reference"` // closed-form Black-Scholes
	Elapsed   string          `json:"elapsed"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// NewResult rounds price and reference for reporting.
func NewResult(c option.Contract, price, reference float64, elapsed time.Duration) Result {
	return Result{
		Right:     c.Right.String(),
		Style:     c.Style.String(),
		Price:     decimal.NewFromFloat(price).Round(pricePlaces),
		Reference: decimal.NewFromFloat(reference).Round(pricePlaces),
		Elapsed:   elapsed.String(),
	}
}

// Line is the console form of r.
func Line(r Result) string {
	return fmt.Sprintf("%s price = %s (reference %s, took %s)",
		r.Right, r.Price.StringFixed(4), r.Reference.StringFixed(4), r.Elapsed)
}

// WriteJSON writes run to prices.json in outdir.
func WriteJSON(run *Run, outdir string) error {
	b, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, "prices.json"), b, 0644)
}

// WriteCSV writes a time x path matrix to paths.csv in outdir, one row per
// time step and at most maxPaths path columns.
func WriteCSV(paths [][]float64, maxPaths int, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, "paths.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	ncols := 0
	if len(paths) > 0 {
		ncols = min(maxPaths, len(paths[0]))
	}

	w := csv.NewWriter(f)
	headers := make([]string, 0, ncols+1)
	headers = append(headers, "step")
	for j := 0; j < ncols; j++ {
		headers = append(headers, fmt.Sprintf("path_%d", j))
	}
	if err := w.Write(headers); err != nil {
		return err
	}

	row := make([]string, ncols+1)
	for i, batch := range paths {
		row[0] = strconv.Itoa(i)
		for j := 0; j < ncols; j++ {
			row[j+1] = strconv.FormatFloat(batch[j], 'f', pricePlaces, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

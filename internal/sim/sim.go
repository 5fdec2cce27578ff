// Package sim evolves batches of asset paths through discrete time steps.
//
// A Simulator draws its normals from an injected rng.Source. In the default
// serial mode it consumes exactly one batch of len(spot) samples per step, in
// step order, so a fixed seed reproduces a run bit for bit.
//
// With WithWorkers(n > 1) terminal simulation switches to block mode: paths
// are cut into fixed-size blocks, block b draws from rng.Substream(seed, b),
// and blocks run concurrently. The result depends on the seed and block size
// only, never on the worker count.
package sim

import (
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/contactkeval/quantmc/internal/logger"
	"github.com/contactkeval/quantmc/internal/model"
	"github.com/contactkeval/quantmc/internal/rng"
)

// DefaultBlockSize is the number of paths per block in parallel mode.
const DefaultBlockSize = 8192

// Simulator drives an asset model across time steps.
type Simulator struct {
	src       rng.Source
	workers   int
	seed      uint64
	seeded    bool
	blockSize int
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithWorkers sets the number of goroutines used by SimulateTerminal.
// Values <= 1 select serial mode.
func WithWorkers(n int) Option {
	return func(s *Simulator) { s.workers = n }
}

// WithSeed sets the base seed of the per-block sub-streams used in parallel mode.
func WithSeed(seed uint64) Option {
	return func(s *Simulator) {
		s.seed = seed
		s.seeded = true
	}
}

// WithBlockSize sets the number of paths per block in parallel mode.
func WithBlockSize(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.blockSize = n
		}
	}
}

// New returns a Simulator drawing from src.
func New(src rng.Source, opts ...Option) *Simulator {
	s := &Simulator{src: src, workers: 1, blockSize: DefaultBlockSize}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers > 1 && !s.seeded {
		if sd, ok := src.(interface{ Seed() uint64 }); ok {
			s.seed, s.seeded = sd.Seed(), true
		} else {
			logger.Debugf("no base seed for parallel mode, simulating serially")
			s.workers = 1
		}
	}
	return s
}

// Parallel reports whether SimulateTerminal runs in block mode.
func (s *Simulator) Parallel() bool { return s.workers > 1 }

// SimulateTerminal applies m.Step nsteps times to a copy of spot and returns
// the terminal batch. nsteps == 0 returns an unchanged copy.
func (s *Simulator) SimulateTerminal(m model.BlackScholes, spot []float64, dt float64, nsteps int) []float64 {
	out := make([]float64, len(spot))
	copy(out, spot)

	if s.Parallel() && len(out) > s.blockSize {
		s.simulateBlocks(m, out, dt, nsteps)
		return out
	}
	if s.Parallel() {
		evolve(m, out, rng.Substream(s.seed, 0), dt, nsteps)
		return out
	}

	evolve(m, out, s.src, dt, nsteps)
	return out
}

// SimulatePaths behaves like SimulateTerminal in serial mode but keeps every
// state: row 0 is spot, row i the batch after step i. Rows never share memory.
func (s *Simulator) SimulatePaths(m model.BlackScholes, spot []float64, dt float64, nsteps int) [][]float64 {
	paths := make([][]float64, 0, nsteps+1)
	cur := make([]float64, len(spot))
	copy(cur, spot)
	paths = append(paths, clone(cur))

	z := make([]float64, len(cur))
	for step := 1; step <= nsteps; step++ {
		s.src.FillBatch(z)
		m.Step(cur, dt, z)
		paths = append(paths, clone(cur))
		traceStep(step, cur)
	}
	return paths
}

func (s *Simulator) simulateBlocks(m model.BlackScholes, out []float64, dt float64, nsteps int) {
	nblocks := (len(out) + s.blockSize - 1) / s.blockSize
	logger.Debugf("simulating %d paths in %d blocks on %d workers", len(out), nblocks, s.workers)

	var g errgroup.Group
	g.SetLimit(s.workers)
	for b := 0; b < nblocks; b++ {
		lo := b * s.blockSize
		hi := min(lo+s.blockSize, len(out))
		g.Go(func() error {
			evolve(m, out[lo:hi], rng.Substream(s.seed, b), dt, nsteps)
			return nil
		})
	}
	_ = g.Wait()
}

// evolve advances batch in place, one fresh batch of normals per step.
func evolve(m model.BlackScholes, batch []float64, src rng.Source, dt float64, nsteps int) {
	z := make([]float64, len(batch))
	for step := 1; step <= nsteps; step++ {
		src.FillBatch(z)
		m.Step(batch, dt, z)
		traceStep(step, batch)
	}
}

func traceStep(step int, batch []float64) {
	if logger.Enabled(logger.Trace) && len(batch) > 0 {
		logger.Tracef("[%d] mean S = %f", step, stat.Mean(batch, nil))
	}
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

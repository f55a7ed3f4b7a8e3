// Package forest implements a bagged ensemble of regression trees.
//
// Every tree draws its bootstrap sample from its own PCG stream, seeded
// from Config.Seed and the tree index. Trees are grown in parallel, but the
// fitted forest depends only on the data and the seed.
package forest

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
)

type Config struct {
	Trees           int
	MaxDepth        int // 0 grows until leaves are pure or too small to split
	MinSamplesSplit int
	MaxFeatures     int // 0 considers every feature at each split
	Seed            uint64
	Workers         int // 0 uses GOMAXPROCS
}

func DefaultConfig() Config {
	return Config{
		Trees:           100,
		MinSamplesSplit: 2,
		Seed:            42,
	}
}

var (
	ErrNoSamples     = errors.New("forest: no training samples")
	ErrRaggedInput   = errors.New("forest: rows have differing feature counts")
	ErrTargetLength  = errors.New("forest: target length does not match rows")
	ErrFeatureLength = errors.New("forest: row has wrong number of features")
)

type Forest struct {
	trees       []*Tree
	features    int
	importances []float64
}

// Fit grows cfg.Trees trees on rows X and targets y.
func Fit(ctx context.Context, X [][]float64, y []float64, cfg Config) (*Forest, error) {
	if len(X) == 0 {
		return nil, ErrNoSamples
	}
	if len(y) != len(X) {
		return nil, ErrTargetLength
	}
	if cfg.Trees <= 0 {
		return nil, fmt.Errorf("forest: invalid tree count %d", cfg.Trees)
	}
	if cfg.MinSamplesSplit < 2 {
		cfg.MinSamplesSplit = 2
	}

	nFeatures := len(X[0])
	cols := make([][]float64, nFeatures)
	for f := range cols {
		cols[f] = make([]float64, len(X))
	}
	for i, row := range X {
		if len(row) != nFeatures {
			return nil, ErrRaggedInput
		}
		for f, v := range row {
			cols[f][i] = v
		}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	trees := make([]*Tree, cfg.Trees)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for t := range trees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(cfg.Seed, uint64(t)))
			samples := make([]int, len(y))
			for i := range samples {
				samples[i] = rng.IntN(len(y))
			}
			trees[t] = growTree(cols, y, samples, cfg, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Forest{
		trees:       trees,
		features:    nFeatures,
		importances: averageImportances(trees, nFeatures),
	}, nil
}

// Predict averages the trees' predictions for one row.
func (f *Forest) Predict(row []float64) (float64, error) {
	if len(row) != f.features {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrFeatureLength, len(row), f.features)
	}
	sum := 0.0
	for _, t := range f.trees {
		sum += t.Predict(row)
	}
	return sum / float64(len(f.trees)), nil
}

// PredictBatch predicts every row, failing on the first malformed one.
func (f *Forest) PredictBatch(rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		v, err := f.Predict(row)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *Forest) Features() int { return f.features }

func (f *Forest) Trees() int { return len(f.trees) }

// FeatureImportances are the mean impurity decreases per feature, summing to
// one unless no tree ever split.
func (f *Forest) FeatureImportances() []float64 {
	return append([]float64(nil), f.importances...)
}

func averageImportances(trees []*Tree, nFeatures int) []float64 {
	out := make([]float64, nFeatures)
	for _, t := range trees {
		total := 0.0
		for _, v := range t.importances {
			total += v
		}
		if total == 0 {
			continue
		}
		for i, v := range t.importances {
			out[i] += v / total
		}
	}
	total := 0.0
	for _, v := range out {
		total += v
	}
	if total > 0 {
		for i := range out {
			out[i] /= total
		}
	}
	return out
}

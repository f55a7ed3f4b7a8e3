package forecast

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"traffic-forecast-api/encoder"
	"traffic-forecast-api/forest"
	"traffic-forecast-api/models"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// splitStream keeps the train/test shuffle off the PCG streams used by trees.
const splitStream = ^uint64(0)

type Options struct {
	Forest       forest.Config
	TestFraction float64
	Version      string
}

func DefaultOptions() Options {
	return Options{Forest: forest.DefaultConfig(), TestFraction: 0.2}
}

type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Metrics describe the held-out split at training time. They are computed
// once and never updated.
type Metrics struct {
	DatasetSize       int                 `json:"dataset_size"`
	TrainingSamples   int                 `json:"training_samples"`
	TestingSamples    int                 `json:"testing_samples"`
	MSE               float64             `json:"mse"`
	RMSE              float64             `json:"rmse"`
	MAE               float64             `json:"mae"`
	R2                float64             `json:"r2_score"`
	FeatureImportance []FeatureImportance `json:"feature_importance"`
	TrainingSeconds   float64             `json:"training_seconds"`
	ModelVersion      string              `json:"model_version"`
}

// Model is a trained traffic volume regressor. It keeps no reference to the
// rows it was trained on.
type Model struct {
	forest  *forest.Forest
	columns []string
	metrics Metrics
}

// Train encodes records, holds out a seeded random TestFraction of them,
// fits the forest on the rest and scores it on the held-out rows.
func Train(ctx context.Context, records []models.Observation, enc *encoder.Set, opts Options) (*Model, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("train: need at least 2 records, have %d", len(records))
	}
	if opts.TestFraction <= 0 || opts.TestFraction >= 1 {
		return nil, fmt.Errorf("train: invalid test fraction %v", opts.TestFraction)
	}

	start := time.Now()

	X := make([][]float64, len(records))
	y := make([]float64, len(records))
	for i, obs := range records {
		v, err := buildVector(obs, enc, obs.DayOfWeek, obs.Month)
		if err != nil {
			return nil, fmt.Errorf("train: encode row %d: %w", i, err)
		}
		X[i] = v.Values
		y[i] = obs.TrafficVolume
	}

	trainIdx, testIdx := splitIndices(len(records), opts.TestFraction, opts.Forest.Seed)
	xTrain, yTrain := gather(X, y, trainIdx)
	xTest, yTest := gather(X, y, testIdx)

	f, err := forest.Fit(ctx, xTrain, yTrain, opts.Forest)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	pred, err := f.PredictBatch(xTest)
	if err != nil {
		return nil, fmt.Errorf("train: score: %w", err)
	}

	m := score(yTest, pred)
	m.DatasetSize = len(records)
	m.TrainingSamples = len(trainIdx)
	m.TestingSamples = len(testIdx)
	m.FeatureImportance = rankImportances(f.FeatureImportances())
	m.TrainingSeconds = time.Since(start).Seconds()
	m.ModelVersion = opts.Version

	return &Model{forest: f, columns: FeatureColumns(), metrics: m}, nil
}

// Predict requires v to carry exactly the trained columns in trained order.
func (m *Model) Predict(v Vector) (float64, error) {
	if !slices.Equal(v.Columns, m.columns) || len(v.Values) != len(m.columns) {
		return 0, &FeatureMismatchError{Got: v.Columns, Want: m.Columns()}
	}
	return m.forest.Predict(v.Values)
}

func (m *Model) Columns() []string { return slices.Clone(m.columns) }

func (m *Model) Metrics() Metrics {
	out := m.metrics
	out.FeatureImportance = slices.Clone(m.metrics.FeatureImportance)
	return out
}

// splitIndices shuffles 0..n-1 with a seeded PCG stream and returns the
// train and test index sets. The test set holds ceil(n*fraction) rows.
func splitIndices(n int, fraction float64, seed uint64) (train, test []int) {
	perm := rand.New(rand.NewPCG(seed, splitStream)).Perm(n)
	nTest := int(math.Ceil(float64(n) * fraction))
	nTest = min(max(nTest, 1), n-1)
	return perm[nTest:], perm[:nTest]
}

func gather(X [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	for j, i := range idx {
		xs[j] = X[i]
		ys[j] = y[i]
	}
	return xs, ys
}

func score(actual, pred []float64) Metrics {
	n := float64(len(actual))
	mae := floats.Distance(pred, actual, 1) / n
	l2 := floats.Distance(pred, actual, 2)
	mse := l2 * l2 / n

	r2 := stat.RSquaredFrom(pred, actual, nil)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		r2 = 0
	}
	return Metrics{MSE: mse, RMSE: math.Sqrt(mse), MAE: mae, R2: r2}
}

func rankImportances(values []float64) []FeatureImportance {
	out := make([]FeatureImportance, len(values))
	for i, v := range values {
		out[i] = FeatureImportance{Feature: featureColumns[i], Importance: v}
	}
	slices.SortStableFunc(out, func(a, b FeatureImportance) int {
		switch {
		case a.Importance > b.Importance:
			return -1
		case a.Importance < b.Importance:
			return 1
		}
		return 0
	})
	return out
}

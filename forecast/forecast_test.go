package forecast

import (
	"context"
	"errors"
	"testing"
	"time"

	"traffic-forecast-api/dataset"
	"traffic-forecast-api/encoder"
	"traffic-forecast-api/models"
)

var testLocations = []struct{ area, road string }{
	{"Indiranagar", "100 Feet Road"},
	{"Indiranagar", "CMH Road"},
	{"Whitefield", "ITPL Main Road"},
}

func testObservations() []models.Observation {
	base := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	weathers := []string{"Clear", "Rain", "Fog"}
	var out []models.Observation
	for day := 0; day < 20; day++ {
		for i, loc := range testLocations {
			speed := 20 + float64((day*7+i*13)%40)
			obs := models.Observation{
				Date:                   base.AddDate(0, 0, day),
				Area:                   loc.area,
				Road:                   loc.road,
				AverageSpeed:           speed,
				TravelTimeIndex:        1 + float64(day%5)/10,
				CongestionLevel:        100 - speed,
				CapacityUtilization:    80,
				IncidentReports:        float64(day % 3),
				EnvironmentalImpact:    100 + float64(i),
				PublicTransportUsage:   50,
				SignalCompliance:       90,
				ParkingUsage:           70,
				PedestrianCyclistCount: 100 + float64(day),
				Weather:                weathers[(day+i)%3],
				Construction:           []string{"No", "Yes"}[day%2],
				TrafficVolume:          60000 - speed*1000 + float64(i)*5000,
			}
			dataset.Derive(&obs)
			out = append(out, obs)
		}
	}
	return out
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Forest.Trees = 10
	opts.Version = "rf-test"
	return opts
}

func newTestForecaster(t *testing.T) (*Forecaster, []models.Observation) {
	t.Helper()
	records := testObservations()
	enc := FitEncoders(records)
	model, err := Train(context.Background(), records, enc, testOptions())
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	return NewForecaster(records, enc, model, DefaultLadder), records
}

func TestTrainMetrics(t *testing.T) {
	f, _ := newTestForecaster(t)
	m := f.Model().Metrics()

	if m.DatasetSize != 60 || m.TestingSamples != 12 || m.TrainingSamples != 48 {
		t.Errorf("sizes = %d/%d/%d, want 60/48/12", m.DatasetSize, m.TrainingSamples, m.TestingSamples)
	}
	if m.RMSE < 0 || m.MAE < 0 || m.MSE < 0 {
		t.Errorf("negative error metric: %+v", m)
	}
	if m.RMSE*m.RMSE-m.MSE > 1e-6*m.MSE+1e-9 {
		t.Errorf("RMSE^2 = %v, MSE = %v", m.RMSE*m.RMSE, m.MSE)
	}
	if len(m.FeatureImportance) != len(FeatureColumns()) {
		t.Fatalf("got %d importances", len(m.FeatureImportance))
	}
	for i := 1; i < len(m.FeatureImportance); i++ {
		if m.FeatureImportance[i].Importance > m.FeatureImportance[i-1].Importance {
			t.Errorf("importances not sorted descending at %d", i)
		}
	}
	if m.ModelVersion != "rf-test" {
		t.Errorf("ModelVersion = %q", m.ModelVersion)
	}
}

func TestTrainRejectsTinyInput(t *testing.T) {
	records := testObservations()[:1]
	if _, err := Train(context.Background(), records, FitEncoders(records), testOptions()); err == nil {
		t.Error("expected error for a single record")
	}

	records = testObservations()
	opts := testOptions()
	opts.TestFraction = 0
	if _, err := Train(context.Background(), records, FitEncoders(records), opts); err == nil {
		t.Error("expected error for zero test fraction")
	}
}

func TestTrainingIsReproducible(t *testing.T) {
	records := testObservations()
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	var results [2]float64
	for run := range results {
		enc := FitEncoders(records)
		model, err := Train(context.Background(), records, enc, testOptions())
		if err != nil {
			t.Fatal(err)
		}
		fc, err := NewForecaster(records, enc, model, DefaultLadder).Today("Indiranagar", "CMH Road", now)
		if err != nil {
			t.Fatal(err)
		}
		results[run] = fc.PredictedVolume
	}
	if results[0] != results[1] {
		t.Errorf("two training runs predicted %v and %v", results[0], results[1])
	}
}

func TestPredictFeatureMismatch(t *testing.T) {
	f, records := newTestForecaster(t)
	v, err := buildVector(records[0], f.encoders, 0, 1)
	if err != nil {
		t.Fatal(err)
	}

	reordered := Vector{Columns: FeatureColumns(), Values: v.Values}
	reordered.Columns[0], reordered.Columns[1] = reordered.Columns[1], reordered.Columns[0]
	short := Vector{Columns: v.Columns[:5], Values: v.Values[:5]}
	missingValue := Vector{Columns: v.Columns, Values: v.Values[:15]}

	for name, bad := range map[string]Vector{"reordered": reordered, "short": short, "missing value": missingValue} {
		var mismatch *FeatureMismatchError
		if _, err := f.Model().Predict(bad); !errors.As(err, &mismatch) {
			t.Errorf("%s: got %v, want FeatureMismatchError", name, err)
		}
	}

	if _, err := f.Model().Predict(v); err != nil {
		t.Errorf("trained column order rejected: %v", err)
	}
}

func TestTodayUsesMostRecentRecord(t *testing.T) {
	f, _ := newTestForecaster(t)
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC) // Wednesday

	fc, err := f.Today("Whitefield", "ITPL Main Road", now)
	if err != nil {
		t.Fatalf("Today failed: %v", err)
	}

	wantDate := time.Date(2022, 1, 20, 0, 0, 0, 0, time.UTC)
	if !fc.Basis.Date.Equal(wantDate) {
		t.Errorf("Basis date = %v, want %v", fc.Basis.Date, wantDate)
	}

	v, err := buildVector(fc.Basis, f.encoders, 2, 10)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := f.Model().Predict(v)
	if fc.PredictedVolume != want {
		t.Errorf("PredictedVolume = %v, want %v from basis with today's calendar", fc.PredictedVolume, want)
	}

	if fc.Level != DefaultLadder.Level(float64(int(fc.PredictedVolume))) {
		t.Errorf("Level %q inconsistent with volume %v", fc.Level, fc.PredictedVolume)
	}
	if len(fc.History) != HistoryWindow {
		t.Fatalf("History has %d rows, want %d", len(fc.History), HistoryWindow)
	}
	if !fc.History[HistoryWindow-1].Date.Equal(wantDate) {
		t.Errorf("History should end at the basis record")
	}
}

func TestTodayErrors(t *testing.T) {
	f, _ := newTestForecaster(t)
	now := time.Now()

	var unknown *encoder.UnknownCategoryError
	if _, err := f.Today("Atlantis", "CMH Road", now); !errors.As(err, &unknown) {
		t.Errorf("unknown area: got %v", err)
	}
	if _, err := f.Today("Indiranagar", "Nowhere Lane", now); !errors.As(err, &unknown) {
		t.Errorf("unknown road: got %v", err)
	}

	var notFound *NotFoundError
	if _, err := f.Today("Whitefield", "CMH Road", now); !errors.As(err, &notFound) {
		t.Errorf("known but unpaired location: got %v", err)
	}
}

func TestRecentNewestFirst(t *testing.T) {
	f, _ := newTestForecaster(t)

	rows, err := f.Recent("Indiranagar", "100 Feet Road", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 5 {
		t.Fatalf("got %d rows, want 5", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if !rows[i].Date.Before(rows[i-1].Date) {
			t.Errorf("rows not newest first at %d", i)
		}
	}

	all, _ := f.Recent("Indiranagar", "100 Feet Road", 1000)
	if len(all) != 20 {
		t.Errorf("got %d rows, want all 20", len(all))
	}
}

func TestLocations(t *testing.T) {
	f, _ := newTestForecaster(t)

	loc := f.Locations()
	if len(loc) != 2 {
		t.Fatalf("got %d areas, want 2", len(loc))
	}
	if got := loc["Indiranagar"]; len(got) != 2 || got[0] != "100 Feet Road" || got[1] != "CMH Road" {
		t.Errorf("Indiranagar roads = %v", got)
	}
	if areas := f.Areas(); areas[0] != "Indiranagar" || areas[1] != "Whitefield" {
		t.Errorf("Areas() = %v", areas)
	}
}

func TestLadderBoundaries(t *testing.T) {
	tests := []struct {
		volume float64
		want   string
	}{
		{0, "Low"},
		{19999.99, "Low"},
		{20000, "Moderate"},
		{39999.99, "Moderate"},
		{40000, "High"},
		{59999.99, "High"},
		{60000, "Very High"},
		{250000, "Very High"},
	}
	for _, tt := range tests {
		if got := DefaultLadder.Level(tt.volume); got != tt.want {
			t.Errorf("Level(%v) = %q, want %q", tt.volume, got, tt.want)
		}
	}
}

func TestLadderIsMonotonic(t *testing.T) {
	rank := map[string]int{"Low": 0, "Moderate": 1, "High": 2, "Very High": 3}
	prev := 0
	for v := 0.0; v <= 80000; v += 250 {
		r := rank[DefaultLadder.Level(v)]
		if r < prev {
			t.Fatalf("level dropped at volume %v", v)
		}
		prev = r
	}
}

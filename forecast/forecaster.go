package forecast

import (
	"fmt"
	"slices"
	"time"

	"traffic-forecast-api/dataset"
	"traffic-forecast-api/encoder"
	"traffic-forecast-api/models"
)

// HistoryWindow is how many past observations accompany a forecast.
const HistoryWindow = 7

// NotFoundError means area and road are both known values but never occur
// together in the data.
type NotFoundError struct {
	Area string
	Road string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no data for %s / %s", e.Area, e.Road)
}

type Forecast struct {
	PredictedVolume float64
	Level           string
	Area            string
	Road            string
	Date            time.Time
	Basis           models.Observation
	History         []models.Observation
}

type locationKey struct {
	area, road string
}

// Forecaster answers per-location queries against a trained model. It is
// immutable after NewForecaster and safe for concurrent use.
type Forecaster struct {
	model    *Model
	encoders *encoder.Set
	ladder   Ladder

	// byLocation holds each location's rows oldest first; equal dates keep
	// file order, so the last element is the most recent record.
	byLocation map[locationKey][]models.Observation
	areas      []string
	roads      map[string][]string
}

func NewForecaster(records []models.Observation, enc *encoder.Set, model *Model, ladder Ladder) *Forecaster {
	f := &Forecaster{
		model:      model,
		encoders:   enc,
		ladder:     ladder,
		byLocation: make(map[locationKey][]models.Observation),
		roads:      make(map[string][]string),
	}
	for _, obs := range records {
		key := locationKey{obs.Area, obs.Road}
		if _, ok := f.roads[obs.Area]; !ok {
			f.areas = append(f.areas, obs.Area)
		}
		if _, ok := f.byLocation[key]; !ok {
			f.roads[obs.Area] = append(f.roads[obs.Area], obs.Road)
		}
		f.byLocation[key] = append(f.byLocation[key], obs)
	}
	for _, rows := range f.byLocation {
		slices.SortStableFunc(rows, func(a, b models.Observation) int {
			return a.Date.Compare(b.Date)
		})
	}
	return f
}

func (f *Forecaster) Model() *Model { return f.model }

func (f *Forecaster) Ladder() Ladder { return f.ladder }

// Locations maps each area to its roads, both in first-seen order.
func (f *Forecaster) Locations() map[string][]string {
	out := make(map[string][]string, len(f.roads))
	for area, roads := range f.roads {
		out[area] = slices.Clone(roads)
	}
	return out
}

// Areas lists areas in first-seen order.
func (f *Forecaster) Areas() []string { return slices.Clone(f.areas) }

func (f *Forecaster) rows(area, road string) ([]models.Observation, error) {
	if _, err := f.encoders.Encode(dataset.ColArea, area); err != nil {
		return nil, err
	}
	if _, err := f.encoders.Encode(dataset.ColRoad, road); err != nil {
		return nil, err
	}
	rows := f.byLocation[locationKey{area, road}]
	if len(rows) == 0 {
		return nil, &NotFoundError{Area: area, Road: road}
	}
	return rows, nil
}

// Today forecasts the volume for a location on the date of now.
//
// No row exists for today, so the most recent observation of the location
// stands in for it: its speed, congestion, weather and other road-condition
// features are reused unchanged and only the day of week and month are
// replaced with today's. Conditions are assumed not to have changed since
// the last observation.
func (f *Forecaster) Today(area, road string, now time.Time) (Forecast, error) {
	rows, err := f.rows(area, road)
	if err != nil {
		return Forecast{}, err
	}
	basis := rows[len(rows)-1]

	v, err := buildVector(basis, f.encoders, dataset.DayOfWeek(now), int(now.Month()))
	if err != nil {
		return Forecast{}, err
	}
	volume, err := f.model.Predict(v)
	if err != nil {
		return Forecast{}, err
	}

	history := rows[max(0, len(rows)-HistoryWindow):]
	return Forecast{
		PredictedVolume: volume,
		Level:           f.ladder.Level(volume),
		Area:            area,
		Road:            road,
		Date:            now,
		Basis:           basis,
		History:         slices.Clone(history),
	}, nil
}

// Recent returns up to n observations of a location, newest first.
func (f *Forecaster) Recent(area, road string, n int) ([]models.Observation, error) {
	rows, err := f.rows(area, road)
	if err != nil {
		return nil, err
	}
	n = min(n, len(rows))
	out := make([]models.Observation, 0, n)
	for i := len(rows) - 1; i >= len(rows)-n; i-- {
		out = append(out, rows[i])
	}
	return out, nil
}

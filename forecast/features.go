package forecast

import (
	"fmt"
	"slices"

	"traffic-forecast-api/dataset"
	"traffic-forecast-api/encoder"
	"traffic-forecast-api/models"
)

// Feature column names, in the order the model is trained on.
const (
	FeatArea         = "Area Encoded"
	FeatRoad         = "Road Encoded"
	FeatDayOfWeek    = "DayOfWeek"
	FeatMonth        = "Month"
	FeatWeather      = "Weather Encoded"
	FeatConstruction = "Construction Encoded"
)

var featureColumns = []string{
	FeatArea,
	FeatRoad,
	FeatDayOfWeek,
	FeatMonth,
	dataset.ColAverageSpeed,
	dataset.ColTravelTimeIndex,
	dataset.ColCongestionLevel,
	dataset.ColCapacityUtilization,
	dataset.ColIncidentReports,
	dataset.ColEnvironmentalImpact,
	dataset.ColPublicTransportUsage,
	dataset.ColSignalCompliance,
	dataset.ColParkingUsage,
	dataset.ColPedestrianCyclist,
	FeatWeather,
	FeatConstruction,
}

// FeatureColumns returns the trained column order.
func FeatureColumns() []string {
	return slices.Clone(featureColumns)
}

// Vector is one named feature row.
type Vector struct {
	Columns []string
	Values  []float64
}

// FeatureMismatchError means a vector was assembled with columns other than
// the trained ones. It indicates a code defect, never bad user input.
type FeatureMismatchError struct {
	Got  []string
	Want []string
}

func (e *FeatureMismatchError) Error() string {
	return fmt.Sprintf("feature mismatch: got %d columns %v, want %d columns %v", len(e.Got), e.Got, len(e.Want), e.Want)
}

// FitEncoders fits the four categorical vocabularies of the location table.
func FitEncoders(records []models.Observation) *encoder.Set {
	cols := map[string][]string{
		dataset.ColArea:         make([]string, len(records)),
		dataset.ColRoad:         make([]string, len(records)),
		dataset.ColWeather:      make([]string, len(records)),
		dataset.ColConstruction: make([]string, len(records)),
	}
	for i, r := range records {
		cols[dataset.ColArea][i] = r.Area
		cols[dataset.ColRoad][i] = r.Road
		cols[dataset.ColWeather][i] = r.Weather
		cols[dataset.ColConstruction][i] = r.Construction
	}
	return encoder.FitColumns(cols)
}

// buildVector encodes obs with the given calendar fields. Training passes the
// observation's own day and month; forecasting passes today's.
func buildVector(obs models.Observation, enc *encoder.Set, dayOfWeek, month int) (Vector, error) {
	area, err := enc.Encode(dataset.ColArea, obs.Area)
	if err != nil {
		return Vector{}, err
	}
	road, err := enc.Encode(dataset.ColRoad, obs.Road)
	if err != nil {
		return Vector{}, err
	}
	weather, err := enc.Encode(dataset.ColWeather, obs.Weather)
	if err != nil {
		return Vector{}, err
	}
	construction, err := enc.Encode(dataset.ColConstruction, obs.Construction)
	if err != nil {
		return Vector{}, err
	}

	return Vector{
		Columns: FeatureColumns(),
		Values: []float64{
			float64(area),
			float64(road),
			float64(dayOfWeek),
			float64(month),
			obs.AverageSpeed,
			obs.TravelTimeIndex,
			obs.CongestionLevel,
			obs.CapacityUtilization,
			obs.IncidentReports,
			obs.EnvironmentalImpact,
			obs.PublicTransportUsage,
			obs.SignalCompliance,
			obs.ParkingUsage,
			obs.PedestrianCyclistCount,
			float64(weather),
			float64(construction),
		},
	}, nil
}

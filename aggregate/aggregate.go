// Package aggregate computes per-hour travel statistics for source/destination
// routes over the historical route table.
package aggregate

import (
	"errors"
	"fmt"
	"math"

	"traffic-forecast-api/dataset"
	"traffic-forecast-api/encoder"
	"traffic-forecast-api/models"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NoData labels an hour bucket without observations.
const NoData = "No Data"

const HoursPerDay = 24

var ErrInvalidHour = errors.New("hour must be between 0 and 23")

// NotFoundError means both endpoints are known but no record joins them.
type NotFoundError struct {
	Source      string
	Destination string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no data for route %s -> %s", e.Source, e.Destination)
}

type HourlyStats struct {
	Hour         int     `json:"hour"`
	TravelTime   float64 `json:"travel_time"`
	MinTime      float64 `json:"min_time"`
	MaxTime      float64 `json:"max_time"`
	TrafficLevel string  `json:"traffic_level"`
	Weather      string  `json:"weather"`
	SampleSize   int     `json:"sample_size"`
	RouteID      string  `json:"route_id"`
}

type RouteSummary struct {
	Source              string         `json:"source"`
	Destination         string         `json:"destination"`
	TotalRecords        int            `json:"total_records"`
	AvgTravelTime       float64        `json:"avg_travel_time"`
	MinTravelTime       float64        `json:"min_travel_time"`
	MaxTravelTime       float64        `json:"max_travel_time"`
	StdTravelTime       float64        `json:"std_travel_time"`
	TrafficDistribution map[string]int `json:"traffic_distribution"`
	WeatherDistribution map[string]int `json:"weather_distribution"`
}

type Locations struct {
	Sources      []string `json:"sources"`
	Destinations []string `json:"destinations"`
}

type routeKey struct {
	source, destination int
}

// encodedRoute caches the codes of one record so lookups never re-encode.
type encodedRoute struct {
	level, weather int
}

// RouteAggregator is built once and is read-only afterwards, so it is safe
// for concurrent use.
type RouteAggregator struct {
	records   []models.RouteRecord
	encoded   []encodedRoute
	encoders  *encoder.Set
	byRoute   map[routeKey][]int
	locations Locations
}

// FitRouteEncoders fits the categorical vocabularies of the route table.
func FitRouteEncoders(records []models.RouteRecord) *encoder.Set {
	cols := map[string][]string{
		dataset.ColSource:       make([]string, len(records)),
		dataset.ColDestination:  make([]string, len(records)),
		dataset.ColTrafficLevel: make([]string, len(records)),
		dataset.ColRouteWeather: make([]string, len(records)),
	}
	for i, r := range records {
		cols[dataset.ColSource][i] = r.Source
		cols[dataset.ColDestination][i] = r.Destination
		cols[dataset.ColTrafficLevel][i] = r.TrafficLevel
		cols[dataset.ColRouteWeather][i] = r.Weather
	}
	return encoder.FitColumns(cols)
}

func NewRouteAggregator(records []models.RouteRecord, encoders *encoder.Set) (*RouteAggregator, error) {
	a := &RouteAggregator{
		records:  records,
		encoded:  make([]encodedRoute, len(records)),
		encoders: encoders,
		byRoute:  make(map[routeKey][]int),
	}

	seenSrc := make(map[string]bool)
	seenDst := make(map[string]bool)
	for i, r := range records {
		src, err := encoders.Encode(dataset.ColSource, r.Source)
		if err != nil {
			return nil, err
		}
		dst, err := encoders.Encode(dataset.ColDestination, r.Destination)
		if err != nil {
			return nil, err
		}
		level, err := encoders.Encode(dataset.ColTrafficLevel, r.TrafficLevel)
		if err != nil {
			return nil, err
		}
		weather, err := encoders.Encode(dataset.ColRouteWeather, r.Weather)
		if err != nil {
			return nil, err
		}

		key := routeKey{src, dst}
		a.byRoute[key] = append(a.byRoute[key], i)
		a.encoded[i] = encodedRoute{level: level, weather: weather}

		if !seenSrc[r.Source] {
			seenSrc[r.Source] = true
			a.locations.Sources = append(a.locations.Sources, r.Source)
		}
		if !seenDst[r.Destination] {
			seenDst[r.Destination] = true
			a.locations.Destinations = append(a.locations.Destinations, r.Destination)
		}
	}
	return a, nil
}

// Locations lists distinct sources and destinations in first-seen order.
func (a *RouteAggregator) Locations() Locations {
	return Locations{
		Sources:      append([]string(nil), a.locations.Sources...),
		Destinations: append([]string(nil), a.locations.Destinations...),
	}
}

func (a *RouteAggregator) lookup(source, destination string) ([]int, error) {
	src, err := a.encoders.Encode(dataset.ColSource, source)
	if err != nil {
		return nil, err
	}
	dst, err := a.encoders.Encode(dataset.ColDestination, destination)
	if err != nil {
		return nil, err
	}
	rows := a.byRoute[routeKey{src, dst}]
	if len(rows) == 0 {
		return nil, &NotFoundError{Source: source, Destination: destination}
	}
	return rows, nil
}

// StatsFor aggregates one hour of a route. An hour without records yields the
// NoData sentinel, not an error.
func (a *RouteAggregator) StatsFor(source, destination string, hour int) (HourlyStats, error) {
	if hour < 0 || hour >= HoursPerDay {
		return HourlyStats{}, ErrInvalidHour
	}
	rows, err := a.lookup(source, destination)
	if err != nil {
		return HourlyStats{}, err
	}
	return a.statsForHour(rows, hour)
}

// Hourly returns exactly one entry per hour of the day, in hour order.
func (a *RouteAggregator) Hourly(source, destination string) ([]HourlyStats, error) {
	rows, err := a.lookup(source, destination)
	if err != nil {
		return nil, err
	}

	out := make([]HourlyStats, 0, HoursPerDay)
	for hour := 0; hour < HoursPerDay; hour++ {
		s, err := a.statsForHour(rows, hour)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (a *RouteAggregator) statsForHour(rows []int, hour int) (HourlyStats, error) {
	var matched []int
	for _, i := range rows {
		if a.records[i].Hour == hour {
			matched = append(matched, i)
		}
	}
	if len(matched) == 0 {
		return HourlyStats{
			Hour:         hour,
			TrafficLevel: NoData,
			Weather:      NoData,
			RouteID:      a.records[rows[0]].RouteID,
		}, nil
	}

	times := make([]float64, len(matched))
	levels := make([]int, len(matched))
	weathers := make([]int, len(matched))
	for j, i := range matched {
		times[j] = a.records[i].TravelTime
		levels[j] = a.encoded[i].level
		weathers[j] = a.encoded[i].weather
	}

	level, err := a.encoders.Decode(dataset.ColTrafficLevel, mode(levels))
	if err != nil {
		return HourlyStats{}, err
	}
	weather, err := a.encoders.Decode(dataset.ColRouteWeather, mode(weathers))
	if err != nil {
		return HourlyStats{}, err
	}

	return HourlyStats{
		Hour:         hour,
		TravelTime:   round2(stat.Mean(times, nil)),
		MinTime:      round2(floats.Min(times)),
		MaxTime:      round2(floats.Max(times)),
		TrafficLevel: level,
		Weather:      weather,
		SampleSize:   len(matched),
		RouteID:      a.records[matched[0]].RouteID,
	}, nil
}

// Summary describes every record of a route regardless of hour.
func (a *RouteAggregator) Summary(source, destination string) (RouteSummary, error) {
	rows, err := a.lookup(source, destination)
	if err != nil {
		return RouteSummary{}, err
	}

	times := make([]float64, len(rows))
	traffic := make(map[string]int)
	weather := make(map[string]int)
	for j, i := range rows {
		r := a.records[i]
		times[j] = r.TravelTime
		traffic[r.TrafficLevel]++
		weather[r.Weather]++
	}

	std := 0.0
	if len(times) > 1 {
		std = stat.StdDev(times, nil)
	}

	return RouteSummary{
		Source:              source,
		Destination:         destination,
		TotalRecords:        len(rows),
		AvgTravelTime:       stat.Mean(times, nil),
		MinTravelTime:       floats.Min(times),
		MaxTravelTime:       floats.Max(times),
		StdTravelTime:       std,
		TrafficDistribution: traffic,
		WeatherDistribution: weather,
	}, nil
}

// mode picks the most frequent code; ties go to the lowest code.
func mode(codes []int) int {
	counts := make(map[int]int, len(codes))
	best, bestCount := 0, 0
	for _, c := range codes {
		counts[c]++
	}
	for c, n := range counts {
		if n > bestCount || (n == bestCount && c < best) {
			best, bestCount = c, n
		}
	}
	return best
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

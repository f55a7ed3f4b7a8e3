package dataset

import (
	"errors"
	"io"
	"os"

	"traffic-forecast-api/models"
)

const (
	ColDate                 = "Date"
	ColArea                 = "Area Name"
	ColRoad                 = "Road/Intersection Name"
	ColTrafficVolume        = "Traffic Volume"
	ColAverageSpeed         = "Average Speed"
	ColTravelTimeIndex      = "Travel Time Index"
	ColCongestionLevel      = "Congestion Level"
	ColCapacityUtilization  = "Road Capacity Utilization"
	ColIncidentReports      = "Incident Reports"
	ColEnvironmentalImpact  = "Environmental Impact"
	ColPublicTransportUsage = "Public Transport Usage"
	ColSignalCompliance     = "Traffic Signal Compliance"
	ColParkingUsage         = "Parking Usage"
	ColPedestrianCyclist    = "Pedestrian and Cyclist Count"
	ColWeather              = "Weather Conditions"
	ColConstruction         = "Roadwork and Construction Activity"
)

var locationColumns = []string{
	ColDate, ColArea, ColRoad, ColTrafficVolume, ColAverageSpeed,
	ColTravelTimeIndex, ColCongestionLevel, ColCapacityUtilization,
	ColIncidentReports, ColEnvironmentalImpact, ColPublicTransportUsage,
	ColSignalCompliance, ColParkingUsage, ColPedestrianCyclist,
	ColWeather, ColConstruction,
}

// LoadLocations reads the area/road observation table at path.
func LoadLocations(path string) ([]models.Observation, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, &LoadError{Path: path, Err: err}
	}
	defer f.Close()
	return ReadLocations(f, path)
}

func ReadLocations(r io.Reader, path string) ([]models.Observation, LoadStats, error) {
	var (
		records []models.Observation
		stats   LoadStats
	)
	err := readTable(r, path, locationColumns, func(rw row) error {
		stats.Rows++
		obs, err := parseObservation(rw)
		switch {
		case errors.Is(err, errBadTimestamp):
			stats.BadTimestamp++
			return nil
		case err != nil:
			stats.Incomplete++
			return nil
		}
		records = append(records, obs)
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	stats.Kept = len(records)
	if len(records) == 0 {
		return nil, stats, &LoadError{Path: path, Err: errors.New("no usable rows")}
	}
	return records, stats, nil
}

func parseObservation(rw row) (models.Observation, error) {
	date, err := ParseTimestamp(rw.str(ColDate))
	if err != nil {
		return models.Observation{}, err
	}

	obs := models.Observation{Date: date}
	labels := []struct {
		column string
		dst    *string
	}{
		{ColArea, &obs.Area},
		{ColRoad, &obs.Road},
		{ColWeather, &obs.Weather},
		{ColConstruction, &obs.Construction},
	}
	for _, l := range labels {
		if *l.dst, err = rw.label(l.column); err != nil {
			return obs, err
		}
	}

	numbers := []struct {
		column string
		dst    *float64
	}{
		{ColTrafficVolume, &obs.TrafficVolume},
		{ColAverageSpeed, &obs.AverageSpeed},
		{ColTravelTimeIndex, &obs.TravelTimeIndex},
		{ColCongestionLevel, &obs.CongestionLevel},
		{ColCapacityUtilization, &obs.CapacityUtilization},
		{ColIncidentReports, &obs.IncidentReports},
		{ColEnvironmentalImpact, &obs.EnvironmentalImpact},
		{ColPublicTransportUsage, &obs.PublicTransportUsage},
		{ColSignalCompliance, &obs.SignalCompliance},
		{ColParkingUsage, &obs.ParkingUsage},
		{ColPedestrianCyclist, &obs.PedestrianCyclistCount},
	}
	for _, n := range numbers {
		if *n.dst, err = rw.number(n.column); err != nil {
			return obs, err
		}
	}

	Derive(&obs)
	return obs, nil
}

// Derive fills the calendar fields computed from the observation date.
func Derive(obs *models.Observation) {
	obs.DayOfWeek = DayOfWeek(obs.Date)
	obs.Month = int(obs.Date.Month())
}

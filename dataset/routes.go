package dataset

import (
	"errors"
	"io"
	"os"

	"traffic-forecast-api/models"
)

const (
	ColSource       = "Source"
	ColDestination  = "Destination"
	ColRouteID      = "Route ID"
	ColTrafficLevel = "Traffic Level"
	ColRouteWeather = "Weather Conditions"
	ColDateTime     = "Date/Time"
	ColTravelTime   = "Travel Time (min)"
)

var routeColumns = []string{
	ColSource, ColDestination, ColRouteID, ColTrafficLevel,
	ColRouteWeather, ColDateTime, ColTravelTime,
}

// LoadRoutes reads the source/destination travel table at path.
func LoadRoutes(path string) ([]models.RouteRecord, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, &LoadError{Path: path, Err: err}
	}
	defer f.Close()
	return ReadRoutes(f, path)
}

// ReadRoutes parses a route table. Rows with an unparsable Date/Time or a
// missing value are skipped and counted in the returned stats.
func ReadRoutes(r io.Reader, path string) ([]models.RouteRecord, LoadStats, error) {
	var (
		records []models.RouteRecord
		stats   LoadStats
	)
	err := readTable(r, path, routeColumns, func(rw row) error {
		stats.Rows++
		rec, err := parseRoute(rw)
		switch {
		case errors.Is(err, errBadTimestamp):
			stats.BadTimestamp++
			return nil
		case err != nil:
			stats.Incomplete++
			return nil
		}
		records = append(records, rec)
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

func parseRoute(rw row) (models.RouteRecord, error) {
	ts, err := ParseTimestamp(rw.str(ColDateTime))
	if err != nil {
		return models.RouteRecord{}, err
	}

	var rec models.RouteRecord
	if rec.Source, err = rw.label(ColSource); err != nil {
		return rec, err
	}
	if rec.Destination, err = rw.label(ColDestination); err != nil {
		return rec, err
	}
	if rec.RouteID, err = rw.label(ColRouteID); err != nil {
		return rec, err
	}
	if rec.TrafficLevel, err = rw.label(ColTrafficLevel); err != nil {
		return rec, err
	}
	if rec.Weather, err = rw.label(ColRouteWeather); err != nil {
		return rec, err
	}
	if rec.TravelTime, err = rw.number(ColTravelTime); err != nil {
		return rec, err
	}

	rec.Timestamp = ts
	rec.Hour = ts.Hour()
	rec.DayOfWeek = DayOfWeek(ts)
	rec.Month = int(ts.Month())
	return rec, nil
}

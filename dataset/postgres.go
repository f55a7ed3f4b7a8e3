package dataset

import (
	"context"
	"errors"
	"fmt"

	"traffic-forecast-api/models"

	"gorm.io/gorm"
)

// LoadLocationsFromDB reads every row of the traffic_observations table in
// insertion order. The service never writes to this table.
func LoadLocationsFromDB(ctx context.Context, db *gorm.DB) ([]models.Observation, LoadStats, error) {
	source := models.Observation{}.TableName()

	var rows []models.Observation
	if err := db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, LoadStats{}, &LoadError{Path: source, Err: fmt.Errorf("query: %w", err)}
	}

	stats := LoadStats{Rows: len(rows)}
	records := make([]models.Observation, 0, len(rows))
	for _, obs := range rows {
		if !complete(obs) {
			stats.Incomplete++
			continue
		}
		if obs.Date.IsZero() {
			stats.BadTimestamp++
			continue
		}
		Derive(&obs)
		records = append(records, obs)
	}
	stats.Kept = len(records)
	if len(records) == 0 {
		return nil, stats, &LoadError{Path: source, Err: errors.New("no usable rows")}
	}
	return records, stats, nil
}

// complete applies the CSV row rules to a database row: every label set and
// every measurement finite.
func complete(obs models.Observation) bool {
	if obs.Area == "" || obs.Road == "" || obs.Weather == "" || obs.Construction == "" {
		return false
	}
	for _, v := range []float64{
		obs.TrafficVolume, obs.AverageSpeed, obs.TravelTimeIndex,
		obs.CongestionLevel, obs.CapacityUtilization, obs.IncidentReports,
		obs.EnvironmentalImpact, obs.PublicTransportUsage, obs.SignalCompliance,
		obs.ParkingUsage, obs.PedestrianCyclistCount,
	} {
		if !finite(v) {
			return false
		}
	}
	return true
}

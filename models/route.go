package models

import "time"

// RouteRecord is one source/destination travel observation.
type RouteRecord struct {
	Source       string    `json:"source"`
	Destination  string    `json:"destination"`
	RouteID      string    `json:"route_id"`
	TrafficLevel string    `json:"traffic_level"`
	Weather      string    `json:"weather"`
	Timestamp    time.Time `json:"timestamp"`
	TravelTime   float64   `json:"travel_time"`

	Hour      int `json:"hour"`
	DayOfWeek int `json:"day_of_week"`
	Month     int `json:"month"`
}

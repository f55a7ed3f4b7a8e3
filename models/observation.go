package models

import "time"

// Observation is one daily area/road measurement. The same schema is read from
// CSV or from the traffic_observations table.
type Observation struct {
	ID                     uint      `gorm:"column:id;primaryKey" json:"-"`
	Date                   time.Time `gorm:"column:date" json:"date"`
	Area                   string    `gorm:"column:area_name" json:"area"`
	Road                   string    `gorm:"column:road_name" json:"road"`
	TrafficVolume          float64   `gorm:"column:traffic_volume" json:"traffic_volume"`
	AverageSpeed           float64   `gorm:"column:average_speed" json:"average_speed"`
	TravelTimeIndex        float64   `gorm:"column:travel_time_index" json:"travel_time_index"`
	CongestionLevel        float64   `gorm:"column:congestion_level" json:"congestion_level"`
	CapacityUtilization    float64   `gorm:"column:road_capacity_utilization" json:"road_capacity_utilization"`
	IncidentReports        float64   `gorm:"column:incident_reports" json:"incident_reports"`
	EnvironmentalImpact    float64   `gorm:"column:environmental_impact" json:"environmental_impact"`
	PublicTransportUsage   float64   `gorm:"column:public_transport_usage" json:"public_transport_usage"`
	SignalCompliance       float64   `gorm:"column:traffic_signal_compliance" json:"traffic_signal_compliance"`
	ParkingUsage           float64   `gorm:"column:parking_usage" json:"parking_usage"`
	PedestrianCyclistCount float64   `gorm:"column:pedestrian_cyclist_count" json:"pedestrian_cyclist_count"`
	Weather                string    `gorm:"column:weather_conditions" json:"weather_conditions"`
	Construction           string    `gorm:"column:construction_activity" json:"construction_activity"`

	DayOfWeek int `gorm:"-" json:"day_of_week"`
	Month     int `gorm:"-" json:"month"`
}

func (Observation) TableName() string { return "traffic_observations" }

// HistoricalPoint is the trimmed row served by the historical endpoint.
type HistoricalPoint struct {
	Date            string  `json:"date"`
	TrafficVolume   int     `json:"traffic_volume"`
	AverageSpeed    float64 `json:"average_speed"`
	CongestionLevel float64 `json:"congestion_level"`
	Weather         string  `json:"weather"`
}

func (o Observation) Historical() HistoricalPoint {
	return HistoricalPoint{
		Date:            o.Date.Format("2006-01-02"),
		TrafficVolume:   int(o.TrafficVolume),
		AverageSpeed:    o.AverageSpeed,
		CongestionLevel: o.CongestionLevel,
		Weather:         o.Weather,
	}
}

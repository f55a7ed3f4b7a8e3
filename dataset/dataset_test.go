package dataset

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"traffic-forecast-api/models"
)

const routeCSV = `Route ID,Source,Destination,Date/Time,Traffic Level,Weather Conditions,Travel Time (min)
R1,Airport,Downtown,2024-03-04 08:15:00,High,Rain,42.5
R1,Airport,Downtown,2024-03-04 08:45:00,Medium,Clear,38
R2,Harbor,Downtown,not-a-date,Low,Clear,20
R2,Harbor,Downtown,2024-03-05 17:00:00,,Clear,25
R2,Harbor,Downtown,2024-03-05 18:00:00,Low,Clear,abc
R2,Harbor,Downtown,2024-03-05T19:30:00,Low,Fog,22.25
`

const locationHeader = "Date,Area Name,Road/Intersection Name,Traffic Volume,Average Speed,Travel Time Index,Congestion Level,Road Capacity Utilization,Incident Reports,Environmental Impact,Public Transport Usage,Traffic Signal Compliance,Parking Usage,Pedestrian and Cyclist Count,Weather Conditions,Roadwork and Construction Activity\n"

func TestReadRoutes(t *testing.T) {
	records, stats, err := ReadRoutes(strings.NewReader(routeCSV), "routes.csv")
	if err != nil {
		t.Fatalf("ReadRoutes failed: %v", err)
	}

	if stats.Rows != 6 || stats.Kept != 3 {
		t.Errorf("stats = %+v, want 6 rows, 3 kept", stats)
	}
	if stats.BadTimestamp != 1 || stats.Incomplete != 2 {
		t.Errorf("stats = %+v, want 1 bad timestamp, 2 incomplete", stats)
	}
	if stats.Dropped() != 3 {
		t.Errorf("Dropped() = %d, want 3", stats.Dropped())
	}

	first := records[0]
	if first.Source != "Airport" || first.Destination != "Downtown" || first.RouteID != "R1" {
		t.Errorf("first record identity = %+v", first)
	}
	if first.Hour != 8 || first.Month != 3 || first.DayOfWeek != 0 {
		t.Errorf("derived fields hour=%d month=%d dow=%d, want 8, 3, 0 (Monday)", first.Hour, first.Month, first.DayOfWeek)
	}
	if records[2].Hour != 19 || records[2].TravelTime != 22.25 {
		t.Errorf("last record = %+v", records[2])
	}
}

func TestReadRoutesMissingColumn(t *testing.T) {
	data := "Source,Destination,Date/Time\nA,B,2024-01-01\n"
	_, _, err := ReadRoutes(strings.NewReader(data), "routes.csv")

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if schemaErr.Column != ColRouteID {
		t.Errorf("Column = %q, want %q", schemaErr.Column, ColRouteID)
	}
}

func TestReadRoutesNoUsableRows(t *testing.T) {
	data := "Route ID,Source,Destination,Date/Time,Traffic Level,Weather Conditions,Travel Time (min)\nR1,A,B,garbage,Low,Clear,10\n"
	_, _, err := ReadRoutes(strings.NewReader(data), "routes.csv")

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
}

func TestLoadRoutesMissingFile(t *testing.T) {
	_, _, err := LoadRoutes(filepath.Join(t.TempDir(), "missing.csv"))

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadError should wrap os.ErrNotExist, got %v", loadErr.Err)
	}
}

func TestLoadRoutesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	var loadErr *LoadError
	if _, _, err := LoadRoutes(path); !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
}

func TestLoadLocations(t *testing.T) {
	data := locationHeader +
		"2022-01-01,Indiranagar,100 Feet Road,50590,50.23,1.5,100,100,0,151.18,70.63,84.04,85.40,111,Clear,No\n" +
		"2022-01-02,Indiranagar,CMH Road,30825,29.38,1.5,100,100,1,111.65,41.92,91.40,59.98,100,Overcast,Yes\n" +
		"bad,Indiranagar,CMH Road,30825,29.38,1.5,100,100,1,111.65,41.92,91.40,59.98,100,Overcast,Yes\n" +
		"2022-01-03,,CMH Road,30825,29.38,1.5,100,100,1,111.65,41.92,91.40,59.98,100,Overcast,Yes\n" +
		"2022-01-04,Indiranagar,CMH Road,NaN,29.38,1.5,100,100,1,111.65,41.92,91.40,59.98,100,Overcast,Yes\n"
	path := filepath.Join(t.TempDir(), "locations.csv")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	records, stats, err := LoadLocations(path)
	if err != nil {
		t.Fatalf("LoadLocations failed: %v", err)
	}
	if len(records) != 2 || stats.BadTimestamp != 1 || stats.Incomplete != 2 {
		t.Fatalf("got %d records, stats %+v", len(records), stats)
	}

	obs := records[0]
	if obs.Area != "Indiranagar" || obs.Road != "100 Feet Road" {
		t.Errorf("identity = %q/%q", obs.Area, obs.Road)
	}
	if obs.TrafficVolume != 50590 || obs.PedestrianCyclistCount != 111 || obs.Construction != "No" {
		t.Errorf("measurements = %+v", obs)
	}
	// 2022-01-01 was a Saturday.
	if obs.DayOfWeek != 5 || obs.Month != 1 {
		t.Errorf("dow=%d month=%d, want 5, 1", obs.DayOfWeek, obs.Month)
	}
}

func TestLoadLocationsSchemaError(t *testing.T) {
	header := strings.Replace(locationHeader, ",Parking Usage", "", 1)
	_, _, err := ReadLocations(strings.NewReader(header), "locations.csv")

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) || schemaErr.Column != ColParkingUsage {
		t.Fatalf("expected SchemaError for %q, got %v", ColParkingUsage, err)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-04", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"2024-03-04 08:15:00", time.Date(2024, 3, 4, 8, 15, 0, 0, time.UTC)},
		{"2024-03-04 08:15", time.Date(2024, 3, 4, 8, 15, 0, 0, time.UTC)},
		{"2024-03-04T23:59:59", time.Date(2024, 3, 4, 23, 59, 59, 0, time.UTC)},
		{"03/04/2024 07:00", time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC)},
		{" 2024/03/04 ", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) error: %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	for _, bad := range []string{"", "yesterday", "2024-13-45"} {
		if _, err := ParseTimestamp(bad); err == nil {
			t.Errorf("ParseTimestamp(%q) should fail", bad)
		}
	}
}

func TestDayOfWeek(t *testing.T) {
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		if got := DayOfWeek(monday.AddDate(0, 0, i)); got != i {
			t.Errorf("DayOfWeek(monday+%d) = %d, want %d", i, got, i)
		}
	}
}

func TestFingerprintStable(t *testing.T) {
	data := locationHeader +
		"2022-01-01,Indiranagar,100 Feet Road,50590,50.23,1.5,100,100,0,151.18,70.63,84.04,85.40,111,Clear,No\n"
	a, _, err := ReadLocations(strings.NewReader(data), "a.csv")
	if err != nil {
		t.Fatal(err)
	}
	b, _, _ := ReadLocations(strings.NewReader(data), "b.csv")

	if Fingerprint(a) != Fingerprint(b) {
		t.Error("identical data should produce identical fingerprints")
	}
	if len(Fingerprint(a)) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(Fingerprint(a)))
	}

	b[0].TrafficVolume++
	if Fingerprint(a) == Fingerprint(b) {
		t.Error("changed data should change the fingerprint")
	}
}

func TestRouteFingerprint(t *testing.T) {
	a, _, err := ReadRoutes(strings.NewReader(routeCSV), "a.csv")
	if err != nil {
		t.Fatal(err)
	}
	b, _, _ := ReadRoutes(strings.NewReader(routeCSV), "b.csv")

	if RouteFingerprint(a) != RouteFingerprint(b) {
		t.Error("identical routes should produce identical fingerprints")
	}

	b[1].TravelTime = 99
	if RouteFingerprint(a) == RouteFingerprint(b) {
		t.Error("changed travel time should change the fingerprint")
	}
}

func TestCompleteRejectsBadDatabaseRows(t *testing.T) {
	good := models.Observation{
		Date: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		Area: "Indiranagar", Road: "CMH Road", Weather: "Clear", Construction: "No",
		TrafficVolume: 30000, AverageSpeed: 30,
	}

	tests := []struct {
		name   string
		mutate func(*models.Observation)
		want   bool
	}{
		{"complete row", func(*models.Observation) {}, true},
		{"empty weather", func(o *models.Observation) { o.Weather = "" }, false},
		{"NaN volume", func(o *models.Observation) { o.TrafficVolume = math.NaN() }, false},
		{"infinite speed", func(o *models.Observation) { o.AverageSpeed = math.Inf(1) }, false},
		{"NaN pedestrian count", func(o *models.Observation) { o.PedestrianCyclistCount = math.NaN() }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := good
			tt.mutate(&obs)
			if got := complete(obs); got != tt.want {
				t.Errorf("complete() = %v, want %v", got, tt.want)
			}
		})
	}
}

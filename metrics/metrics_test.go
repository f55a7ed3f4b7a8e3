package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rr.Body)
	if err != nil {
		t.Fatalf("read metrics body: %v", err)
	}
	return string(body)
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector()
	b := NewCollector()

	a.PredictionsServed.Inc()
	a.PredictionsServed.Inc()

	if out := scrape(t, a); !strings.Contains(out, "traffic_api_predictions_served_total 2") {
		t.Error("collector a should report 2 predictions")
	}
	if out := scrape(t, b); !strings.Contains(out, "traffic_api_predictions_served_total 0") {
		t.Error("collector b should report 0 predictions")
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector()
	c.Requests.WithLabelValues("/api/health", "GET", "200").Inc()
	c.DatasetRows.WithLabelValues("routes", "kept").Set(42)
	c.ModelR2.Set(0.87)

	body := scrape(t, c)
	for _, want := range []string{
		`traffic_api_requests_total{method="GET",route="/api/health",status="200"} 1`,
		`traffic_api_dataset_rows{dataset="routes",state="kept"} 42`,
		`traffic_api_model_r2 0.87`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/alanyoungcy/sportsarb/internal/domain"
)

func TestObserveScan(t *testing.T) {
	remaining := 42
	r := domain.ScanResult{
		SportKey:             "metrics_test_sport",
		IneligibleEvents:     2,
		Opportunities:        []domain.Opportunity{{ProfitMargin: 0.03}, {ProfitMargin: 0.01}},
		APIRequestsRemaining: &remaining,
	}
	ObserveScan(r, 150*time.Millisecond)
	ObserveFailure("metrics_test_sport", ResultLocked)

	if got := testutil.ToFloat64(ScansTotal.WithLabelValues("metrics_test_sport", ResultOK)); got != 1 {
		t.Errorf("scans ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ScansTotal.WithLabelValues("metrics_test_sport", ResultLocked)); got != 1 {
		t.Errorf("scans locked = %v, want 1", got)
	}
	if got := testutil.ToFloat64(OpportunitiesDetectedTotal.WithLabelValues("metrics_test_sport")); got != 2 {
		t.Errorf("opportunities = %v, want 2", got)
	}
	if got := testutil.ToFloat64(IneligibleEventsTotal.WithLabelValues("metrics_test_sport")); got != 2 {
		t.Errorf("ineligible = %v, want 2", got)
	}
	if got := testutil.ToFloat64(RequestsRemaining); got != 42 {
		t.Errorf("remaining = %v, want 42", got)
	}
}

func TestHandler(t *testing.T) {
	ObserveFailure("handler_test", ResultError)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sportsarb_scans_total") {
		t.Error("scans counter missing from exposition")
	}
}

package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alanyoungcy/sportsarb/internal/domain"
	"github.com/alanyoungcy/sportsarb/internal/server/handler"
	"github.com/alanyoungcy/sportsarb/internal/service"
)

type stubScans struct{ all, one int }

func (s *stubScans) ScanSport(context.Context, string, float64) (domain.ScanResult, error) {
	s.one++
	return domain.ScanResult{}, nil
}

func (s *stubScans) ScanAll(context.Context, float64) ([]domain.ScanResult, error) {
	s.all++
	return nil, nil
}

func (s *stubScans) MinProfitMargin() float64 { return 0 }

type stubCatalog struct{}

func (stubCatalog) Sports(context.Context, bool) ([]domain.Sport, error) { return nil, nil }
func (stubCatalog) Bookmakers() []domain.Bookmaker                      { return nil }

func newTestHandler(t *testing.T, apiKey string, withHistory bool) (http.Handler, *stubScans) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scans := &stubScans{}
	hs := Handlers{
		Health: handler.NewHealthHandler(nil, logger),
		Status: handler.NewStatusHandler(handler.StatusInfo{Mode: "server"}, nil),
		Sports: handler.NewSportsHandler(stubCatalog{}, logger),
		Arb:    handler.NewArbHandler(scans, 100, logger),
		Usage:  handler.NewUsageHandler(service.NewUsageService(nil, nil), logger),
	}
	if withHistory {
		hs.History = handler.NewHistoryHandler(service.NewHistoryService(nil), logger)
	}
	return NewHandler(Config{APIKey: apiKey}, hs, nil, nil, logger), scans
}

func do(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRoutes(t *testing.T) {
	h, scans := newTestHandler(t, "", true)

	for _, path := range []string{"/api/health", "/api/status", "/api/sports", "/api/bookmakers", "/api/usage", "/api/history", "/metrics"} {
		if rec := do(h, "GET", path); rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, rec.Code)
		}
	}

	do(h, "GET", "/api/scan/all")
	do(h, "GET", "/api/scan/basketball_nba")
	if scans.all != 1 || scans.one != 1 {
		t.Errorf("scan all=%d one=%d", scans.all, scans.one)
	}

	if rec := do(h, "GET", "/api/calculate"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/calculate = %d", rec.Code)
	}
}

func TestHistoryRoutesNeedStore(t *testing.T) {
	h, _ := newTestHandler(t, "", false)
	if rec := do(h, "GET", "/api/history"); rec.Code != http.StatusNotFound {
		t.Errorf("GET /api/history without store = %d", rec.Code)
	}
}

func TestAuthCoversAPIButNotHealth(t *testing.T) {
	h, _ := newTestHandler(t, "secret", true)
	if rec := do(h, "GET", "/api/health"); rec.Code != http.StatusOK {
		t.Errorf("health = %d", rec.Code)
	}
	if rec := do(h, "GET", "/api/sports"); rec.Code != http.StatusUnauthorized {
		t.Errorf("sports without key = %d", rec.Code)
	}
}

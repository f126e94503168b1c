package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAuth(t *testing.T) {
	h := Auth("secret", "/api/health")(ok)

	cases := []struct {
		name   string
		path   string
		header map[string]string
		want   int
	}{
		{"missing", "/api/sports", nil, http.StatusUnauthorized},
		{"wrong", "/api/sports", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"api key header", "/api/sports", map[string]string{"X-API-Key": "secret"}, http.StatusOK},
		{"bearer", "/api/sports", map[string]string{"Authorization": "Bearer secret"}, http.StatusOK},
		{"query token", "/ws?token=secret", nil, http.StatusOK},
		{"public path", "/api/health", nil, http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", c.path, nil)
			for k, v := range c.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != c.want {
				t.Errorf("status = %d, want %d", rec.Code, c.want)
			}
		})
	}
}

func TestAuthDisabled(t *testing.T) {
	rec := httptest.NewRecorder()
	Auth("")(ok).ServeHTTP(rec, httptest.NewRequest("GET", "/api/sports", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	var reached int
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached++
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name        string
		origins     []string
		method      string
		origin      string
		preflight   bool
		wantStatus  int
		wantAllow   string
		wantMethods bool
		wantReached bool
	}{
		{"preflight from allowed origin", []string{"http://localhost:3000/"}, "OPTIONS", "http://localhost:3000", true, http.StatusNoContent, "http://localhost:3000", true, false},
		{"preflight from foreign origin", []string{"http://localhost:3000"}, "OPTIONS", "http://evil.example", true, http.StatusNoContent, "", false, false},
		{"simple request from allowed origin", []string{"HTTP://LOCALHOST:3000"}, "GET", "http://localhost:3000", false, http.StatusOK, "http://localhost:3000", false, true},
		{"simple request from foreign origin", []string{"http://localhost:3000"}, "GET", "http://evil.example", false, http.StatusOK, "", false, true},
		{"wildcard", []string{"*"}, "GET", "http://anything.example", false, http.StatusOK, "http://anything.example", false, true},
		{"empty list allows all", nil, "OPTIONS", "http://anything.example", true, http.StatusNoContent, "http://anything.example", true, false},
		{"bare OPTIONS is not a preflight", []string{"*"}, "OPTIONS", "http://a.example", false, http.StatusOK, "http://a.example", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached = 0
			req := httptest.NewRequest(tt.method, "/api/calculate", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", "POST")
			}
			rec := httptest.NewRecorder()
			CORS(tt.origins)(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("allow origin = %q, want %q", got, tt.wantAllow)
			}
			if got := rec.Header().Get("Access-Control-Allow-Methods") != ""; got != tt.wantMethods {
				t.Errorf("allow methods set = %v", got)
			}
			if (reached == 1) != tt.wantReached {
				t.Errorf("next reached = %d", reached)
			}
			if rec.Header().Get("Vary") != "Origin" {
				t.Errorf("vary = %q", rec.Header().Get("Vary"))
			}
		})
	}
}

type countingLimiter struct {
	n   int
	max int
	err error
	key string
}

func (l *countingLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	l.key = key
	l.n++
	return l.n <= l.max, l.err
}

func TestRateLimit(t *testing.T) {
	lim := &countingLimiter{max: 1}
	h := RateLimit(lim, 1, time.Minute)(ok)

	req := httptest.NewRequest("GET", "/api/sports", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first status = %d", rec.Code)
	}
	if lim.key != "api:203.0.113.7" {
		t.Errorf("key = %q", lim.key)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
		t.Errorf("second status = %d", rec.Code)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	lim := &countingLimiter{err: errors.New("redis down")}
	rec := httptest.NewRecorder()
	RateLimit(lim, 1, time.Minute)(ok).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	RateLimit(nil, 1, time.Minute)(ok).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("nil limiter status = %d", rec.Code)
	}
}

func TestLoggingCapturesStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		io.WriteString(w, "short and stout")
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/brew", nil))
	out := buf.String()
	for _, want := range []string{`"status":418`, `"bytes":15`, `"path":"/brew"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log %s missing %s", out, want)
		}
	}
}

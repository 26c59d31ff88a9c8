package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func up(context.Context) ComponentHealth { return ComponentHealth{Status: StatusUp} }

func TestRunAllUp(t *testing.T) {
	c := NewChecker()
	c.Register("index_engine", up)
	c.Register("postgres", PingCheck(func(context.Context) error { return nil }, true))
	report := c.Run(context.Background())
	if report.Status != StatusUp || len(report.Components) != 2 {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestRunDegradedOptional(t *testing.T) {
	c := NewChecker()
	c.Register("index_engine", up)
	c.Register("redis", PingCheck(func(context.Context) error { return errors.New("refused") }, false))
	report := c.Run(context.Background())
	if report.Status != StatusDegraded {
		t.Errorf("status = %s, want degraded", report.Status)
	}
	if report.Components["redis"].Message != "refused" {
		t.Errorf("redis message = %q", report.Components["redis"].Message)
	}
}

func TestRunDownRequired(t *testing.T) {
	c := NewChecker()
	c.Register("cache", Disabled("not configured"))
	c.Register("index_engine", func(context.Context) ComponentHealth {
		return ComponentHealth{Status: StatusDown, Message: "empty corpus"}
	})
	if got := c.Run(context.Background()).Status; got != StatusDown {
		t.Errorf("status = %s, want down", got)
	}
}

func TestReadyHandler(t *testing.T) {
	c := NewChecker()
	c.Register("cache", Disabled("not configured"))
	rec := httptest.NewRecorder()
	c.ReadyHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("degraded readiness status = %d, want 200", rec.Code)
	}
	var report Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Status != StatusDegraded {
		t.Errorf("report status = %s", report.Status)
	}

	c.Register("index_engine", PingCheck(func(context.Context) error { return errors.New("no documents") }, true))
	rec = httptest.NewRecorder()
	c.ReadyHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("down readiness status = %d, want 503", rec.Code)
	}
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewChecker().LiveHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

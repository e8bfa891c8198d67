package health

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vietddude/upgradewatch/internal/monitor"
)

type stubWatcher struct {
	status monitor.Status
}

func (s *stubWatcher) Status() monitor.Status { return s.status }

func newTestServer(watchers map[string]WatcherStatus) *Server {
	intervals := make(map[string]time.Duration, len(watchers))
	for id := range watchers {
		intervals[id] = 30 * time.Second
	}
	mon := NewMonitor(watchers, intervals, nil)
	return NewServer(mon, prometheus.NewRegistry(), 0)
}

func TestHandleHealth_Healthy(t *testing.T) {
	srv := newTestServer(map[string]WatcherStatus{
		"cosmoshub-4": &stubWatcher{status: monitor.Status{
			ChainID:   "cosmoshub-4",
			Running:   true,
			LastCheck: time.Now(),
		}},
	})

	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != 200 {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != string(StatusHealthy) {
		t.Errorf("expected healthy, got %s", body["status"])
	}
}

func TestHandleHealth_HaltedIsCritical(t *testing.T) {
	srv := newTestServer(map[string]WatcherStatus{
		"cosmoshub-4": &stubWatcher{status: monitor.Status{
			ChainID: "cosmoshub-4",
			Running: false,
			Halted:  true,
		}},
	})

	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != 503 {
		t.Errorf("expected 503 for halted watcher, got %d", rec.Code)
	}
}

func TestCheckHealth_StaleCheckDegrades(t *testing.T) {
	mon := NewMonitor(
		map[string]WatcherStatus{
			"cosmoshub-4": &stubWatcher{status: monitor.Status{
				ChainID:   "cosmoshub-4",
				Running:   true,
				LastCheck: time.Now().Add(-time.Hour),
			}},
		},
		map[string]time.Duration{"cosmoshub-4": 30 * time.Second},
		nil,
	)

	report := mon.CheckHealth(context.Background())
	if report["cosmoshub-4"].Status != StatusDegraded {
		t.Errorf("expected degraded for stale check, got %s", report["cosmoshub-4"].Status)
	}
}

package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func TestDashboard(t *testing.T) {
	// Monday 10:00
	mockNow(t, time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))
	app := initApp(t)
	_, token := registerUser(t, app, "ana@colegio.edu.pe", "Ana López")

	createSchedule(t, app, token, "Historia", 1, "09:00", "10:00")
	createSchedule(t, app, token, "Física", 1, "14:00", "15:00")
	createSchedule(t, app, token, "Química", 2, "08:00", "09:00") // not today

	createTask(t, app, token, marchallObj(t, map[string]interface{}{
		"title": "Pendiente", "due_date": "2026-09-02T10:00:00Z",
	}))

	req, rec := newAuthRequest(http.MethodGet, "/api/dashboard", token)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard = %d; body %s", rec.Code, rec.Body.String())
	}

	var stats DashboardStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decoding dashboard: %v", err)
	}
	if len(stats.TodayClasses) != 2 {
		t.Errorf("today classes = %d; want 2", len(stats.TodayClasses))
	}
	if stats.PendingTasks != 1 {
		t.Errorf("pending tasks = %d; want 1", stats.PendingTasks)
	}
	// 09:00 already started; the next class is the afternoon one
	if stats.NextClassTime != "14:00" {
		t.Errorf("next class = %q; want 14:00", stats.NextClassTime)
	}
}

func TestDashboard_afterLastClass(t *testing.T) {
	// Monday 15:00
	mockNow(t, time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC))
	app := initApp(t)
	_, token := registerUser(t, app, "ana@colegio.edu.pe", "Ana López")

	createSchedule(t, app, token, "Historia", 1, "09:00", "10:00")
	createSchedule(t, app, token, "Física", 1, "14:00", "15:00")

	req, rec := newAuthRequest(http.MethodGet, "/api/dashboard", token)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard = %d; body %s", rec.Code, rec.Body.String())
	}

	var stats DashboardStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decoding dashboard: %v", err)
	}
	if stats.NextClassTime != "" {
		t.Errorf("next class = %q; want none", stats.NextClassTime)
	}
}

func TestDashboard_weekend(t *testing.T) {
	// Saturday
	mockNow(t, time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC))
	app := initApp(t)
	_, token := registerUser(t, app, "ana@colegio.edu.pe", "Ana López")

	createSchedule(t, app, token, "Historia", 1, "09:00", "10:00")

	req, rec := newAuthRequest(http.MethodGet, "/api/dashboard", token)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard = %d; body %s", rec.Code, rec.Body.String())
	}

	var stats DashboardStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decoding dashboard: %v", err)
	}
	if len(stats.TodayClasses) != 0 || stats.NextClassTime != "" {
		t.Errorf("weekend dashboard = %+v; want empty", stats)
	}
}

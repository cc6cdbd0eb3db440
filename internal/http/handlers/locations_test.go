package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/geocoder89/planhub/internal/domain/location"
	"github.com/geocoder89/planhub/internal/http/handlers"
	"github.com/geocoder89/planhub/internal/repo/memory"
	"github.com/gin-gonic/gin"
)

func newLocationsRouter(t *testing.T) (*gin.Engine, *memory.LocationsRepo) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	repo := memory.NewLocationsRepo()
	h := handlers.NewLocationsHandler(repo)

	r := gin.New()
	r.GET("/locations/available", h.GetAvailable)
	r.GET("/locations/:id", h.Get)

	return r, repo
}

func TestLocationGetDerivesUnitRates(t *testing.T) {
	r, repo := newLocationsRouter(t)

	repo.Seed(location.Location{
		ID:         "room-1",
		Building:   "Science",
		RoomNumber: "S12",
		Capacity:   60,
		DailyRate:  12000,
	})

	w := doJSON(t, r, http.MethodGet, "/locations/room-1", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("get: got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Location location.Location  `json:"location"`
		Rates    map[string]float64 `json:"rates"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Location.ID != "room-1" {
		t.Fatalf("unexpected location %+v", resp.Location)
	}

	// hour is an eighth of the day rate, week five days
	if resp.Rates["day"] != 12000 || resp.Rates["hour"] != 1500 || resp.Rates["week"] != 60000 {
		t.Fatalf("unexpected rates %+v", resp.Rates)
	}
}

func TestLocationGetUnknownIs404(t *testing.T) {
	r, _ := newLocationsRouter(t)

	if w := doJSON(t, r, http.MethodGet, "/locations/nope", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestLocationsAvailableRespectsBookings(t *testing.T) {
	r, repo := newLocationsRouter(t)

	repo.Seed(
		location.Location{ID: "room-1", Building: "Science", RoomNumber: "S12", Capacity: 60},
		location.Location{ID: "room-2", Building: "Science", RoomNumber: "S14", Capacity: 30},
	)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo.Book("room-2", start, start.Add(2*time.Hour))

	w := doJSON(t, r, http.MethodGet,
		"/locations/available?start=2026-03-01T09:00:00Z&end=2026-03-01T10:00:00Z", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("available: got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Locations []location.Location `json:"locations"`
		Count     int                 `json:"count"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Count != 1 || len(resp.Locations) != 1 || resp.Locations[0].ID != "room-1" {
		t.Fatalf("expected only the free room, got %+v", resp)
	}
}

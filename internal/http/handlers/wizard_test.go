package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/planhub/internal/draft"
	"github.com/geocoder89/planhub/internal/http/handlers"
	"github.com/geocoder89/planhub/internal/repo/memory"
	"github.com/geocoder89/planhub/internal/wizard"
	"github.com/gin-gonic/gin"
)

func newWizardRouter(t *testing.T) (*gin.Engine, *wizard.SessionManager) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	sessions := wizard.NewSessionManager(
		time.Hour,
		func(string) draft.Store { return draft.NewMemoryStore() },
		memory.NewPlanner(),
		wizard.DefaultAggregatorConfig(),
	)

	h := handlers.NewWizardHandler(sessions, nil)

	r := gin.New()
	r.POST("/wizard", h.Open)
	r.GET("/wizard/:id", h.Get)
	r.DELETE("/wizard/:id", h.Discard)
	r.PUT("/wizard/:id/main-event", h.SaveMainEvent)
	r.POST("/wizard/:id/sub-events", h.AddSubEvent)
	r.PUT("/wizard/:id/sub-events/:index", h.UpdateSubEvent)
	r.DELETE("/wizard/:id/sub-events/:index", h.DeleteSubEvent)
	r.POST("/wizard/:id/conflict-check", h.CheckConflict)
	r.PUT("/wizard/:id/resources", h.SaveResources)
	r.PUT("/wizard/:id/tasks", h.SaveTasks)
	r.GET("/wizard/:id/review", h.Review)
	r.POST("/wizard/:id/next", h.Next)
	r.POST("/wizard/:id/prev", h.Prev)
	r.POST("/wizard/:id/submit", h.Submit)

	return r, sessions
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer

	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func openSession(t *testing.T, r *gin.Engine) string {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/wizard", nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("open: got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		SessionID string `json:"sessionId"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode open response: %v", err)
	}

	if resp.SessionID == "" {
		t.Fatal("open returned empty session id")
	}

	return resp.SessionID
}

func mainEventBody() map[string]any {
	return map[string]any{
		"name":              "Careers Fair 2026",
		"startAt":           "2026-03-01T08:00:00Z",
		"endAt":             "2026-03-01T18:00:00Z",
		"expectedAttendees": 400,
		"estimatedBudget":   300000,
		"venue": map[string]any{
			"kind":     "internal",
			"internal": map[string]any{"locationId": "hall-1", "building": "Main Hall", "roomNumber": "G01"},
		},
	}
}

func subEventBody(name, room, start, end string) map[string]any {
	return map[string]any{
		"name":    name,
		"startAt": start,
		"endAt":   end,
		"venue": map[string]any{
			"kind":     "internal",
			"internal": map[string]any{"locationId": room, "building": "Main Hall", "roomNumber": room},
		},
		"expectedAttendees": 50,
	}
}

func TestWizardSessionNotFound(t *testing.T) {
	r, _ := newWizardRouter(t)

	w := doJSON(t, r, http.MethodGet, "/wizard/nope", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", w.Code)
	}
}

func TestWizardOpenStartsAtMainInfo(t *testing.T) {
	r, sessions := newWizardRouter(t)

	id := openSession(t, r)

	s, ok := sessions.Get(id)

	if !ok {
		t.Fatal("session not registered")
	}

	if s.Controller.Stage() != wizard.StageMainInfo {
		t.Fatalf("got stage %v, want main_info", s.Controller.Stage())
	}
}

func TestWizardNextWithoutDraftIsUnprocessable(t *testing.T) {
	r, _ := newWizardRouter(t)

	id := openSession(t, r)

	w := doJSON(t, r, http.MethodPost, "/wizard/"+id+"/next", nil)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got %d body=%s, want 422", w.Code, w.Body.String())
	}
}

func TestWizardSaveMainEventAndAdvance(t *testing.T) {
	r, _ := newWizardRouter(t)

	id := openSession(t, r)

	if w := doJSON(t, r, http.MethodPut, "/wizard/"+id+"/main-event", mainEventBody()); w.Code != http.StatusOK {
		t.Fatalf("save main: got %d body=%s", w.Code, w.Body.String())
	}

	w := doJSON(t, r, http.MethodPost, "/wizard/"+id+"/next", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("next: got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		StageName string `json:"stageName"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.StageName != "sub_events" {
		t.Fatalf("got stage %q, want sub_events", resp.StageName)
	}
}

func TestWizardVenueConflictIsConflictStatus(t *testing.T) {
	r, _ := newWizardRouter(t)

	id := openSession(t, r)

	doJSON(t, r, http.MethodPut, "/wizard/"+id+"/main-event", mainEventBody())
	doJSON(t, r, http.MethodPost, "/wizard/"+id+"/next", nil)

	first := subEventBody("Workshop A", "R1", "2026-03-01T09:00:00Z", "2026-03-01T10:00:00Z")

	if w := doJSON(t, r, http.MethodPost, "/wizard/"+id+"/sub-events", first); w.Code != http.StatusCreated {
		t.Fatalf("add first: got %d body=%s", w.Code, w.Body.String())
	}

	// back-to-back booking in the same room is fine
	touching := subEventBody("Workshop B", "R1", "2026-03-01T10:00:00Z", "2026-03-01T11:00:00Z")

	if w := doJSON(t, r, http.MethodPost, "/wizard/"+id+"/sub-events", touching); w.Code != http.StatusCreated {
		t.Fatalf("add touching: got %d body=%s", w.Code, w.Body.String())
	}

	overlapping := subEventBody("Workshop C", "R1", "2026-03-01T09:30:00Z", "2026-03-01T10:30:00Z")

	w := doJSON(t, r, http.MethodPost, "/wizard/"+id+"/sub-events", overlapping)

	if w.Code != http.StatusConflict {
		t.Fatalf("add overlapping: got %d body=%s, want 409", w.Code, w.Body.String())
	}
}

func TestWizardConflictCheckIsAdvisory(t *testing.T) {
	r, _ := newWizardRouter(t)

	id := openSession(t, r)

	doJSON(t, r, http.MethodPut, "/wizard/"+id+"/main-event", mainEventBody())
	doJSON(t, r, http.MethodPost, "/wizard/"+id+"/next", nil)
	doJSON(t, r, http.MethodPost, "/wizard/"+id+"/sub-events",
		subEventBody("Workshop A", "R1", "2026-03-01T09:00:00Z", "2026-03-01T10:00:00Z"))

	w := doJSON(t, r, http.MethodPost, "/wizard/"+id+"/conflict-check", map[string]any{
		"venueId": "R1",
		"startAt": "2026-03-01T09:30:00Z",
		"endAt":   "2026-03-01T10:30:00Z",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("probe: got %d body=%s, want 200", w.Code, w.Body.String())
	}

	var resp struct {
		Conflict *wizard.Conflict `json:"conflict"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Conflict == nil {
		t.Fatal("expected a conflict in the probe response")
	}

	if resp.Conflict.SiblingName != "Workshop A" {
		t.Fatalf("got sibling %q", resp.Conflict.SiblingName)
	}
}

func TestWizardFullFlow(t *testing.T) {
	r, sessions := newWizardRouter(t)

	id := openSession(t, r)

	doJSON(t, r, http.MethodPut, "/wizard/"+id+"/main-event", mainEventBody())

	if w := doJSON(t, r, http.MethodPost, "/wizard/"+id+"/next", nil); w.Code != http.StatusOK {
		t.Fatalf("next to sub_events: %d %s", w.Code, w.Body.String())
	}

	doJSON(t, r, http.MethodPost, "/wizard/"+id+"/sub-events",
		subEventBody("Opening Talk", "R1", "2026-03-01T09:00:00Z", "2026-03-01T10:00:00Z"))

	if w := doJSON(t, r, http.MethodPost, "/wizard/"+id+"/next", nil); w.Code != http.StatusOK {
		t.Fatalf("next to resources: %d %s", w.Code, w.Body.String())
	}

	if w := doJSON(t, r, http.MethodPost, "/wizard/"+id+"/next", nil); w.Code != http.StatusOK {
		t.Fatalf("next to tasks: %d %s", w.Code, w.Body.String())
	}

	tasks := map[string]any{
		"tasks": map[string]any{
			"0": []map[string]any{{
				"title":      "Book catering",
				"assigneeId": "staff-7",
			}},
		},
		"directors": map[string]any{"0": "staff-1"},
	}

	if w := doJSON(t, r, http.MethodPut, "/wizard/"+id+"/tasks", tasks); w.Code != http.StatusOK {
		t.Fatalf("save tasks: %d %s", w.Code, w.Body.String())
	}

	if w := doJSON(t, r, http.MethodPost, "/wizard/"+id+"/next", nil); w.Code != http.StatusOK {
		t.Fatalf("next to review: %d %s", w.Code, w.Body.String())
	}

	if w := doJSON(t, r, http.MethodGet, "/wizard/"+id+"/review", nil); w.Code != http.StatusOK {
		t.Fatalf("review: %d %s", w.Code, w.Body.String())
	}

	// confirmation is explicit
	if w := doJSON(t, r, http.MethodPost, "/wizard/"+id+"/submit", map[string]any{"confirmed": false}); w.Code != http.StatusConflict {
		t.Fatalf("unconfirmed submit: got %d, want 409", w.Code)
	}

	w := doJSON(t, r, http.MethodPost, "/wizard/"+id+"/submit", map[string]any{"confirmed": true})

	if w.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", w.Code, w.Body.String())
	}

	var resp struct {
		EventID   string `json:"eventId"`
		Submitted bool   `json:"submitted"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode submit: %v", err)
	}

	if !resp.Submitted || resp.EventID == "" {
		t.Fatalf("unexpected submit response: %+v", resp)
	}

	// the session survives but refuses further edits
	s, ok := sessions.Get(id)

	if !ok {
		t.Fatal("session gone after submit")
	}

	if !s.Controller.Submitted() {
		t.Fatal("controller should report submitted")
	}

	if w := doJSON(t, r, http.MethodPost, "/wizard/"+id+"/submit", map[string]any{"confirmed": true}); w.Code != http.StatusConflict {
		t.Fatalf("resubmit: got %d, want 409", w.Code)
	}
}

func TestWizardDiscardClosesSession(t *testing.T) {
	r, sessions := newWizardRouter(t)

	id := openSession(t, r)

	w := doJSON(t, r, http.MethodDelete, "/wizard/"+id, nil)

	if w.Code != http.StatusNoContent {
		t.Fatalf("discard: got %d, want 204", w.Code)
	}

	if _, ok := sessions.Get(id); ok {
		t.Fatal("session should be gone after discard")
	}
}

func TestWizardSubEventIndexOutOfRange(t *testing.T) {
	r, _ := newWizardRouter(t)

	id := openSession(t, r)

	doJSON(t, r, http.MethodPut, "/wizard/"+id+"/main-event", mainEventBody())
	doJSON(t, r, http.MethodPost, "/wizard/"+id+"/next", nil)

	path := fmt.Sprintf("/wizard/%s/sub-events/5", id)
	w := doJSON(t, r, http.MethodDelete, path, nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", w.Code)
	}
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/planhub/internal/domain/event"
	"github.com/geocoder89/planhub/internal/domain/task"
	"github.com/geocoder89/planhub/internal/http/middlewares"
	"github.com/geocoder89/planhub/internal/observability"
	"github.com/geocoder89/planhub/internal/wizard"
	"github.com/gin-gonic/gin"
)

type WizardHandler struct {
	sessions *wizard.SessionManager
	prom     *observability.Prom
}

func NewWizardHandler(sessions *wizard.SessionManager, prom *observability.Prom) *WizardHandler {
	return &WizardHandler{
		sessions: sessions,
		prom:     prom,
	}
}

// request bodies

type SubEventRequest struct {
	Name              string                `json:"name" binding:"required,min=2,max=120"`
	Description       string                `json:"description" binding:"omitempty,max=1000"`
	SessionType       string                `json:"sessionType" binding:"omitempty,max=80"`
	Track             string                `json:"track" binding:"omitempty,max=80"`
	StartAt           time.Time             `json:"startAt" binding:"required"`
	EndAt             time.Time             `json:"endAt" binding:"required"`
	Venue             event.Venue           `json:"venue"`
	ExpectedAttendees int                   `json:"expectedAttendees" binding:"omitempty,min=0"`
	BannerRef         string                `json:"bannerRef" binding:"omitempty,max=500"`
	Quotations        []event.QuotationItem `json:"quotations"`
}

func (r SubEventRequest) toDomain() event.SubEvent {
	return event.SubEvent{
		Name:              r.Name,
		Description:       r.Description,
		SessionType:       r.SessionType,
		Track:             r.Track,
		StartAt:           r.StartAt,
		EndAt:             r.EndAt,
		Venue:             r.Venue,
		ExpectedAttendees: r.ExpectedAttendees,
		BannerRef:         r.BannerRef,
		Quotations:        r.Quotations,
	}
}

type ConflictCheckRequest struct {
	VenueID      string    `json:"venueId"`
	StartAt      time.Time `json:"startAt"`
	EndAt        time.Time `json:"endAt"`
	ExcludeIndex *int      `json:"excludeIndex"`
}

type ResourcesRequest struct {
	Updates []wizard.ResourceUpdate `json:"updates" binding:"required"`
}

type TasksRequest struct {
	Tasks     map[int][]task.Task `json:"tasks"`
	Directors map[int]string      `json:"directors"`
}

type JumpRequest struct {
	Stage int `json:"stage" binding:"required,min=1,max=5"`
}

type SubmitRequest struct {
	Confirmed bool `json:"confirmed"`
}

func (h *WizardHandler) session(ctx *gin.Context) (*wizard.Session, bool) {
	s, ok := h.sessions.Get(ctx.Param("id"))

	if !ok {
		RespondNotFound(ctx, "Wizard session not found or expired")
		return nil, false
	}

	return s, true
}

func (h *WizardHandler) Open(ctx *gin.Context) {
	s := h.sessions.Open()

	if h.prom != nil {
		h.prom.SessionsOpen.Inc()
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"sessionId": s.ID,
		"stage":     int(s.Controller.Stage()),
		"stageName": s.Controller.Stage().String(),
	})
}

func (h *WizardHandler) Get(ctx *gin.Context) {
	s, ok := h.session(ctx)

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, s.Controller.Snapshot(ctx.Request.Context()))
}

func (h *WizardHandler) SaveMainEvent(ctx *gin.Context) {
	s, ok := h.session(ctx)

	if !ok {
		return
	}

	var req event.CreateMainEventRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := s.Controller.SaveMainInfo(ctx.Request.Context(), req); err != nil {
		h.respondWizardError(ctx, err)
		return
	}

	// stamp the staff identity from the verified token on the draft
	if userID, ok := middlewares.UserIDFromContext(ctx); ok {
		if err := s.Controller.SetCreator(ctx.Request.Context(), userID); err != nil {
			RespondInternal(ctx, "Could not record the draft creator")
			return
		}
	}

	ctx.JSON(http.StatusOK, s.Controller.Snapshot(ctx.Request.Context()))
}

func (h *WizardHandler) AddSubEvent(ctx *gin.Context) {
	s, ok := h.session(ctx)

	if !ok {
		return
	}

	var req SubEventRequest

	if !BindJSON(ctx, &req) {
		return
	}

	index, err := s.Controller.AddSubEvent(ctx.Request.Context(), req.toDomain())

	if err != nil {
		h.respondWizardError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"index": index})
}

func (h *WizardHandler) UpdateSubEvent(ctx *gin.Context) {
	s, ok := h.session(ctx)

	if !ok {
		return
	}

	index, err := strconv.Atoi(ctx.Param("index"))

	if err != nil {
		RespondBadRequest(ctx, "Invalid sub-event index", nil)
		return
	}

	var req SubEventRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := s.Controller.UpdateSubEvent(ctx.Request.Context(), index, req.toDomain()); err != nil {
		h.respondWizardError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"index": index})
}

func (h *WizardHandler) DeleteSubEvent(ctx *gin.Context) {
	s, ok := h.session(ctx)

	if !ok {
		return
	}

	index, err := strconv.Atoi(ctx.Param("index"))

	if err != nil {
		RespondBadRequest(ctx, "Invalid sub-event index", nil)
		return
	}

	if err := s.Controller.RemoveSubEvent(ctx.Request.Context(), index); err != nil {
		h.respondWizardError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// CheckConflict is the advisory probe the UI fires on every venue or time
// change; a hit here never blocks anything by itself.
func (h *WizardHandler) CheckConflict(ctx *gin.Context) {
	s, ok := h.session(ctx)

	if !ok {
		return
	}

	var req ConflictCheckRequest

	if !BindJSON(ctx, &req) {
		return
	}

	exclude := -1

	if req.ExcludeIndex != nil {
		exclude = *req.ExcludeIndex
	}

	conflict := s.Controller.CheckConflict(ctx.Request.Context(), wizard.Candidate{
		VenueID: req.VenueID,
		StartAt: req.StartAt,
		EndAt:   req.EndAt,
	}, exclude)

	if conflict != nil && h.prom != nil {
		h.prom.ConflictsDetected.Inc()
	}

	ctx.JSON(http.StatusOK, gin.H{"conflict": conflict})
}

func (h *WizardHandler) SaveResources(ctx *gin.Context) {
	s, ok := h.session(ctx)

	if !ok {
		return
	}

	var req ResourcesRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := s.Controller.SaveResources(ctx.Request.Context(), req.Updates); err != nil {
		h.respondWizardError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, s.Controller.Snapshot(ctx.Request.Context()))
}

func (h *WizardHandler) SaveTasks(ctx *gin.Context) {
	s, ok := h.session(ctx)

	if !ok {
		return
	}

	var req TasksRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := s.Controller.SaveTasks(ctx.Request.Context(), req.Tasks, req.Directors); err != nil {
		h.respondWizardError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, s.Controller.Snapshot(ctx.Request.Context()))
}

func (h *WizardHandler) Review(ctx *gin.Context) {
	s, ok := h.session(ctx)

	if !ok {
		return
	}

	summary, err := s.Controller.Review(ctx.Request.Context())

	if err != nil {
		h.respondWizardError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

func (h *WizardHandler) Next(ctx *gin.Context) {
	s, ok := h.session(ctx)

	if !ok {
		return
	}

	before := s.Controller.Stage()
	err := s.Controller.Next(ctx.Request.Context())

	if h.prom != nil {
		h.prom.StageTransitions.WithLabelValues(before.String(), transitionResult(err)).Inc()
	}

	if err != nil {
		h.respondWizardError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"stage":     int(s.Controller.Stage()),
		"stageName": s.Controller.Stage().String(),
	})
}

func (h *WizardHandler) Prev(ctx *gin.Context) {
	s, ok := h.session(ctx)

	if !ok {
		return
	}

	if err := s.Controller.Prev(); err != nil {
		h.respondWizardError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"stage":     int(s.Controller.Stage()),
		"stageName": s.Controller.Stage().String(),
	})
}

func (h *WizardHandler) Jump(ctx *gin.Context) {
	s, ok := h.session(ctx)

	if !ok {
		return
	}

	var req JumpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := s.Controller.JumpTo(ctx.Request.Context(), wizard.Stage(req.Stage)); err != nil {
		h.respondWizardError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"stage":     int(s.Controller.Stage()),
		"stageName": s.Controller.Stage().String(),
	})
}

func (h *WizardHandler) Submit(ctx *gin.Context) {
	s, ok := h.session(ctx)

	if !ok {
		return
	}

	var req SubmitRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := s.Controller.Submit(ctx.Request.Context(), req.Confirmed); err != nil {
		h.respondWizardError(ctx, err)
		return
	}

	if h.prom != nil {
		h.prom.Submissions.Inc()
	}

	ctx.JSON(http.StatusOK, gin.H{
		"eventId":   s.Controller.EventID(),
		"submitted": true,
	})
}

func (h *WizardHandler) Discard(ctx *gin.Context) {
	s, ok := h.session(ctx)

	if !ok {
		return
	}

	if err := s.Controller.Discard(ctx.Request.Context()); err != nil {
		RespondInternal(ctx, "Could not discard draft")
		return
	}

	h.sessions.Close(s.ID)

	if h.prom != nil {
		h.prom.SessionsOpen.Dec()
	}

	ctx.Status(http.StatusNoContent)
}

func transitionResult(err error) string {
	switch {
	case err == nil:
		return "advanced"
	case isRemoteErr(err):
		return "remote_failed"
	default:
		return "blocked"
	}
}

func isRemoteErr(err error) bool {
	var remote *wizard.RemoteError

	return errors.As(err, &remote)
}

// respondWizardError translates engine failures into the API's error
// taxonomy: stage-order problems are conflicts on the session resource,
// validation and server-side rejections are unprocessable, and an
// unreachable backend invites a retry.
func (h *WizardHandler) respondWizardError(ctx *gin.Context, err error) {
	var conflictErr *wizard.ConflictError

	if errors.As(err, &conflictErr) {
		if h.prom != nil {
			h.prom.ConflictsDetected.Inc()
		}

		RespondConflict(ctx, "venue_conflict", conflictErr.Error(), conflictErr.Conflict)
		return
	}

	var remote *wizard.RemoteError

	if errors.As(err, &remote) {
		if remote.Unreachable {
			RespondBadGateway(ctx, "The planning backend is unavailable, please retry")
			return
		}

		RespondUnprocessable(ctx, "rejected_by_server", remote.Error(), nil)
		return
	}

	switch {
	case errors.Is(err, wizard.ErrStageOrder),
		errors.Is(err, wizard.ErrAtFinalStage),
		errors.Is(err, wizard.ErrAlreadySubmitted),
		errors.Is(err, wizard.ErrNotConfirmed):
		RespondConflict(ctx, "stage_order", err.Error(), nil)
	case errors.Is(err, wizard.ErrSubEventIndex):
		RespondNotFound(ctx, err.Error())
	default:
		RespondUnprocessable(ctx, "validation_failed", err.Error(), nil)
	}
}

package event

import (
	"errors"
	"strings"
	"time"
)

// MainEvent is the top level event a wizard run builds. Identity becomes
// immutable once the record is persisted at stage 1; the remaining draft
// fields stay editable until final submission.
type MainEvent struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	StartAt           time.Time `json:"startAt"`
	EndAt             time.Time `json:"endAt"`
	ExpectedAttendees int       `json:"expectedAttendees"`
	EstimatedBudget   float64   `json:"estimatedBudget"`
	Venue             Venue     `json:"venue"`
	CreatedBy         string    `json:"createdBy,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

var (
	ErrNotFound         = errors.New("event not found")
	ErrNameRequired     = errors.New("name is required")
	ErrTimesRequired    = errors.New("start and end times are required")
	ErrTimesOutOfOrder  = errors.New("start time must be before end time")
	ErrVenueRequired    = errors.New("a venue must be selected")
	ErrNegativeAttendee = errors.New("expected attendees cannot be negative")
	ErrNegativeBudget   = errors.New("estimated budget cannot be negative")
)

type CreateMainEventRequest struct {
	Name              string    `json:"name" binding:"required,min=3,max=120"`
	Description       string    `json:"description" binding:"omitempty,max=1000"`
	StartAt           time.Time `json:"startAt" binding:"required"`
	EndAt             time.Time `json:"endAt" binding:"required"`
	ExpectedAttendees int       `json:"expectedAttendees" binding:"omitempty,min=0"`
	EstimatedBudget   float64   `json:"estimatedBudget" binding:"omitempty,min=0"`
	Venue             Venue     `json:"venue"`
}

// Validate re-checks the request beyond what binding tags cover, so the
// wizard can gate a stage transition without going through the HTTP layer.
func (req CreateMainEventRequest) Validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return ErrNameRequired
	}

	if req.StartAt.IsZero() || req.EndAt.IsZero() {
		return ErrTimesRequired
	}

	if !req.StartAt.Before(req.EndAt) {
		return ErrTimesOutOfOrder
	}

	if req.ExpectedAttendees < 0 {
		return ErrNegativeAttendee
	}

	if req.EstimatedBudget < 0 {
		return ErrNegativeBudget
	}

	if req.Venue.IsZero() {
		return ErrVenueRequired
	}

	// online is not a valid main event venue, a main event is anchored to a
	// physical internal room or a named external location
	if req.Venue.Kind == VenueOnline {
		return ErrVenueRequired
	}

	return req.Venue.Validate()
}

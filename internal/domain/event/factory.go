package event

import "time"

// NewFromCreateRequest builds a stage-1 draft. The draft has no identity;
// the ID is assigned by the planner when the event record is created on
// advancing past stage 1.
func NewFromCreateRequest(req CreateMainEventRequest, createdBy string) MainEvent {
	now := time.Now()

	return MainEvent{
		Name:              req.Name,
		Description:       req.Description,
		StartAt:           req.StartAt,
		EndAt:             req.EndAt,
		ExpectedAttendees: req.ExpectedAttendees,
		EstimatedBudget:   req.EstimatedBudget,
		Venue:             req.Venue,
		CreatedBy:         createdBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

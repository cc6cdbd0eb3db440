package wizard

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound   = errors.New("wizard session not found")
	ErrStageOrder        = errors.New("stage not reachable from the current draft state")
	ErrNoMainEvent       = errors.New("no main event has been drafted yet")
	ErrNoSubEvents       = errors.New("at least one sub-event is required")
	ErrSubEventIndex     = errors.New("sub-event index out of range")
	ErrAtFinalStage      = errors.New("already at the review stage")
	ErrAlreadySubmitted  = errors.New("wizard run already submitted")
	ErrNotConfirmed      = errors.New("submission requires explicit confirmation")
	ErrVenueConflict     = errors.New("venue conflict with a sibling sub-event")
)

// ConflictError carries the advisory conflict details alongside the gating
// sentinel so handlers can render who the candidate collides with.
type ConflictError struct {
	Conflict *Conflict
}

func (e *ConflictError) Error() string {
	if e.Conflict == nil {
		return ErrVenueConflict.Error()
	}

	return fmt.Sprintf("venue conflict with %q (%s)", e.Conflict.SiblingName, e.Conflict.TimeRange)
}

func (e *ConflictError) Unwrap() error {
	return ErrVenueConflict
}

// RemoteError wraps a failed stage-advancing persistence call. Rejected
// means the backend refused the payload, Unreachable covers transport and
// unexpected failures; the two render differently to the user.
type RemoteError struct {
	Op          string
	Unreachable bool
	Err         error
}

func (e *RemoteError) Error() string {
	kind := "rejected"

	if e.Unreachable {
		kind = "unreachable"
	}

	return fmt.Sprintf("remote %s %s: %v", e.Op, kind, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

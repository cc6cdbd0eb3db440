package wizard

import (
	"time"

	"github.com/geocoder89/planhub/internal/domain/event"
)

// Candidate is the sub-event being edited, reduced to the fields the
// conflict check cares about.
type Candidate struct {
	VenueID string
	StartAt time.Time
	EndAt   time.Time
}

// Conflict describes the first sibling the candidate collides with.
type Conflict struct {
	SiblingIndex int    `json:"siblingIndex"`
	SiblingName  string `json:"siblingName"`
	VenueLabel   string `json:"venueLabel"`
	TimeRange    string `json:"timeRange"`
}

// FindConflict reports whether the candidate books the same internal room
// as a sibling over an overlapping interval. Intervals are half open, a
// sub-event ending exactly when another starts is not a conflict. Siblings
// at external or online venues never conflict. The first conflicting
// sibling in declaration order wins; nil means no conflict, including when
// the candidate has no venue or times yet.
//
// The check is advisory validation gating a sub-event save, not a database
// constraint, and is re-run on every change to the candidate's venue or
// times.
func FindConflict(candidate Candidate, siblings []event.SubEvent) *Conflict {
	return FindConflictExcluding(candidate, siblings, -1)
}

// FindConflictExcluding is FindConflict with one sibling index ignored, so
// an edit of an existing sub-event does not collide with itself.
func FindConflictExcluding(candidate Candidate, siblings []event.SubEvent, exclude int) *Conflict {
	if candidate.VenueID == "" || candidate.StartAt.IsZero() || candidate.EndAt.IsZero() {
		return nil
	}

	for i, sibling := range siblings {
		if i == exclude {
			continue
		}

		venueID, ok := sibling.Venue.LocationID()

		if !ok || venueID != candidate.VenueID {
			continue
		}

		if sibling.StartAt.IsZero() || sibling.EndAt.IsZero() {
			continue
		}

		if overlaps(candidate.StartAt, candidate.EndAt, sibling.StartAt, sibling.EndAt) {
			return &Conflict{
				SiblingIndex: i,
				SiblingName:  sibling.Name,
				VenueLabel:   sibling.Venue.Label(),
				TimeRange:    formatRange(sibling.StartAt, sibling.EndAt),
			}
		}
	}

	return nil
}

// overlaps implements half-open interval overlap: [s1,e1) and [s2,e2)
// overlap iff s1 < e2 && s2 < e1.
func overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

func formatRange(start, end time.Time) string {
	if start.Year() == end.Year() && start.YearDay() == end.YearDay() {
		return start.Format("Jan 2 2006 15:04") + " - " + end.Format("15:04")
	}

	return start.Format("Jan 2 2006 15:04") + " - " + end.Format("Jan 2 2006 15:04")
}

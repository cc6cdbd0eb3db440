package location

import (
	"errors"
	"time"
)

// Location is a bookable internal room. DailyRate is the base per-day
// rental price; hourly and weekly prices derive from it.
type Location struct {
	ID         string    `json:"id"`
	Building   string    `json:"building"`
	RoomNumber string    `json:"roomNumber"`
	Capacity   int       `json:"capacity"`
	DailyRate  float64   `json:"dailyRate"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("location not found")

// AvailabilityFilter narrows the advisory availability listing. The result
// only reflects persisted bookings; sub-events still being drafted in the
// same wizard run are checked separately by the conflict detector.
type AvailabilityFilter struct {
	Building    *string
	MinCapacity *int
	Limit       int
	Offset      int
}

// ExternalLocation is a named off-site venue created on demand at
// submission time when a sub-event references one without a prior id.
type ExternalLocation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

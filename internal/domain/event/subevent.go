package event

import (
	"errors"
	"strings"
	"time"
)

// SubEvent is one nested session/activity owned by exactly one MainEvent.
type SubEvent struct {
	ID                string          `json:"id,omitempty"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	SessionType       string          `json:"sessionType,omitempty"`
	Track             string          `json:"track,omitempty"`
	StartAt           time.Time       `json:"startAt"`
	EndAt             time.Time       `json:"endAt"`
	Venue             Venue           `json:"venue"`
	ExpectedAttendees int             `json:"expectedAttendees"`
	BannerRef         string          `json:"bannerRef,omitempty"`
	Quotations        []QuotationItem `json:"quotations,omitempty"`
	Feasibility       Feasibility     `json:"feasibility,omitempty"`
}

var (
	ErrSubEventOutOfBounds = errors.New("sub-event times must fall within the main event window")
	ErrQuotationQuantity   = errors.New("quotation quantity must be greater than zero")
	ErrQuotationUnitPrice  = errors.New("quotation unit price cannot be negative")
	ErrRentalUnitUnknown   = errors.New("unknown rental unit")
	ErrFeasibilityUnknown  = errors.New("unknown feasibility rating")
)

// TotalCost recomputes the sum of the line totals. Always derived from the
// items, a stale cached figure is never trusted.
func (s SubEvent) TotalCost() float64 {
	total := 0.0

	for _, q := range s.Quotations {
		total += q.LineTotal()
	}

	return total
}

// Validate checks a sub-event against its owning main event's window.
func (s SubEvent) Validate(mainStart, mainEnd time.Time) error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrNameRequired
	}

	if s.StartAt.IsZero() || s.EndAt.IsZero() {
		return ErrTimesRequired
	}

	if !s.StartAt.Before(s.EndAt) {
		return ErrTimesOutOfOrder
	}

	if s.StartAt.Before(mainStart) || s.EndAt.After(mainEnd) {
		return ErrSubEventOutOfBounds
	}

	if s.Venue.IsZero() {
		return ErrVenueRequired
	}

	if err := s.Venue.Validate(); err != nil {
		return err
	}

	if s.ExpectedAttendees < 0 {
		return ErrNegativeAttendee
	}

	for _, q := range s.Quotations {
		if err := q.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// QuotationItem is one costed line (resource or service) on a sub-event.
type QuotationItem struct {
	Description string     `json:"description"`
	Quantity    int        `json:"quantity"`
	UnitPrice   float64    `json:"unitPrice"`
	RentalUnit  RentalUnit `json:"rentalUnit,omitempty"`
	ResourceID  string     `json:"resourceId,omitempty"`
}

func (q QuotationItem) LineTotal() float64 {
	return float64(q.Quantity) * q.UnitPrice
}

func (q QuotationItem) Validate() error {
	if q.Quantity <= 0 {
		return ErrQuotationQuantity
	}

	if q.UnitPrice < 0 {
		return ErrQuotationUnitPrice
	}

	if q.RentalUnit != "" && !q.RentalUnit.IsValid() {
		return ErrRentalUnitUnknown
	}

	return nil
}

type RentalUnit string

const (
	RentalHour RentalUnit = "hour"
	RentalDay  RentalUnit = "day"
	RentalWeek RentalUnit = "week"
)

func (u RentalUnit) IsValid() bool {
	switch u {
	case RentalHour, RentalDay, RentalWeek:
		return true
	default:
		return false
	}
}

// ScaleBase converts a base per-day price to this rental unit.
func (u RentalUnit) ScaleBase(base float64) float64 {
	switch u {
	case RentalHour:
		return base / 8
	case RentalWeek:
		return base * 5
	default:
		// day is the base unit
		return base
	}
}

// Feasibility is a qualitative rating used only for display on review, it
// never gates submission.
type Feasibility string

const (
	FeasibilityHigh   Feasibility = "high"
	FeasibilityMedium Feasibility = "medium"
	FeasibilityLow    Feasibility = "low"
)

func (f Feasibility) IsValid() bool {
	switch f {
	case FeasibilityHigh, FeasibilityMedium, FeasibilityLow:
		return true
	default:
		return false
	}
}

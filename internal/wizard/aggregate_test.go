package wizard

import (
	"math"
	"testing"

	"github.com/geocoder89/planhub/internal/domain/event"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregateScenario(t *testing.T) {
	// one sub-event with a day line and an hour line
	sub := event.SubEvent{
		Name:              "Gala dinner",
		ExpectedAttendees: 120,
		Quotations: []event.QuotationItem{
			{Description: "catering", Quantity: 2, UnitPrice: 100000, RentalUnit: event.RentalDay},
			{Description: "sound system", Quantity: 1, UnitPrice: 50000, RentalUnit: event.RentalHour},
		},
	}

	if got := sub.TotalCost(); !almostEqual(got, 250000) {
		t.Fatalf("expected sub-event total 250000, got %v", got)
	}

	summary := Aggregate(300000, []event.SubEvent{sub}, DefaultAggregatorConfig())

	if !almostEqual(summary.TotalCost, 250000) {
		t.Fatalf("expected total cost 250000, got %v", summary.TotalCost)
	}

	if summary.TotalAttendees != 120 {
		t.Fatalf("expected 120 attendees, got %d", summary.TotalAttendees)
	}

	if !almostEqual(summary.TotalBudget, 330000) {
		t.Fatalf("expected budget 330000 after contingency, got %v", summary.TotalBudget)
	}

	if !almostEqual(summary.Remaining, 80000) {
		t.Fatalf("expected remaining 80000, got %v", summary.Remaining)
	}
}

// totals must be purely additive across sub-events
func TestAggregateAdditivity(t *testing.T) {
	subs := []event.SubEvent{
		{
			Name:              "A",
			ExpectedAttendees: 10,
			Quotations: []event.QuotationItem{
				{Quantity: 3, UnitPrice: 1500},
				{Quantity: 1, UnitPrice: 99.5},
			},
		},
		{
			Name:              "B",
			ExpectedAttendees: 25,
			Quotations: []event.QuotationItem{
				{Quantity: 7, UnitPrice: 20},
			},
		},
		{
			Name:              "C",
			ExpectedAttendees: 0,
		},
	}

	cfg := DefaultAggregatorConfig()

	whole := Aggregate(0, subs, cfg)

	var pieceCost float64
	pieceAttendees := 0

	for _, s := range subs {
		part := Aggregate(0, []event.SubEvent{s}, cfg)
		pieceCost += part.TotalCost
		pieceAttendees += part.TotalAttendees
	}

	if !almostEqual(whole.TotalCost, pieceCost) {
		t.Fatalf("cost not additive: whole=%v pieces=%v", whole.TotalCost, pieceCost)
	}

	if whole.TotalAttendees != pieceAttendees {
		t.Fatalf("attendees not additive: whole=%d pieces=%d", whole.TotalAttendees, pieceAttendees)
	}
}

func TestAggregateNegativeRemaining(t *testing.T) {
	subs := []event.SubEvent{
		{
			Name: "Expensive",
			Quotations: []event.QuotationItem{
				{Quantity: 1, UnitPrice: 500000},
			},
		},
	}

	summary := Aggregate(100000, subs, DefaultAggregatorConfig())

	// over budget is a valid, displayed-as-is state; no clamping
	if summary.Remaining >= 0 {
		t.Fatalf("expected negative remaining, got %v", summary.Remaining)
	}

	if !almostEqual(summary.Remaining, 100000*1.10-500000) {
		t.Fatalf("unexpected remaining %v", summary.Remaining)
	}
}

func TestAggregateFeasibilityScore(t *testing.T) {
	tests := []struct {
		name    string
		ratings []event.Feasibility
		want    float64
	}{
		{"all high", []event.Feasibility{event.FeasibilityHigh, event.FeasibilityHigh}, 100},
		{"mixed", []event.Feasibility{event.FeasibilityHigh, event.FeasibilityLow}, 67.5},
		{"single medium", []event.Feasibility{event.FeasibilityMedium}, 65},
		{"unrated contributes nothing", []event.Feasibility{event.FeasibilityHigh, ""}, 100},
		{"none rated", []event.Feasibility{"", ""}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			subs := make([]event.SubEvent, 0, len(tc.ratings))

			for _, r := range tc.ratings {
				subs = append(subs, event.SubEvent{Name: "s", Feasibility: r})
			}

			summary := Aggregate(0, subs, DefaultAggregatorConfig())

			if !almostEqual(summary.FeasibilityScore, tc.want) {
				t.Fatalf("expected score %v, got %v", tc.want, summary.FeasibilityScore)
			}
		})
	}
}

func TestRentalUnitScaling(t *testing.T) {
	base := 4000.0

	if got := event.RentalDay.ScaleBase(base); !almostEqual(got, base) {
		t.Fatalf("day should be the base price, got %v", got)
	}

	if got := event.RentalWeek.ScaleBase(base); !almostEqual(got, base*5) {
		t.Fatalf("week should be 5x base, got %v", got)
	}

	// hour*8 should round trip back to the day price
	if got := event.RentalHour.ScaleBase(base) * 8; !almostEqual(got, base) {
		t.Fatalf("hour*8 should equal the day price, got %v", got)
	}
}

func TestAggregateRecomputesPerSubEvent(t *testing.T) {
	subs := []event.SubEvent{
		{
			Name: "Workshop",
			Quotations: []event.QuotationItem{
				{Quantity: 4, UnitPrice: 250},
			},
		},
	}

	summary := Aggregate(0, subs, DefaultAggregatorConfig())

	if len(summary.PerSubEvent) != 1 {
		t.Fatalf("expected one per-sub-event row, got %d", len(summary.PerSubEvent))
	}

	if !almostEqual(summary.PerSubEvent[0].TotalCost, 1000) {
		t.Fatalf("expected recomputed line total 1000, got %v", summary.PerSubEvent[0].TotalCost)
	}
}

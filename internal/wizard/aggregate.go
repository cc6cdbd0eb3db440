package wizard

import "github.com/geocoder89/planhub/internal/domain/event"

// AggregatorConfig holds the display heuristics applied at review time.
// Both values came from the product side without a stated business rule,
// so they stay configurable rather than baked in.
type AggregatorConfig struct {
	// ContingencyFactor scales the estimated budget at display time. It is
	// never stored on the event.
	ContingencyFactor float64
	// FeasibilityScores maps the qualitative rating to a display score.
	FeasibilityScores map[event.Feasibility]float64
}

func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		ContingencyFactor: 1.10,
		FeasibilityScores: map[event.Feasibility]float64{
			event.FeasibilityHigh:   100,
			event.FeasibilityMedium: 65,
			event.FeasibilityLow:    35,
		},
	}
}

type SubEventSummary struct {
	Index             int               `json:"index"`
	Name              string            `json:"name"`
	VenueLabel        string            `json:"venueLabel"`
	TotalCost         float64           `json:"totalCost"`
	ExpectedAttendees int               `json:"expectedAttendees"`
	Feasibility       event.Feasibility `json:"feasibility,omitempty"`
}

type Summary struct {
	TotalCost        float64           `json:"totalCost"`
	TotalAttendees   int               `json:"totalAttendees"`
	FeasibilityScore float64           `json:"feasibilityScore"`
	TotalBudget      float64           `json:"totalBudget"`
	Remaining        float64           `json:"remaining"`
	PerSubEvent      []SubEventSummary `json:"perSubEvent"`
}

// Aggregate computes the budget review figures for a set of sub-events.
// Per-sub-event costs are recomputed from the quotation line items every
// time. Remaining may be negative, an over-budget draft is a valid state
// that is displayed as-is.
func Aggregate(estimatedBudget float64, subEvents []event.SubEvent, cfg AggregatorConfig) Summary {
	if cfg.ContingencyFactor == 0 {
		cfg = DefaultAggregatorConfig()
	}

	summary := Summary{
		PerSubEvent: make([]SubEventSummary, 0, len(subEvents)),
	}

	scored := 0
	scoreSum := 0.0

	for i, sub := range subEvents {
		cost := sub.TotalCost()

		summary.TotalCost += cost
		summary.TotalAttendees += sub.ExpectedAttendees

		if score, ok := cfg.FeasibilityScores[sub.Feasibility]; ok {
			scoreSum += score
			scored++
		}

		summary.PerSubEvent = append(summary.PerSubEvent, SubEventSummary{
			Index:             i,
			Name:              sub.Name,
			VenueLabel:        sub.Venue.Label(),
			TotalCost:         cost,
			ExpectedAttendees: sub.ExpectedAttendees,
			Feasibility:       sub.Feasibility,
		})
	}

	if scored > 0 {
		summary.FeasibilityScore = scoreSum / float64(scored)
	}

	summary.TotalBudget = estimatedBudget * cfg.ContingencyFactor
	summary.Remaining = summary.TotalBudget - summary.TotalCost

	return summary
}

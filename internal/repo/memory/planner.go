package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/planhub/internal/domain/event"
	"github.com/geocoder89/planhub/internal/domain/location"
	"github.com/geocoder89/planhub/internal/domain/task"
	"github.com/google/uuid"
)

// Planner keeps the wizard's created records in process memory. Dev-mode
// stand-in for the postgres planner.
type Planner struct {
	mu        sync.Mutex
	events    map[string]event.MainEvent
	subEvents map[string]event.SubEvent
	tasks     map[string]task.Task
	external  map[string]location.ExternalLocation
	finalized map[string]bool
}

func NewPlanner() *Planner {
	return &Planner{
		events:    make(map[string]event.MainEvent),
		subEvents: make(map[string]event.SubEvent),
		tasks:     make(map[string]task.Task),
		external:  make(map[string]location.ExternalLocation),
		finalized: make(map[string]bool),
	}
}

func (p *Planner) CreateEvent(_ context.Context, e event.MainEvent) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	p.events[e.ID] = e

	return e.ID, nil
}

func (p *Planner) CreateExternalLocation(_ context.Context, name, address string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := uuid.NewString()
	p.external[id] = location.ExternalLocation{ID: id, Name: name, Address: address}

	return id, nil
}

func (p *Planner) CreateSubEvent(_ context.Context, eventID string, sub event.SubEvent) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.events[eventID]; !ok {
		return "", event.ErrNotFound
	}

	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}

	p.subEvents[sub.ID] = sub

	return sub.ID, nil
}

func (p *Planner) CreateTask(_ context.Context, t task.Task) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	p.tasks[t.ID] = t

	return t.ID, nil
}

func (p *Planner) FinalizeEvent(_ context.Context, eventID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.events[eventID]; !ok {
		return event.ErrNotFound
	}

	p.finalized[eventID] = true

	return nil
}

// Finalized reports whether an event id went through final submission.
func (p *Planner) Finalized(eventID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.finalized[eventID]
}

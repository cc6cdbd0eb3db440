package wizard

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/geocoder89/planhub/internal/domain/event"
	"github.com/geocoder89/planhub/internal/domain/task"
	"github.com/geocoder89/planhub/internal/draft"
)

// Planner is the narrow surface the wizard needs from the persistence
// layer. Stage-advancing writes go through here; the production
// implementation lives in repo/postgres.
type Planner interface {
	CreateEvent(ctx context.Context, e event.MainEvent) (string, error)
	CreateExternalLocation(ctx context.Context, name, address string) (string, error)
	CreateSubEvent(ctx context.Context, eventID string, sub event.SubEvent) (string, error)
	CreateTask(ctx context.Context, t task.Task) (string, error)
	FinalizeEvent(ctx context.Context, eventID string) error
}

// ResourceUpdate is one stage-3 annotation on an existing sub-event.
// Nothing here blocks advancement, these edits are free-form.
type ResourceUpdate struct {
	Index             int               `json:"index"`
	ExpectedAttendees *int              `json:"expectedAttendees,omitempty"`
	Feasibility       event.Feasibility `json:"feasibility,omitempty"`
}

// ResourceAllocation is the flattened per-line view written to the
// internalResources/externalResources draft keys for the review screen.
type ResourceAllocation struct {
	SubEventIndex int              `json:"subEventIndex"`
	Description   string           `json:"description"`
	Quantity      int              `json:"quantity"`
	UnitPrice     float64          `json:"unitPrice"`
	RentalUnit    event.RentalUnit `json:"rentalUnit,omitempty"`
	ResourceID    string           `json:"resourceId,omitempty"`
}

// Snapshot is the wizard state handed back to the UI layer.
type Snapshot struct {
	Stage     Stage               `json:"stage"`
	StageName string              `json:"stageName"`
	Submitted bool                `json:"submitted"`
	EventID   string              `json:"eventId,omitempty"`
	MainEvent *event.MainEvent    `json:"mainEvent,omitempty"`
	SubEvents []event.SubEvent    `json:"subEvents"`
	Tasks     map[int][]task.Task `json:"tasks,omitempty"`
	Directors map[int]string      `json:"directors,omitempty"`
}

// Controller drives one wizard run: five ordered stages, a scoped draft
// store, and the planner for stage-advancing persistence. A validation or
// remote failure never advances the stage and never mutates the draft.
type Controller struct {
	mu      sync.Mutex
	store   draft.Store
	planner Planner
	cfg     AggregatorConfig

	stage     Stage
	eventID   string
	submitted bool
}

func NewController(store draft.Store, planner Planner, cfg AggregatorConfig) *Controller {
	if cfg.ContingencyFactor == 0 {
		cfg = DefaultAggregatorConfig()
	}

	return &Controller{
		store:   store,
		planner: planner,
		cfg:     cfg,
		stage:   StageMainInfo,
	}
}

func (c *Controller) Stage() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stage
}

func (c *Controller) Submitted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.submitted
}

func (c *Controller) EventID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.eventID
}

func (c *Controller) Snapshot(ctx context.Context) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Stage:     c.stage,
		StageName: c.stage.String(),
		Submitted: c.submitted,
		EventID:   c.eventID,
		SubEvents: c.readSubEvents(ctx),
	}

	var main event.MainEvent

	if c.store.Get(ctx, draft.KeyMainEvent, &main) {
		snap.MainEvent = &main
	}

	tasks := map[int][]task.Task{}

	if c.store.Get(ctx, draft.KeyTasks, &tasks) && len(tasks) > 0 {
		snap.Tasks = tasks
	}

	directors := map[int]string{}

	if c.store.Get(ctx, draft.KeyDirectors, &directors) && len(directors) > 0 {
		snap.Directors = directors
	}

	return snap
}

// SaveMainInfo validates and stages the stage-1 input. The remote event
// record is only created when the user advances past stage 1.
func (c *Controller) SaveMainInfo(ctx context.Context, req event.CreateMainEventRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitted {
		return ErrAlreadySubmitted
	}

	if err := req.Validate(); err != nil {
		return err
	}

	// keep the already-persisted identity when the user edits stage 1 again
	main := event.NewFromCreateRequest(req, "")

	var prev event.MainEvent

	if c.store.Get(ctx, draft.KeyMainEvent, &prev) {
		if prev.ID != "" {
			main.ID = prev.ID
		}
		main.CreatedBy = prev.CreatedBy
		main.CreatedAt = prev.CreatedAt
	}

	return c.store.Set(ctx, draft.KeyMainEvent, main)
}

// SetCreator stamps the staff identity on the drafted main event.
func (c *Controller) SetCreator(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var main event.MainEvent

	if !c.store.Get(ctx, draft.KeyMainEvent, &main) {
		return ErrNoMainEvent
	}

	main.CreatedBy = userID

	return c.store.Set(ctx, draft.KeyMainEvent, main)
}

// AddSubEvent validates the sub-event against the main event window and
// its siblings and appends it to the draft. Returns its index.
func (c *Controller) AddSubEvent(ctx context.Context, sub event.SubEvent) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitted {
		return 0, ErrAlreadySubmitted
	}

	var main event.MainEvent

	if !c.store.Get(ctx, draft.KeyMainEvent, &main) {
		return 0, ErrNoMainEvent
	}

	if err := sub.Validate(main.StartAt, main.EndAt); err != nil {
		return 0, err
	}

	subs := c.readSubEvents(ctx)

	if conflict := FindConflict(candidateOf(sub), subs); conflict != nil {
		return 0, &ConflictError{Conflict: conflict}
	}

	subs = append(subs, sub)

	if err := c.store.Set(ctx, draft.KeySubEvents, subs); err != nil {
		return 0, err
	}

	return len(subs) - 1, nil
}

// UpdateSubEvent re-runs the same validation as AddSubEvent for an edit of
// an existing entry, which is allowed from any later stage.
func (c *Controller) UpdateSubEvent(ctx context.Context, index int, sub event.SubEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitted {
		return ErrAlreadySubmitted
	}

	var main event.MainEvent

	if !c.store.Get(ctx, draft.KeyMainEvent, &main) {
		return ErrNoMainEvent
	}

	subs := c.readSubEvents(ctx)

	if index < 0 || index >= len(subs) {
		return ErrSubEventIndex
	}

	if err := sub.Validate(main.StartAt, main.EndAt); err != nil {
		return err
	}

	if conflict := FindConflictExcluding(candidateOf(sub), subs, index); conflict != nil {
		return &ConflictError{Conflict: conflict}
	}

	// an already-created remote record keeps its identity through edits
	if sub.ID == "" {
		sub.ID = subs[index].ID
	}

	subs[index] = sub

	return c.store.Set(ctx, draft.KeySubEvents, subs)
}

// RemoveSubEvent deletes a drafted sub-event and cascades its tasks and
// director assignment; higher-indexed entries shift down.
func (c *Controller) RemoveSubEvent(ctx context.Context, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitted {
		return ErrAlreadySubmitted
	}

	subs := c.readSubEvents(ctx)

	if index < 0 || index >= len(subs) {
		return ErrSubEventIndex
	}

	subs = append(subs[:index], subs[index+1:]...)

	if err := c.store.Set(ctx, draft.KeySubEvents, subs); err != nil {
		return err
	}

	tasks := map[int][]task.Task{}

	if c.store.Get(ctx, draft.KeyTasks, &tasks) {
		reindexed := make(map[int][]task.Task, len(tasks))

		for i, list := range tasks {
			switch {
			case i < index:
				reindexed[i] = list
			case i > index:
				reindexed[i-1] = list
			}
		}

		if err := c.store.Set(ctx, draft.KeyTasks, reindexed); err != nil {
			return err
		}
	}

	directors := map[int]string{}

	if c.store.Get(ctx, draft.KeyDirectors, &directors) {
		reindexed := make(map[int]string, len(directors))

		for i, assignee := range directors {
			switch {
			case i < index:
				reindexed[i] = assignee
			case i > index:
				reindexed[i-1] = assignee
			}
		}

		if err := c.store.Set(ctx, draft.KeyDirectors, reindexed); err != nil {
			return err
		}
	}

	return nil
}

// CheckConflict is the advisory probe the UI calls on every change to the
// candidate's venue or times. It never mutates anything.
func (c *Controller) CheckConflict(ctx context.Context, candidate Candidate, excludeIndex int) *Conflict {
	c.mu.Lock()
	defer c.mu.Unlock()

	return FindConflictExcluding(candidate, c.readSubEvents(ctx), excludeIndex)
}

// SaveResources applies the stage-3 attendance/feasibility annotations and
// refreshes the derived resource allocation keys. Nothing here blocks.
func (c *Controller) SaveResources(ctx context.Context, updates []ResourceUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitted {
		return ErrAlreadySubmitted
	}

	subs := c.readSubEvents(ctx)

	if len(subs) == 0 {
		return ErrNoSubEvents
	}

	for _, update := range updates {
		if update.Index < 0 || update.Index >= len(subs) {
			return ErrSubEventIndex
		}

		if update.ExpectedAttendees != nil {
			if *update.ExpectedAttendees < 0 {
				return event.ErrNegativeAttendee
			}
			subs[update.Index].ExpectedAttendees = *update.ExpectedAttendees
		}

		if update.Feasibility != "" {
			if !update.Feasibility.IsValid() {
				return event.ErrFeasibilityUnknown
			}
			subs[update.Index].Feasibility = update.Feasibility
		}
	}

	if err := c.store.Set(ctx, draft.KeySubEvents, subs); err != nil {
		return err
	}

	return c.writeAllocations(ctx, subs)
}

// SaveTasks validates and stages the per-sub-event task lists and director
// assignments. Remote task records are created when stage 4 advances.
func (c *Controller) SaveTasks(ctx context.Context, tasks map[int][]task.Task, directors map[int]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitted {
		return ErrAlreadySubmitted
	}

	subs := c.readSubEvents(ctx)

	if len(subs) == 0 {
		return ErrNoSubEvents
	}

	for i, list := range tasks {
		if i < 0 || i >= len(subs) {
			return ErrSubEventIndex
		}

		for _, t := range list {
			if err := t.Validate(); err != nil {
				return err
			}
		}
	}

	for i, assignee := range directors {
		if i < 0 || i >= len(subs) {
			return ErrSubEventIndex
		}

		if strings.TrimSpace(assignee) == "" {
			return task.ErrAssigneeRequired
		}
	}

	if err := c.store.Set(ctx, draft.KeyTasks, tasks); err != nil {
		return err
	}

	return c.store.Set(ctx, draft.KeyDirectors, directors)
}

// Review recomputes the aggregation the stage-5 screen renders.
func (c *Controller) Review(ctx context.Context) (Summary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var main event.MainEvent

	if !c.store.Get(ctx, draft.KeyMainEvent, &main) {
		return Summary{}, ErrNoMainEvent
	}

	subs := c.readSubEvents(ctx)

	if len(subs) == 0 {
		return Summary{}, ErrNoSubEvents
	}

	return Aggregate(main.EstimatedBudget, subs, c.cfg), nil
}

// Next validates the current stage and advances to the following one,
// performing that stage's persistence side effects. On any failure the
// stage and the draft are left exactly as they were.
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitted {
		return ErrAlreadySubmitted
	}

	switch c.stage {
	case StageMainInfo:
		return c.advanceFromMainInfo(ctx)
	case StageSubEvents:
		return c.advanceFromSubEvents(ctx)
	case StageResources:
		c.stage = StageTasks
		return nil
	case StageTasks:
		return c.advanceFromTasks(ctx)
	case StageReview:
		return ErrAtFinalStage
	default:
		return ErrStageOrder
	}
}

// Prev moves one stage back. Never validates, never writes.
func (c *Controller) Prev() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitted {
		return ErrAlreadySubmitted
	}

	if c.stage > StageMainInfo {
		c.stage--
	}

	return nil
}

// JumpTo moves to an arbitrary stage: backward freely, forward only when
// the target stage's prerequisite draft data already exists.
func (c *Controller) JumpTo(ctx context.Context, target Stage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitted {
		return ErrAlreadySubmitted
	}

	if !target.IsValid() {
		return ErrStageOrder
	}

	if target <= c.stage {
		c.stage = target
		return nil
	}

	var main event.MainEvent

	hasMain := c.store.Get(ctx, draft.KeyMainEvent, &main) && main.ID != ""
	hasSubs := len(c.readSubEvents(ctx)) > 0

	switch target {
	case StageSubEvents:
		if !hasMain {
			return ErrStageOrder
		}
	case StageResources, StageTasks:
		if !hasMain || !hasSubs {
			return ErrStageOrder
		}
	case StageReview:
		if !hasMain || !hasSubs {
			return ErrStageOrder
		}
	}

	c.stage = target

	return nil
}

// Submit finalizes the run from the review stage. It requires the explicit
// confirmation flag from the acknowledgment modal, clears the draft store
// and is not reversible.
func (c *Controller) Submit(ctx context.Context, confirmed bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitted {
		return ErrAlreadySubmitted
	}

	if c.stage != StageReview {
		return ErrStageOrder
	}

	if !confirmed {
		return ErrNotConfirmed
	}

	if err := c.planner.FinalizeEvent(ctx, c.eventID); err != nil {
		return remoteErr("finalize_event", err)
	}

	if err := c.store.ClearAll(ctx); err != nil {
		return err
	}

	c.submitted = true

	return nil
}

// Discard throws the draft away without submitting.
func (c *Controller) Discard(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.store.ClearAll(ctx)
}

func (c *Controller) advanceFromMainInfo(ctx context.Context) error {
	var main event.MainEvent

	if !c.store.Get(ctx, draft.KeyMainEvent, &main) {
		return ErrNoMainEvent
	}

	req := event.CreateMainEventRequest{
		Name:              main.Name,
		Description:       main.Description,
		StartAt:           main.StartAt,
		EndAt:             main.EndAt,
		ExpectedAttendees: main.ExpectedAttendees,
		EstimatedBudget:   main.EstimatedBudget,
		Venue:             main.Venue,
	}

	if err := req.Validate(); err != nil {
		return err
	}

	if main.ID == "" {
		id, err := c.planner.CreateEvent(ctx, main)

		if err != nil {
			return remoteErr("create_event", err)
		}

		main.ID = id

		if err := c.store.Set(ctx, draft.KeyMainEvent, main); err != nil {
			return err
		}
	}

	c.eventID = main.ID
	c.stage = StageSubEvents

	return nil
}

func (c *Controller) advanceFromSubEvents(ctx context.Context) error {
	var main event.MainEvent

	if !c.store.Get(ctx, draft.KeyMainEvent, &main) {
		return ErrNoMainEvent
	}

	subs := c.readSubEvents(ctx)

	if len(subs) == 0 {
		return ErrNoSubEvents
	}

	for i, sub := range subs {
		if err := sub.Validate(main.StartAt, main.EndAt); err != nil {
			return err
		}

		if conflict := FindConflictExcluding(candidateOf(sub), subs, i); conflict != nil {
			return &ConflictError{Conflict: conflict}
		}
	}

	// persist sub-events that do not have a remote record yet; an external
	// venue without an id gets created first and referenced by the result
	created := make([]event.SubEvent, len(subs))
	copy(created, subs)

	for i := range created {
		if created[i].ID != "" {
			continue
		}

		if created[i].Venue.Kind == event.VenueExternal && created[i].Venue.External != nil &&
			created[i].Venue.External.LocationID == "" {
			locID, err := c.planner.CreateExternalLocation(ctx,
				created[i].Venue.External.Name, created[i].Venue.External.Address)

			if err != nil {
				return remoteErr("create_external_location", err)
			}

			created[i].Venue.External.LocationID = locID
		}

		id, err := c.planner.CreateSubEvent(ctx, main.ID, created[i])

		if err != nil {
			return remoteErr("create_sub_event", err)
		}

		created[i].ID = id
	}

	if err := c.store.Set(ctx, draft.KeySubEvents, created); err != nil {
		return err
	}

	if err := c.writeAllocations(ctx, created); err != nil {
		return err
	}

	c.stage = StageResources

	return nil
}

func (c *Controller) advanceFromTasks(ctx context.Context) error {
	subs := c.readSubEvents(ctx)

	if len(subs) == 0 {
		return ErrNoSubEvents
	}

	tasks := map[int][]task.Task{}
	c.store.Get(ctx, draft.KeyTasks, &tasks)

	for i, list := range tasks {
		if i < 0 || i >= len(subs) {
			return ErrSubEventIndex
		}

		for _, t := range list {
			if err := t.Validate(); err != nil {
				return err
			}
		}
	}

	created := make(map[int][]task.Task, len(tasks))

	for i, list := range tasks {
		subID := subs[i].ID
		out := make([]task.Task, len(list))

		for j, t := range list {
			if t.ID == "" {
				t.SubEventID = subID

				id, err := c.planner.CreateTask(ctx, t)

				if err != nil {
					return remoteErr("create_task", err)
				}

				t.ID = id
			}

			out[j] = t
		}

		created[i] = out
	}

	if len(created) > 0 {
		if err := c.store.Set(ctx, draft.KeyTasks, created); err != nil {
			return err
		}
	}

	c.stage = StageReview

	return nil
}

func (c *Controller) readSubEvents(ctx context.Context) []event.SubEvent {
	subs := []event.SubEvent{}
	c.store.Get(ctx, draft.KeySubEvents, &subs)

	return subs
}

// writeAllocations refreshes the derived resource keys: lines referencing
// an inventory resource are internal, everything else is rented externally.
func (c *Controller) writeAllocations(ctx context.Context, subs []event.SubEvent) error {
	internal := []ResourceAllocation{}
	external := []ResourceAllocation{}

	for i, sub := range subs {
		for _, q := range sub.Quotations {
			alloc := ResourceAllocation{
				SubEventIndex: i,
				Description:   q.Description,
				Quantity:      q.Quantity,
				UnitPrice:     q.UnitPrice,
				RentalUnit:    q.RentalUnit,
				ResourceID:    q.ResourceID,
			}

			if q.ResourceID != "" {
				internal = append(internal, alloc)
			} else {
				external = append(external, alloc)
			}
		}
	}

	if err := c.store.Set(ctx, draft.KeyInternalResources, internal); err != nil {
		return err
	}

	return c.store.Set(ctx, draft.KeyExternalResources, external)
}

func candidateOf(sub event.SubEvent) Candidate {
	venueID, _ := sub.Venue.LocationID()

	return Candidate{
		VenueID: venueID,
		StartAt: sub.StartAt,
		EndAt:   sub.EndAt,
	}
}

func remoteErr(op string, err error) error {
	if err == nil {
		return nil
	}

	var remote *RemoteError

	// the planner may already classify its failures
	if errors.As(err, &remote) {
		return err
	}

	return &RemoteError{Op: op, Unreachable: true, Err: err}
}

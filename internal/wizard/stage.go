package wizard

// Stage is one step of the event creation workflow. Stages advance strictly
// in order; jumping backward is always allowed, jumping forward only when
// the draft already holds the prerequisite data for the target stage.
type Stage int

const (
	StageMainInfo Stage = iota + 1
	StageSubEvents
	StageResources
	StageTasks
	StageReview
)

func (s Stage) IsValid() bool {
	return s >= StageMainInfo && s <= StageReview
}

func (s Stage) String() string {
	switch s {
	case StageMainInfo:
		return "main_info"
	case StageSubEvents:
		return "sub_events"
	case StageResources:
		return "resources"
	case StageTasks:
		return "tasks"
	case StageReview:
		return "review"
	default:
		return "unknown"
	}
}

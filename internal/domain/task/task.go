package task

import (
	"errors"
	"strings"
	"time"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

var (
	ErrTitleRequired    = errors.New("task title is required")
	ErrAssigneeRequired = errors.New("task assignee is required")
	ErrDueBeforeStart   = errors.New("task due date cannot be before its start date")
	ErrStatusUnknown    = errors.New("unknown task status")
)

// Task is a preparation item owned by exactly one sub-event.
type Task struct {
	ID          string    `json:"id,omitempty"`
	SubEventID  string    `json:"subEventId,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	AssigneeID  string    `json:"assigneeId"`
	StartAt     time.Time `json:"startAt"`
	DueAt       time.Time `json:"dueAt"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrTitleRequired
	}

	if strings.TrimSpace(t.AssigneeID) == "" {
		return ErrAssigneeRequired
	}

	if !t.StartAt.IsZero() && !t.DueAt.IsZero() && t.DueAt.Before(t.StartAt) {
		return ErrDueBeforeStart
	}

	if t.Status != "" && !t.Status.IsValid() {
		return ErrStatusUnknown
	}

	return nil
}

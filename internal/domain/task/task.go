package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalid marks input faults from constructors and updates so handlers
// can map them to client errors.
var ErrInvalid = errors.New("invalid task")

// Status represents where a task sits in its lifecycle.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusDone       Status = "done"
)

// Priority runs from 1 (lowest) to 5 (highest).
const (
	MinPriority = 1
	MaxPriority = 5
)

// Task is a unit of work owned by a single user. PublicID is the identifier
// exposed over the API; ID stays internal to the store.
type Task struct {
	ID          int64      `json:"-"`
	PublicID    uuid.UUID  `json:"id"`
	OwnerID     int64      `json:"ownerId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    int        `json:"priority"`
	DueAt       *time.Time `json:"dueAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// New creates an open task with validation.
func New(ownerID int64, title, description string, priority int, dueAt *time.Time) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalid)
	}
	if ownerID <= 0 {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalid)
	}
	if priority == 0 {
		priority = MinPriority
	}
	if priority < MinPriority || priority > MaxPriority {
		return nil, fmt.Errorf("%w: priority must be between %d and %d", ErrInvalid, MinPriority, MaxPriority)
	}

	now := time.Now()
	return &Task{
		PublicID:    uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Status:      StatusOpen,
		Priority:    priority,
		DueAt:       dueAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Update applies non-zero fields to the task.
func (t *Task) Update(title, description string, status Status, priority int, dueAt *time.Time) error {
	if status != "" && !validStatus(status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, status)
	}
	if priority != 0 && (priority < MinPriority || priority > MaxPriority) {
		return fmt.Errorf("%w: priority must be between %d and %d", ErrInvalid, MinPriority, MaxPriority)
	}

	if title = strings.TrimSpace(title); title != "" {
		t.Title = title
	}
	if description != "" {
		t.Description = strings.TrimSpace(description)
	}
	if status != "" {
		t.Status = status
	}
	if priority != 0 {
		t.Priority = priority
	}
	if dueAt != nil {
		t.DueAt = dueAt
	}
	t.UpdatedAt = time.Now()
	return nil
}

// IsDone reports whether the task reached its terminal state.
func (t *Task) IsDone() bool { return t.Status == StatusDone }

func validStatus(s Status) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusBlocked, StatusDone:
		return true
	}
	return false
}

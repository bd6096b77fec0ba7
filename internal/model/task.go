package model

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusBlocked    TaskStatus = "blocked"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// IsTerminal reports whether no further transitions leave this status.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}

// CanTransitionTo encodes the task state machine:
//
//	pending -> in_progress -> completed
//	pending|in_progress -> blocked, blocked -> in_progress
//	any non-terminal -> cancelled
//
// A same-status "transition" is allowed so general updates that do not touch
// the status round-trip cleanly.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	if s == next {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	if next == TaskStatusCancelled {
		return true
	}
	switch s {
	case TaskStatusPending:
		return next == TaskStatusInProgress || next == TaskStatusBlocked
	case TaskStatusInProgress:
		return next == TaskStatusCompleted || next == TaskStatusBlocked
	case TaskStatusBlocked:
		return next == TaskStatusInProgress
	default:
		return false
	}
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

type Task struct {
	ID          int64        `json:"id"`
	ProjectID   int64        `json:"project_id"`
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	AssigneeID  *int64       `json:"assignee_id,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	IsDeleted   bool         `json:"-"` // internal, not exposed in API
}

// IsOverdue reports whether the due date has passed. Completed tasks are
// never overdue, regardless of due date.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != TaskStatusCompleted
}

func (t *Task) IsAssigned() bool {
	return t.AssigneeID != nil
}

// MarkCompleted returns a completed copy; the receiver is left untouched and
// the caller persists the new value.
func (t Task) MarkCompleted() Task {
	t.Status = TaskStatusCompleted
	return t
}

func (t Task) WithStatus(status TaskStatus) Task {
	t.Status = status
	return t
}

func (t Task) WithAssignee(userID *int64) Task {
	t.AssigneeID = userID
	return t
}

package model

import "time"

type TaskComment struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	AuthorID  int64     `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IsDeleted bool      `json:"-"` // internal, not exposed in API
}

// WithBody returns an edited copy with refreshed content and update time.
func (c TaskComment) WithBody(body string, now time.Time) TaskComment {
	c.Body = body
	c.UpdatedAt = now
	return c
}

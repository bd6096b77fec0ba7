package model

import "time"

type WorkspaceStatus string

const (
	WorkspaceStatusActive    WorkspaceStatus = "active"
	WorkspaceStatusInactive  WorkspaceStatus = "inactive"
	WorkspaceStatusSuspended WorkspaceStatus = "suspended"
)

type Workspace struct {
	ID          int64           `json:"id"`
	OwnerID     int64           `json:"owner_id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description *string         `json:"description,omitempty"`
	Status      WorkspaceStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	IsDeleted   bool            `json:"-"` // internal, not exposed in API
}

// WithName returns a copy renamed to name and slug. The caller is responsible
// for slug derivation and collision checks before building the copy.
func (w Workspace) WithName(name, slug string) Workspace {
	w.Name = name
	w.Slug = slug
	return w
}

type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

// Membership is the (workspace, user, role) relation. Exactly one row exists
// per pair; re-adding a member updates role and joined_at in place.
type Membership struct {
	WorkspaceID int64      `json:"workspace_id"`
	UserID      int64      `json:"user_id"`
	Role        MemberRole `json:"role"`
	JoinedAt    time.Time  `json:"joined_at"`
}

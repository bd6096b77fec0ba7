package store

import (
	"strings"

	"crewdesk.app/core/core/db"
)

// Stores bundles every store over a shared querier. The querier can be the
// connection pool or a transaction; all stores built from one Stores value
// share it.
type Stores struct {
	q db.Querier
}

func NewStores(q db.Querier) *Stores {
	return &Stores{q: q}
}

func (s *Stores) Users() UserStore             { return &userStore{q: s.q} }
func (s *Stores) Workspaces() WorkspaceStore   { return &workspaceStore{q: s.q} }
func (s *Stores) Memberships() MembershipStore { return &membershipStore{q: s.q} }
func (s *Stores) Projects() ProjectStore       { return &projectStore{q: s.q} }
func (s *Stores) Tasks() TaskStore             { return &taskStore{q: s.q} }
func (s *Stores) Comments() CommentStore       { return &commentStore{q: s.q} }
func (s *Stores) Attachments() AttachmentStore { return &attachmentStore{q: s.q} }
func (s *Stores) EventLogs() EventLogStore     { return &eventLogStore{q: s.q} }

// prefixColumns qualifies a comma-separated column list with a table alias,
// for joined queries.
func prefixColumns(prefix, cols string) string {
	return prefix + strings.ReplaceAll(cols, ", ", ", "+prefix)
}

package service

import (
	"context"

	"crewdesk.app/core/core/db"
	"crewdesk.app/core/internal/store"
)

// StoreProvider exposes the stores a transactional operation needs.
type StoreProvider interface {
	Users() store.UserStore
	Workspaces() store.WorkspaceStore
	Memberships() store.MembershipStore
	Projects() store.ProjectStore
	Tasks() store.TaskStore
	Comments() store.CommentStore
	Attachments() store.AttachmentStore
	EventLogs() store.EventLogStore
}

// TxRunner runs functions within a transaction and provides stores bound to
// that transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type dbTxRunner struct {
	db *db.DB
}

// NewTxRunner builds a TxRunner backed by the core DB.
func NewTxRunner(db *db.DB) TxRunner {
	return &dbTxRunner{db: db}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return r.db.WithTx(ctx, func(q db.Querier) error {
		stores := store.NewStores(q)
		return fn(stores)
	})
}

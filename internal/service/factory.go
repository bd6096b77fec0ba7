package service

import (
	"crewdesk.app/core/core/config"
	"crewdesk.app/core/internal/authz"
	"crewdesk.app/core/internal/event"
	"crewdesk.app/core/internal/storage"
	"crewdesk.app/core/internal/store"
)

type Services struct {
	workspaces  store.WorkspaceStore
	users       store.UserStore
	stores      *store.Stores
	txRunner    TxRunner
	authz       *authz.Engine
	bus         *event.Bus
	files       storage.FileStore
	attachments config.AttachmentsConfig
}

// NewServices wires the service layer. workspaces and users may be cache
// decorators; the remaining stores come from the shared pool-backed set.
func NewServices(
	workspaces store.WorkspaceStore,
	users store.UserStore,
	stores *store.Stores,
	txRunner TxRunner,
	authzEngine *authz.Engine,
	bus *event.Bus,
	files storage.FileStore,
	attachments config.AttachmentsConfig,
) *Services {
	return &Services{
		workspaces:  workspaces,
		users:       users,
		stores:      stores,
		txRunner:    txRunner,
		authz:       authzEngine,
		bus:         bus,
		files:       files,
		attachments: attachments,
	}
}

// Authz exposes the shared authorization engine for surfaces that make
// access decisions outside the service layer, like realtime channel auth.
func (s *Services) Authz() *authz.Engine {
	return s.authz
}

func (s *Services) Users() UserService {
	return NewUserService(s.users, s.authz)
}

func (s *Services) Workspaces() WorkspaceService {
	return NewWorkspaceService(s.workspaces, s.stores.Memberships(), s.users, s.authz, s.txRunner)
}

func (s *Services) Projects() ProjectService {
	return NewProjectService(s.workspaces, s.stores.Projects(), s.authz, s.txRunner)
}

func (s *Services) Tasks() TaskService {
	return NewTaskService(s.stores.Projects(), s.stores.Tasks(), s.authz, s.bus, s.txRunner)
}

func (s *Services) Comments() CommentService {
	return NewCommentService(s.stores.Tasks(), s.stores.Comments(), s.authz, s.bus)
}

func (s *Services) Attachments() AttachmentService {
	return NewAttachmentService(s.stores.Tasks(), s.stores.Attachments(), s.files, s.authz, s.bus, s.attachments.Namespace)
}

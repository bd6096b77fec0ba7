package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"crewdesk.app/core/internal/model"
	"crewdesk.app/core/internal/store"
)

// WorkspaceStore decorates a store.WorkspaceStore with cached GetByID. Cache
// failures degrade to the underlying store; they never fail a read.
type WorkspaceStore struct {
	store.WorkspaceStore
	kv  KV
	ttl time.Duration
}

func NewWorkspaceStore(inner store.WorkspaceStore, kv KV, ttl time.Duration) *WorkspaceStore {
	return &WorkspaceStore{WorkspaceStore: inner, kv: kv, ttl: ttl}
}

func (s *WorkspaceStore) GetByID(ctx context.Context, id int64) (*model.Workspace, error) {
	key := workspaceKey(id)

	if data, hit, err := s.kv.Get(ctx, key); err != nil {
		slog.WarnContext(ctx, "workspace cache read failed", "error", err, "key", key)
	} else if hit {
		var ws model.Workspace
		if err := json.Unmarshal(data, &ws); err == nil {
			return &ws, nil
		}
		slog.WarnContext(ctx, "workspace cache entry corrupt, evicting", "key", key)
		_ = s.kv.Del(ctx, key)
	}

	ws, err := s.WorkspaceStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(ws); err == nil {
		if err := s.kv.Set(ctx, key, data, s.ttl); err != nil {
			slog.WarnContext(ctx, "workspace cache write failed", "error", err, "key", key)
		}
	}
	return ws, nil
}

func (s *WorkspaceStore) Update(ctx context.Context, ws *model.Workspace) error {
	if err := s.WorkspaceStore.Update(ctx, ws); err != nil {
		return err
	}
	return s.kv.Del(ctx, workspaceKey(ws.ID))
}

func (s *WorkspaceStore) Delete(ctx context.Context, id int64) error {
	if err := s.WorkspaceStore.Delete(ctx, id); err != nil {
		return err
	}
	return s.kv.Del(ctx, workspaceKey(id))
}

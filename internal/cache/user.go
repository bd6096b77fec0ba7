package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"crewdesk.app/core/internal/model"
	"crewdesk.app/core/internal/store"
)

// UserStore decorates a store.UserStore with cached GetByID.
type UserStore struct {
	store.UserStore
	kv  KV
	ttl time.Duration
}

func NewUserStore(inner store.UserStore, kv KV, ttl time.Duration) *UserStore {
	return &UserStore{UserStore: inner, kv: kv, ttl: ttl}
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	key := userKey(id)

	if data, hit, err := s.kv.Get(ctx, key); err != nil {
		slog.WarnContext(ctx, "user cache read failed", "error", err, "key", key)
	} else if hit {
		var u model.User
		if err := json.Unmarshal(data, &u); err == nil {
			return &u, nil
		}
		slog.WarnContext(ctx, "user cache entry corrupt, evicting", "key", key)
		_ = s.kv.Del(ctx, key)
	}

	u, err := s.UserStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(u); err == nil {
		if err := s.kv.Set(ctx, key, data, s.ttl); err != nil {
			slog.WarnContext(ctx, "user cache write failed", "error", err, "key", key)
		}
	}
	return u, nil
}

func (s *UserStore) Update(ctx context.Context, u *model.User) error {
	if err := s.UserStore.Update(ctx, u); err != nil {
		return err
	}
	return s.kv.Del(ctx, userKey(u.ID))
}

func (s *UserStore) Delete(ctx context.Context, id int64) error {
	if err := s.UserStore.Delete(ctx, id); err != nil {
		return err
	}
	return s.kv.Del(ctx, userKey(id))
}

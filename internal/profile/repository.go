package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
)

const userKey = "user"

var ErrProfileNotFound = errors.New("profile not found")

type IRepository interface {
	Get(ctx context.Context, sessionID string) (*model.UserProfile, error)
	Save(ctx context.Context, sessionID string, profile model.UserProfile) error
	Delete(ctx context.Context, sessionID string) error
}

var _ IRepository = (*Repository)(nil)

// Repository profile 以 JSON 存在 {session}:user
type Repository struct {
	store kv.Store
}

func NewRepository(store kv.Store) *Repository {
	return &Repository{store: store}
}

func generateUserKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", sessionID, userKey)
}

func (r *Repository) Get(ctx context.Context, sessionID string) (*model.UserProfile, error) {
	raw, err := r.store.Get(ctx, generateUserKey(sessionID))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var p model.UserProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &p, nil
}

func (r *Repository) Save(ctx context.Context, sessionID string, profile model.UserProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := r.store.Set(ctx, generateUserKey(sessionID), raw); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, sessionID string) error {
	if err := r.store.Delete(ctx, generateUserKey(sessionID)); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}

// Package profile 使用者資料，結帳時用於預填與建立帳號
package profile

import (
	"context"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/rs/zerolog"
)

type IService interface {
	Get(ctx context.Context, sessionID string) (*model.UserProfile, error)
	Save(ctx context.Context, sessionID string, profile model.UserProfile) error
	Update(ctx context.Context, sessionID string, patch model.UserProfile) (*model.UserProfile, error)
	Delete(ctx context.Context, sessionID string) error
}

var _ IService = (*Service)(nil)

type Service struct {
	repo   IRepository
	logger *zerolog.Logger
}

func NewService(repo IRepository, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Get(ctx context.Context, sessionID string) (*model.UserProfile, error) {
	return s.repo.Get(ctx, sessionID)
}

// Save 整筆覆寫
func (s *Service) Save(ctx context.Context, sessionID string, profile model.UserProfile) error {
	if err := Validate(profile); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, sessionID, profile); err != nil {
		return err
	}
	s.logger.Info().Str("session_id", sessionID).Msg("profile saved")
	return nil
}

// Update 只覆蓋有值的欄位，合併後再驗證
func (s *Service) Update(ctx context.Context, sessionID string, patch model.UserProfile) (*model.UserProfile, error) {
	current, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	merged := Merge(*current, patch)
	if err := Validate(merged); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, sessionID, merged); err != nil {
		return nil, err
	}
	s.logger.Info().Str("session_id", sessionID).Msg("profile updated")
	return &merged, nil
}

// Delete 登出
func (s *Service) Delete(ctx context.Context, sessionID string) error {
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.logger.Info().Str("session_id", sessionID).Msg("profile removed")
	return nil
}

func Merge(base, patch model.UserProfile) model.UserProfile {
	pick := func(cur, next string) string {
		if strings.TrimSpace(next) == "" {
			return cur
		}
		return next
	}
	return model.UserProfile{
		Email:   pick(base.Email, patch.Email),
		Name:    pick(base.Name, patch.Name),
		Phone:   pick(base.Phone, patch.Phone),
		Address: pick(base.Address, patch.Address),
		City:    pick(base.City, patch.City),
		State:   pick(base.State, patch.State),
		Country: pick(base.Country, patch.Country),
	}
}

package app

import (
	"context"

	"grape-bot/internal/domain/entity"
	"grape-bot/internal/domain/port"
)

type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID string, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) Exists(ctx context.Context, userID string) (bool, error) {
	return s.repo.Exists(ctx, userID)
}

// Dispatch атомарно применяет действие к состоянию пользователя.
func (s *UserService) Dispatch(ctx context.Context, userID string, chatID int64, action entity.Action) (*entity.User, error) {
	return s.repo.Update(ctx, userID, chatID, func(u *entity.User) error {
		u.Apply(action)
		return nil
	})
}

// Navigate переключает активный раздел.
func (s *UserService) Navigate(ctx context.Context, userID string, chatID int64, section entity.Section) (*entity.User, error) {
	return s.Dispatch(ctx, userID, chatID, entity.Navigate{Section: section})
}

func (s *UserService) update(ctx context.Context, userID string, chatID int64, fn func(u *entity.User) error) (*entity.User, error) {
	return s.repo.Update(ctx, userID, chatID, fn)
}

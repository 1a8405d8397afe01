package port

import (
	"context"

	"grape-bot/internal/domain/entity"
)

// UserRepository интерфейс хранилища пользователей
type UserRepository interface {
	// Get возвращает пользователя по ID, создаёт нового если не найден
	Get(ctx context.Context, userID string, chatID int64) (*entity.User, error)

	// Exists сообщает, есть ли пользователь, не создавая его
	Exists(ctx context.Context, userID string) (bool, error)

	// Save сохраняет состояние пользователя
	Save(ctx context.Context, user *entity.User) error

	// Update атомарно изменяет пользователя. Если fn вернула ошибку, изменения не сохраняются.
	Update(ctx context.Context, userID string, chatID int64, fn func(user *entity.User) error) (*entity.User, error)
}

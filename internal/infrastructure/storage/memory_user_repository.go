package storage

import (
	"context"
	"sync"

	"grape-bot/internal/domain/entity"
	"grape-bot/internal/domain/port"
)

// MemoryUserRepository in-memory хранилище пользователей.
// Наружу отдаются копии, поэтому State можно читать без блокировок.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User
}

// NewMemoryUserRepository создаёт новое in-memory хранилище
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]*entity.User),
	}
}

// Get возвращает пользователя по ID, создаёт нового если не найден
func (r *MemoryUserRepository) Get(ctx context.Context, userID string, chatID int64) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	user, exists := r.users[userID]
	r.mu.RUnlock()

	if exists {
		return clone(user), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.getOrCreate(userID, chatID)), nil
}

func (r *MemoryUserRepository) Exists(ctx context.Context, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.users[userID]
	return exists, nil
}

// Save сохраняет состояние пользователя
func (r *MemoryUserRepository) Save(ctx context.Context, user *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	r.users[user.ID] = clone(user)
	r.mu.Unlock()

	return nil
}

// Update атомарно изменяет пользователя под блокировкой
func (r *MemoryUserRepository) Update(ctx context.Context, userID string, chatID int64, fn func(user *entity.User) error) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user := clone(r.getOrCreate(userID, chatID))
	if err := fn(user); err != nil {
		return nil, err
	}
	r.users[userID] = user

	return clone(user), nil
}

// Len количество известных пользователей
func (r *MemoryUserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// getOrCreate вызывается под r.mu.Lock
func (r *MemoryUserRepository) getOrCreate(userID string, chatID int64) *entity.User {
	if user, exists := r.users[userID]; exists {
		return user
	}
	user := entity.NewUser(userID, chatID)
	r.users[userID] = user
	return user
}

func clone(u *entity.User) *entity.User {
	c := *u
	return &c
}

// Проверка реализации интерфейса
var _ port.UserRepository = (*MemoryUserRepository)(nil)

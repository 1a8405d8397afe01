package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"grape-bot/internal/domain/entity"
	"grape-bot/internal/infrastructure/storage"
)

func TestUserService_Navigate(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.Navigate(ctx, "1", 10, entity.SectionScan)
	require.NoError(t, err)
	require.Equal(t, entity.SectionScan, user.State.Section)

	user, err = svc.Navigate(ctx, "1", 10, entity.SectionHome)
	require.NoError(t, err)
	require.Equal(t, entity.SectionHome, user.State.Section)

	// Пустой раздел игнорируется
	user, err = svc.Navigate(ctx, "1", 10, "")
	require.NoError(t, err)
	require.Equal(t, entity.SectionHome, user.State.Section)
}

func TestUserService_Exists(t *testing.T) {
	svc := NewUserService(storage.NewMemoryUserRepository())
	ctx := context.Background()

	ok, err := svc.Exists(ctx, "3")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = svc.Get(ctx, "3", 0)
	require.NoError(t, err)

	ok, err = svc.Exists(ctx, "3")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestUserService_Dispatch(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.Dispatch(ctx, "2", 20, entity.FileRejected{Err: entity.ErrInvalidFileType})
	require.NoError(t, err)
	require.Equal(t, entity.ErrInvalidFileType, user.State.Err)

	stored, err := svc.Get(ctx, "2", 20)
	require.NoError(t, err)
	require.Equal(t, user.State, stored.State)
}

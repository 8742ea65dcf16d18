package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterhq/roster-backend/internal/auth/service"
	"github.com/rosterhq/roster-backend/internal/common/logger"
	"github.com/rosterhq/roster-backend/internal/user/domain"
	"github.com/rosterhq/roster-backend/internal/user/repository"
)

func setupAuth(t *testing.T) (*service.AuthService, *repository.MemoryRepository) {
	t.Helper()

	log, err := logger.New("", "test", "ERROR")
	require.NoError(t, err)

	repo := repository.NewMemoryRepository()
	return service.NewAuthService(repo, log), repo
}

func TestAuthenticate_Success_SetsOnline(t *testing.T) {
	auth, repo := setupAuth(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, domain.User{ID: 1, Username: "first", Password: "123", Status: domain.StatusOffline})
	require.NoError(t, err)

	principal, err := auth.Authenticate(ctx, "first", "123")
	require.NoError(t, err)

	assert.Equal(t, int64(1), principal.ID)
	assert.Equal(t, "first", principal.Username)
	assert.Equal(t, service.RoleUser, principal.Role)

	stored, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOnline, stored.Status)
}

func TestAuthenticate_WrongPassword_NoSideEffects(t *testing.T) {
	auth, repo := setupAuth(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, domain.User{ID: 1, Username: "first", Password: "123", Status: domain.StatusOffline})
	require.NoError(t, err)

	_, err = auth.Authenticate(ctx, "first", "wrong")
	assert.ErrorIs(t, err, service.ErrBadCredentials)

	stored, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOffline, stored.Status)
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	auth, _ := setupAuth(t)

	_, err := auth.Authenticate(context.Background(), "ghost", "123")
	assert.ErrorIs(t, err, service.ErrBadCredentials)
}

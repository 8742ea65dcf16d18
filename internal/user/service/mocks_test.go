package service_test

import (
	"context"

	"github.com/rosterhq/roster-backend/internal/user/domain"
	"github.com/rosterhq/roster-backend/internal/user/repository"
)

type mockRepo struct {
	findAllFunc        func(ctx context.Context) ([]domain.User, error)
	findByIDFunc       func(ctx context.Context, id int64) (domain.User, error)
	findByUsernameFunc func(ctx context.Context, username string) (domain.User, error)
	saveFunc           func(ctx context.Context, user domain.User) (domain.User, error)
	deleteAllFunc      func(ctx context.Context) error

	saveCalls int
}

func (m *mockRepo) FindAll(ctx context.Context) ([]domain.User, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx)
	}
	return nil, nil
}

func (m *mockRepo) FindByID(ctx context.Context, id int64) (domain.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (m *mockRepo) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (m *mockRepo) Save(ctx context.Context, user domain.User) (domain.User, error) {
	m.saveCalls++
	if m.saveFunc != nil {
		return m.saveFunc(ctx, user)
	}
	return user, nil
}

func (m *mockRepo) DeleteAll(ctx context.Context) error {
	if m.deleteAllFunc != nil {
		return m.deleteAllFunc(ctx)
	}
	return nil
}

type stubTokens struct {
	token string
	err   error
}

func (s *stubTokens) NewToken() (string, error) {
	if s.token == "" && s.err == nil {
		return "token-1", nil
	}
	return s.token, s.err
}

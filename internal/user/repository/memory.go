package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/rosterhq/roster-backend/internal/user/domain"
)

// MemoryRepository keeps users in process memory. It is the default backend
// when no database is configured and the one the test suite runs against.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[int64]domain.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[int64]domain.User)}
}

func (r *MemoryRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	return users, nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id int64) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return u, nil
}

func (r *MemoryRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, ErrUserNotFound
}

func (r *MemoryRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username && u.ID != user.ID {
			return domain.User{}, ErrUsernameAlreadyExists
		}
	}

	r.users[user.ID] = user
	return user, nil
}

func (r *MemoryRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users = make(map[int64]domain.User)
	return nil
}

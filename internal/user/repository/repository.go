package repository

import (
	"context"
	"errors"

	"github.com/rosterhq/roster-backend/internal/user/domain"
)

// Repository is the user store contract. FindAll returns users in id order,
// Save inserts or overwrites by id, DeleteAll exists for test resets only.
type Repository interface {
	FindAll(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id int64) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	Save(ctx context.Context, user domain.User) (domain.User, error)
	DeleteAll(ctx context.Context) error
}

var ErrUserNotFound = errors.New("user not found")

var ErrUsernameAlreadyExists = errors.New("username already exists")

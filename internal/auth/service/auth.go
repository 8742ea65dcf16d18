package service

import (
	"context"
	"errors"

	commonerrors "github.com/rosterhq/roster-backend/internal/common/errors"
	"github.com/rosterhq/roster-backend/internal/common/logger"
	"github.com/rosterhq/roster-backend/internal/observability/metrics"
	"github.com/rosterhq/roster-backend/internal/user/domain"
	"github.com/rosterhq/roster-backend/internal/user/repository"
)

const RoleUser = "USER"

// Principal is the identity produced by a successful credential check.
type Principal struct {
	ID       int64
	Username string
	Role     string
}

var ErrBadCredentials = commonerrors.NewDomainError(
	"BAD_CREDENTIALS",
	commonerrors.CategoryUnauthorized,
	401,
	"The credentials are incorrect",
)

type AuthService struct {
	repo repository.Repository
	log  *logger.Logger
}

func NewAuthService(repo repository.Repository, log *logger.Logger) *AuthService {
	return &AuthService{repo: repo, log: log}
}

// Authenticate verifies the submitted credentials against the store.
// Passwords are stored and compared in plaintext; that weakness is part of
// the documented login contract and deliberately not patched here. On match
// the user is marked ONLINE; on a miss or mismatch nothing is mutated.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (Principal, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": username,
		"action":   "login_attempt",
	}).Info("login attempt")

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"username": username,
				"action":   "login_user_not_found",
			}).Warn("login failed: not found")
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return Principal{}, ErrBadCredentials
		}
		return Principal{}, commonerrors.NewDomainError(
			"STORE_FAILURE",
			commonerrors.CategoryInternal,
			500,
			"failed to fetch user",
		).WithCause(err)
	}

	if user.Password != password {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "login_invalid_password",
		}).Warn("login failed: invalid password")
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return Principal{}, ErrBadCredentials
	}

	user.Status = domain.StatusOnline
	if _, err := s.repo.Save(ctx, user); err != nil {
		return Principal{}, commonerrors.NewDomainError(
			"STORE_FAILURE",
			commonerrors.CategoryInternal,
			500,
			"failed to update user status",
		).WithCause(err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  user.ID,
		"action":   "login_success",
	}).Info("login success")

	return Principal{ID: user.ID, Username: user.Username, Role: RoleUser}, nil
}

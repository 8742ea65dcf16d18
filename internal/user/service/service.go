package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/rosterhq/roster-backend/internal/common/clock"
	"github.com/rosterhq/roster-backend/internal/common/crypto"
	"github.com/rosterhq/roster-backend/internal/common/logger"
	"github.com/rosterhq/roster-backend/internal/observability/metrics"
	"github.com/rosterhq/roster-backend/internal/user/domain"
	"github.com/rosterhq/roster-backend/internal/user/repository"
)

type Service struct {
	repo     repository.Repository
	clock    clock.Clock
	tokens   crypto.TokenGenerator
	log      *logger.Logger
	validate *validator.Validate

	// Serializes the scan-and-increment id assignment in Create so two
	// concurrent registrations cannot derive the same id.
	createMu sync.Mutex
}

type Deps struct {
	Repo   repository.Repository
	Clock  clock.Clock
	Tokens crypto.TokenGenerator
	Log    *logger.Logger
}

func New(deps Deps) *Service {
	v := validator.New()
	// notblank rejects empty and whitespace-only values alike.
	_ = v.RegisterValidation("notblank", validators.NotBlank)

	return &Service{
		repo:     deps.Repo,
		clock:    deps.Clock,
		tokens:   deps.Tokens,
		log:      deps.Log,
		validate: v,
	}
}

type CreateInput struct {
	Username string `validate:"notblank"`
	Password string `validate:"notblank"`
	Birthday *time.Time
}

type ProfilePatch struct {
	Username string
	Birthday *time.Time
}

func (s *Service) Users(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, errStore(err)
	}
	return users, nil
}

func (s *Service) UserByID(ctx context.Context, id int64) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrUserNotFound(id)
		}
		return domain.User{}, errStore(err)
	}
	return user, nil
}

func (s *Service) UserByUsername(ctx context.Context, username string) (domain.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrUsernameNotFound(username)
		}
		return domain.User{}, errStore(err)
	}
	return user, nil
}

func (s *Service) Create(ctx context.Context, input CreateInput) (domain.User, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "create_user_attempt",
	}).Info("create user attempt")

	if err := s.validateCredentials(input); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "create_user_validation_failed",
		}).Warnf("create user validation failed: %v", err)
		return domain.User{}, err
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	// Id is max(existing)+1, re-derived by scanning the store on every
	// creation; the mutex above covers the scan-insert window.
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return domain.User{}, errStore(err)
	}

	var max int64
	for _, u := range users {
		if u.ID > max {
			max = u.ID
		}
	}

	if err := s.checkUsernameFree(ctx, input.Username); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "create_user_username_exists",
		}).Warn("create user failed: username exists")
		return domain.User{}, err
	}

	token, err := s.tokens.NewToken()
	if err != nil {
		return domain.User{}, errStore(err)
	}

	user := domain.User{
		ID:           max + 1,
		Username:     input.Username,
		Password:     input.Password,
		Token:        token,
		Status:       domain.StatusOffline,
		Birthday:     input.Birthday,
		CreationDate: s.clock.Now(),
	}

	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameAlreadyExists) {
			return domain.User{}, ErrUsernameNotUnique
		}
		return domain.User{}, errStore(err)
	}

	metrics.UsersCreatedTotal.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"username": saved.Username,
		"user_id":  saved.ID,
		"action":   "create_user_success",
	}).Info("create user success")

	return saved, nil
}

// UpdateProfile overwrites username and birthday of an existing user. All
// other attributes are immutable here.
func (s *Service) UpdateProfile(ctx context.Context, id int64, patch ProfilePatch) (domain.User, error) {
	user, err := s.UserByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if patch.Username != user.Username {
		if err := s.checkUsernameFree(ctx, patch.Username); err != nil {
			return domain.User{}, err
		}
	}

	user.Username = patch.Username
	user.Birthday = patch.Birthday

	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameAlreadyExists) {
			return domain.User{}, ErrUsernameNotUnique
		}
		return domain.User{}, errStore(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": saved.ID,
		"action":  "update_profile_success",
	}).Info("update profile success")

	return saved, nil
}

func (s *Service) validateCredentials(input CreateInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.Field() == "Username" {
				return ErrEmptyUsername
			}
		}
		return ErrEmptyPassword
	}
	return errStore(err)
}

func (s *Service) checkUsernameFree(ctx context.Context, username string) error {
	_, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		return ErrUsernameNotUnique
	}
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil
	}
	return errStore(err)
}

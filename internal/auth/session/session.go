package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	commonerrors "github.com/rosterhq/roster-backend/internal/common/errors"
	"github.com/rosterhq/roster-backend/internal/common/logger"
	"github.com/rosterhq/roster-backend/internal/user/domain"
	"github.com/rosterhq/roster-backend/internal/user/repository"
)

// Session keys. uid carries the bound user id, principal the authenticated
// username; uid may lag behind principal and gets bound lazily.
const (
	uidKey       = "uid"
	principalKey = "principal"
)

var ErrUnauthenticated = commonerrors.NewDomainError(
	"UNAUTHENTICATED",
	commonerrors.CategoryUnauthorized,
	401,
	"Unauthorized",
)

// NewManager builds the server-side session manager. Session state lives in
// the manager's store; the cookie carries only the session token.
func NewManager(lifetime time.Duration) *scs.SessionManager {
	m := scs.New()
	m.Lifetime = lifetime
	m.Cookie.HttpOnly = true
	m.Cookie.SameSite = http.SameSiteLaxMode
	return m
}

// Binder ties authenticated principals to sessions and propagates the
// ONLINE/OFFLINE status transitions around them.
type Binder struct {
	sessions *scs.SessionManager
	repo     repository.Repository
	log      *logger.Logger
}

func NewBinder(sessions *scs.SessionManager, repo repository.Repository, log *logger.Logger) *Binder {
	return &Binder{sessions: sessions, repo: repo, log: log}
}

func (b *Binder) Manager() *scs.SessionManager {
	return b.sessions
}

// OnLogin binds the authenticated username and its user id into a fresh
// session token.
func (b *Binder) OnLogin(ctx context.Context, id int64, username string) error {
	if err := b.sessions.RenewToken(ctx); err != nil {
		return err
	}

	b.sessions.Put(ctx, principalKey, username)
	b.sessions.Put(ctx, uidKey, id)

	b.log.WithFields(ctx, logger.Fields{
		"user_id": id,
		"action":  "session_bound",
	}).Info("session bound")

	return nil
}

// OnLogout marks the bound user OFFLINE (no-op when no uid is bound) and
// destroys the session; the manager clears the cookie on commit.
func (b *Binder) OnLogout(ctx context.Context) error {
	if b.sessions.Exists(ctx, uidKey) {
		id := b.sessions.GetInt64(ctx, uidKey)

		user, err := b.repo.FindByID(ctx, id)
		switch {
		case err == nil:
			user.Status = domain.StatusOffline
			if _, err := b.repo.Save(ctx, user); err != nil {
				return err
			}
			b.log.WithFields(ctx, logger.Fields{
				"user_id": id,
				"action":  "session_logout",
			}).Info("user set offline")
		case !errors.Is(err, repository.ErrUserNotFound):
			return err
		}
	}

	return b.sessions.Destroy(ctx)
}

// Authenticated reports whether the request carries a logged-in session.
func (b *Binder) Authenticated(ctx context.Context) bool {
	return b.sessions.Exists(ctx, principalKey) || b.sessions.Exists(ctx, uidKey)
}

// BoundUserID returns the session's uid without resolving anything.
func (b *Binder) BoundUserID(ctx context.Context) (int64, bool) {
	if !b.sessions.Exists(ctx, uidKey) {
		return 0, false
	}
	return b.sessions.GetInt64(ctx, uidKey), true
}

// CurrentUserID returns the bound user id, lazily resolving and binding it
// by principal username when only the principal is present.
func (b *Binder) CurrentUserID(ctx context.Context) (int64, error) {
	if id, ok := b.BoundUserID(ctx); ok {
		return id, nil
	}

	username := b.sessions.GetString(ctx, principalKey)
	if username == "" {
		return 0, ErrUnauthenticated
	}

	user, err := b.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return 0, ErrUnauthenticated
		}
		return 0, err
	}

	b.sessions.Put(ctx, uidKey, user.ID)
	return user.ID, nil
}

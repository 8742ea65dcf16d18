package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rosterhq/roster-backend/internal/auth/service"
	"github.com/rosterhq/roster-backend/internal/auth/session"
	commonhttp "github.com/rosterhq/roster-backend/internal/common/http"
	"github.com/rosterhq/roster-backend/internal/common/logger"
	"github.com/rosterhq/roster-backend/internal/observability/metrics"
)

type Handler struct {
	auth    *service.AuthService
	binder  *session.Binder
	log     *logger.Logger
	timeout time.Duration
}

func NewHandler(auth *service.AuthService, binder *session.Binder, timeout time.Duration, log *logger.Logger) *Handler {
	return &Handler{auth: auth, binder: binder, log: log, timeout: timeout}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/perform_login", h.performLogin)
	mux.HandleFunc("/perform_logout", h.performLogout)
	mux.HandleFunc("/login_success", commonhttp.RequireMethod(http.MethodGet)(h.loginSuccess))
	mux.HandleFunc("/login_error", commonhttp.RequireMethod(http.MethodGet)(h.loginError))
}

// performLogin handles the form-encoded login and answers with a redirect,
// the way a browser form flow expects: /login_success on a bound session,
// /login_error on rejected credentials.
func (h *Handler) performLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.log.Warnf("login failed: invalid form: %v", err)
		http.Redirect(w, r, "/login_error", http.StatusFound)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	principal, err := h.auth.Authenticate(ctx, username, password)
	if err != nil {
		if !errors.Is(err, service.ErrBadCredentials) {
			h.log.Errorf("login failed: %v", err)
		}
		http.Redirect(w, r, "/login_error", http.StatusFound)
		return
	}

	if err := h.binder.OnLogin(ctx, principal.ID, principal.Username); err != nil {
		h.log.Errorf("login failed: session bind error: %v", err)
		http.Redirect(w, r, "/login_error", http.StatusFound)
		return
	}

	http.Redirect(w, r, "/login_success", http.StatusFound)
}

// performLogout accepts GET and POST. The bound user goes OFFLINE, the
// session is destroyed and its cookie cleared on commit.
func (h *Handler) performLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.binder.OnLogout(ctx); err != nil {
		h.log.Errorf("logout failed: %v", err)
		commonhttp.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	metrics.LogoutsTotal.Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) loginSuccess(w http.ResponseWriter, r *http.Request) {
	commonhttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Login successful"})
}

func (h *Handler) loginError(w http.ResponseWriter, r *http.Request) {
	commonhttp.WriteJSON(w, http.StatusOK, commonhttp.ErrorResponse{Error: "The credentials are incorrect"})
}

package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rosterhq/roster-backend/internal/auth/session"
	commonhttp "github.com/rosterhq/roster-backend/internal/common/http"
	"github.com/rosterhq/roster-backend/internal/common/logger"
	userservice "github.com/rosterhq/roster-backend/internal/user/service"
)

type Handler struct {
	users    *userservice.Service
	sessions *session.Binder
	log      *logger.Logger
	timeout  time.Duration
}

func NewHandler(users *userservice.Service, sessions *session.Binder, timeout time.Duration, log *logger.Logger) *Handler {
	return &Handler{users: users, sessions: sessions, log: log, timeout: timeout}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/users", h.usersCollection)
	mux.HandleFunc("/users/", h.userResource)
	mux.HandleFunc("/current_user", h.currentUser)
}

func (h *Handler) usersCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listUsers(w, r)
	case http.MethodPost:
		h.createUser(w, r)
	default:
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Authenticated(r.Context()) {
		commonhttp.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	users, err := h.users.Users(ctx)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	dtos, err := toUserGetDTOs(users)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var dto UserPostDTO
	if err := commonhttp.DecodeJSON(r, &dto); err != nil {
		h.log.Warnf("create user failed: invalid json: %v", err)
		commonhttp.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	created, err := h.users.Create(ctx, userservice.CreateInput{
		Username: dto.Username,
		Password: dto.Password,
		Birthday: dto.Birthday,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	out, err := toUserGetDTO(created)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, out)
}

func (h *Handler) userResource(w http.ResponseWriter, r *http.Request) {
	idPart := strings.TrimPrefix(r.URL.Path, "/users/")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || idPart == "" {
		commonhttp.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getUser(w, r, id)
	case http.MethodPut:
		h.updateUser(w, r, id)
	default:
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request, id int64) {
	if !h.sessions.Authenticated(r.Context()) {
		commonhttp.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	user, err := h.users.UserByID(ctx, id)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	dto, err := toUserGetDTO(user)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, dto)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request, id int64) {
	uid, ok := h.sessions.BoundUserID(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var dto UserPostDTO
	if err := commonhttp.DecodeJSON(r, &dto); err != nil {
		h.log.Warnf("update user failed: invalid json: %v", err)
		commonhttp.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	// Existence is checked before ownership, so an unknown id answers 404
	// even when it isn't the caller's own.
	if _, err := h.users.UserByID(ctx, id); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	if id != uid {
		commonhttp.WriteError(w, http.StatusConflict, "We can only update our own profile")
		return
	}

	if _, err := h.users.UpdateProfile(ctx, id, userservice.ProfilePatch{
		Username: dto.Username,
		Birthday: dto.Birthday,
	}); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if !h.sessions.Authenticated(r.Context()) {
		commonhttp.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := h.sessions.CurrentUserID(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	user, err := h.users.UserByID(ctx, id)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, CurrentUserDTO{ID: user.ID, Name: user.Username})
}

func (h *Handler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

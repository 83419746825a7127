package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"chirper/social-service/internal/models"
	"chirper/social-service/internal/service"
	"chirper/social-service/pkg/logger"
)

type userHandler struct {
	users    service.UserService
	counts   service.CountService
	validate *validator.Validate
	logger   *logger.Logger
}

// RegisterUserRoutes mounts profile and privacy endpoints.
func RegisterUserRoutes(r *mux.Router, users service.UserService, counts service.CountService, log *logger.Logger) {
	h := &userHandler{
		users:    users,
		counts:   counts,
		validate: validator.New(),
		logger:   log,
	}

	r.HandleFunc("/users/me", h.Me).Methods(http.MethodGet)
	r.HandleFunc("/users/me", h.UpdateProfile).Methods(http.MethodPatch)
	r.HandleFunc("/users/me/private", h.PublicToPrivate).Methods(http.MethodPut)
	r.HandleFunc("/users/me/public", h.PrivateToPublic).Methods(http.MethodPut)
	r.HandleFunc("/users/{id:[0-9]+}", h.GetByID).Methods(http.MethodGet)
	r.HandleFunc("/users/username/{username}", h.GetByUsername).Methods(http.MethodGet)
}

type updateProfileRequest struct {
	Name     string     `json:"name" validate:"omitempty,max=50"`
	Bio      string     `json:"bio" validate:"omitempty,max=160"`
	Location string     `json:"location" validate:"omitempty,max=30"`
	Link     string     `json:"link" validate:"omitempty,url,max=100"`
	BirthDay *time.Time `json:"birth_day"`
}

type userResponse struct {
	ID        uint64            `json:"id"`
	Username  string            `json:"username"`
	Name      string            `json:"name"`
	Bio       string            `json:"bio"`
	Location  string            `json:"location"`
	Link      string            `json:"link"`
	BirthDay  *time.Time        `json:"birth_day,omitempty"`
	Status    models.UserStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Name:      user.Name,
		Bio:       user.Bio,
		Location:  user.Location,
		Link:      user.Link,
		BirthDay:  user.BirthDay,
		Status:    user.Status,
		CreatedAt: user.CreatedAt,
	}
}

func (h *userHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *userHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	if _, err := requestUserID(r); err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	targetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.users.GetUserByID(r.Context(), targetID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *userHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	if _, err := requestUserID(r); err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	user, err := h.users.GetUserByUsername(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *userHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	update := service.ProfileUpdate{
		Name:     req.Name,
		Bio:      req.Bio,
		Location: req.Location,
		Link:     req.Link,
		BirthDay: req.BirthDay,
	}
	if err := h.users.UpdateProfile(r.Context(), userID, update); err != nil {
		h.logger.WithUserID(userID).WithError(err).Error("failed to update profile")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (h *userHandler) PublicToPrivate(w http.ResponseWriter, r *http.Request) {
	h.setPrivacy(w, r, h.users.PublicToPrivate)
}

func (h *userHandler) PrivateToPublic(w http.ResponseWriter, r *http.Request) {
	h.setPrivacy(w, r, h.users.PrivateToPublic)
}

func (h *userHandler) setPrivacy(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID uint64) error) {
	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err := op(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

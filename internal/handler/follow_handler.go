package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"chirper/social-service/internal/models"
	"chirper/social-service/internal/service"
	"chirper/social-service/pkg/logger"
)

type followHandler struct {
	relations service.RelationService
	counts    service.CountService
	logger    *logger.Logger
}

// RegisterFollowRoutes mounts the relationship lifecycle endpoints.
func RegisterFollowRoutes(r *mux.Router, relations service.RelationService, counts service.CountService, log *logger.Logger) {
	h := &followHandler{relations: relations, counts: counts, logger: log}

	r.HandleFunc("/follows/{id:[0-9]+}", h.Follow).Methods(http.MethodPost)
	r.HandleFunc("/follows/{id:[0-9]+}", h.Unfollow).Methods(http.MethodDelete)
	r.HandleFunc("/follows/{id:[0-9]+}/request", h.CancelRequest).Methods(http.MethodDelete)
	r.HandleFunc("/follows/{id:[0-9]+}/accept", h.Accept).Methods(http.MethodPost)
	r.HandleFunc("/follows/{id:[0-9]+}/refuse", h.Refuse).Methods(http.MethodPost)
	r.HandleFunc("/blocks/{id:[0-9]+}", h.Block).Methods(http.MethodPost)
	r.HandleFunc("/blocks/{id:[0-9]+}", h.Unblock).Methods(http.MethodDelete)
	r.HandleFunc("/relations/{id:[0-9]+}", h.RelationStatus).Methods(http.MethodGet)

	r.HandleFunc("/users/pending", h.PendingFollowers).Methods(http.MethodGet)
	r.HandleFunc("/users/pending/count", h.PendingRequestsCount).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}/followers", h.Followers).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}/followings", h.Followings).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}/followers/count", h.FollowersCount).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}/followings/count", h.FollowingsCount).Methods(http.MethodGet)
}

type followResponse struct {
	Status models.FollowStatus `json:"status"`
}

type relationStatusResponse struct {
	Relation models.RelationLabel `json:"relation"`
}

func (h *followHandler) Follow(w http.ResponseWriter, r *http.Request) {
	userID, targetID, ok := h.callerAndTarget(w, r)
	if !ok {
		return
	}

	status, err := h.relations.Follow(r.Context(), userID, targetID)
	if err != nil {
		h.logger.WithUserID(userID).WithError(err).Debug("follow rejected")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, followResponse{Status: status})
}

func (h *followHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.mutation(w, r, h.relations.Unfollow)
}

func (h *followHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	h.mutation(w, r, h.relations.CancelRequest)
}

func (h *followHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.mutation(w, r, h.relations.Accept)
}

func (h *followHandler) Refuse(w http.ResponseWriter, r *http.Request) {
	h.mutation(w, r, h.relations.Refuse)
}

func (h *followHandler) Block(w http.ResponseWriter, r *http.Request) {
	h.mutation(w, r, h.relations.Block)
}

func (h *followHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	h.mutation(w, r, h.relations.Unblock)
}

func (h *followHandler) RelationStatus(w http.ResponseWriter, r *http.Request) {
	userID, targetID, ok := h.callerAndTarget(w, r)
	if !ok {
		return
	}

	relation, err := h.relations.RelationStatus(r.Context(), userID, targetID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, relationStatusResponse{Relation: relation})
}

func (h *followHandler) Followers(w http.ResponseWriter, r *http.Request) {
	h.listing(w, r, h.relations.Followers)
}

func (h *followHandler) Followings(w http.ResponseWriter, r *http.Request) {
	h.listing(w, r, h.relations.Followings)
}

func (h *followHandler) PendingFollowers(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	profiles, err := h.relations.PendingFollowers(r.Context(), userID, pageParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (h *followHandler) FollowersCount(w http.ResponseWriter, r *http.Request) {
	h.count(w, r, h.counts.FollowersCount)
}

func (h *followHandler) FollowingsCount(w http.ResponseWriter, r *http.Request) {
	h.count(w, r, h.counts.FollowingsCount)
}

func (h *followHandler) PendingRequestsCount(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	count, err := h.counts.PendingRequestsCount(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: count})
}

func (h *followHandler) callerAndTarget(w http.ResponseWriter, r *http.Request) (uint64, uint64, bool) {
	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return 0, 0, false
	}
	targetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, 0, false
	}
	return userID, targetID, true
}

func (h *followHandler) mutation(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, actorID, subjectID uint64) error) {
	userID, targetID, ok := h.callerAndTarget(w, r)
	if !ok {
		return
	}
	if err := op(r.Context(), userID, targetID); err != nil {
		h.logger.WithUserID(userID).WithError(err).Debug("relation mutation rejected")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (h *followHandler) listing(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, viewerID, targetID uint64, page int) ([]*models.UserProfile, error)) {
	userID, targetID, ok := h.callerAndTarget(w, r)
	if !ok {
		return
	}
	profiles, err := op(r.Context(), userID, targetID, pageParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (h *followHandler) count(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, viewerID, targetID uint64) (int64, error)) {
	userID, targetID, ok := h.callerAndTarget(w, r)
	if !ok {
		return
	}
	count, err := op(r.Context(), userID, targetID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: count})
}

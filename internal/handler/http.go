package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"chirper/social-service/internal/policy"
	"chirper/social-service/internal/service"
)

var errMissingCaller = errors.New("missing X-User-ID header")

type errorResponse struct {
	Error string `json:"error"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// requestUserID reads the authenticated caller set by the upstream
// gateway.
func requestUserID(r *http.Request) (uint64, error) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return 0, errMissingCaller
	}
	userID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || userID == 0 {
		return 0, errMissingCaller
	}
	return userID, nil
}

func pathID(r *http.Request, name string) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)[name], 10, 64)
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 0 {
		return 0
	}
	return page
}

// writeServiceError translates service sentinels into HTTP codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrCannotFollowSelf),
		errors.Is(err, service.ErrCannotBlockSelf),
		errors.Is(err, service.ErrSelfRelation),
		errors.Is(err, service.ErrAlreadyFollowing),
		errors.Is(err, service.ErrAlreadyRequested),
		errors.Is(err, service.ErrAlreadyBlocked),
		errors.Is(err, service.ErrAlreadyLiked),
		errors.Is(err, service.ErrAlreadyRetweeted),
		errors.Is(err, service.ErrMissingReference),
		errors.Is(err, service.ErrUnexpectedReference):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotAllowed):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, policy.ErrUserNotFound),
		errors.Is(err, policy.ErrTweetNotFound),
		errors.Is(err, service.ErrNotFollowing),
		errors.Is(err, service.ErrNoPendingRequest),
		errors.Is(err, service.ErrNotBlocked),
		errors.Is(err, service.ErrNotLiked):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		// includes ErrRelationConflict, which should never occur
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"chirper/social-service/internal/service"
	"chirper/social-service/pkg/logger"
)

type timelineHandler struct {
	timeline service.TimelineService
	logger   *logger.Logger
}

// RegisterTimelineRoutes mounts the home feed endpoints.
func RegisterTimelineRoutes(r *mux.Router, timeline service.TimelineService, log *logger.Logger) {
	h := &timelineHandler{timeline: timeline, logger: log}

	r.HandleFunc("/timeline", h.HomeTimeline).Methods(http.MethodGet)
	r.HandleFunc("/timeline/unseen-page", h.UnseenPageIndex).Methods(http.MethodGet)
}

type unseenPageResponse struct {
	Page int `json:"page"`
}

func (h *timelineHandler) HomeTimeline(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	tweets, err := h.timeline.HomeTimeline(r.Context(), userID, pageParam(r))
	if err != nil {
		h.logger.WithUserID(userID).WithError(err).Error("failed to compose timeline")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTweetResponses(tweets))
}

func (h *timelineHandler) UnseenPageIndex(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	page, err := h.timeline.UnseenPageIndex(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, unseenPageResponse{Page: page})
}

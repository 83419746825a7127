package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"chirper/social-service/internal/service"
	"chirper/social-service/pkg/logger"
)

type likeHandler struct {
	likes  service.LikeService
	counts service.CountService
	logger *logger.Logger
}

// RegisterLikeRoutes mounts like mutations and like-derived listings.
func RegisterLikeRoutes(r *mux.Router, likes service.LikeService, counts service.CountService, log *logger.Logger) {
	h := &likeHandler{likes: likes, counts: counts, logger: log}

	r.HandleFunc("/tweets/{id:[0-9]+}/like", h.Like).Methods(http.MethodPut)
	r.HandleFunc("/tweets/{id:[0-9]+}/like", h.Unlike).Methods(http.MethodDelete)
	r.HandleFunc("/tweets/{id:[0-9]+}/like", h.HasLiked).Methods(http.MethodGet)
	r.HandleFunc("/tweets/{id:[0-9]+}/likers", h.TweetLikers).Methods(http.MethodGet)
	r.HandleFunc("/tweets/{id:[0-9]+}/likes/count", h.TweetLikesCount).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}/likes", h.UserLikes).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}/likes/count", h.UserLikesCount).Methods(http.MethodGet)
}

type hasLikedResponse struct {
	Liked bool `json:"liked"`
}

func (h *likeHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, tweetID, ok := callerAndPathID(w, r)
	if !ok {
		return
	}
	if err := h.likes.Like(r.Context(), userID, tweetID); err != nil {
		h.logger.WithUserID(userID).WithError(err).Debug("like rejected")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, nil)
}

func (h *likeHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID, tweetID, ok := callerAndPathID(w, r)
	if !ok {
		return
	}
	if err := h.likes.Unlike(r.Context(), userID, tweetID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (h *likeHandler) HasLiked(w http.ResponseWriter, r *http.Request) {
	userID, tweetID, ok := callerAndPathID(w, r)
	if !ok {
		return
	}
	liked, err := h.likes.HasLiked(r.Context(), userID, tweetID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hasLikedResponse{Liked: liked})
}

func (h *likeHandler) TweetLikers(w http.ResponseWriter, r *http.Request) {
	userID, tweetID, ok := callerAndPathID(w, r)
	if !ok {
		return
	}
	profiles, err := h.likes.TweetLikers(r.Context(), userID, tweetID, pageParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (h *likeHandler) UserLikes(w http.ResponseWriter, r *http.Request) {
	userID, targetID, ok := callerAndPathID(w, r)
	if !ok {
		return
	}
	tweets, err := h.likes.UserLikes(r.Context(), userID, targetID, pageParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTweetResponses(tweets))
}

func (h *likeHandler) TweetLikesCount(w http.ResponseWriter, r *http.Request) {
	userID, tweetID, ok := callerAndPathID(w, r)
	if !ok {
		return
	}
	count, err := h.counts.TweetLikesCount(r.Context(), userID, tweetID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: count})
}

func (h *likeHandler) UserLikesCount(w http.ResponseWriter, r *http.Request) {
	userID, targetID, ok := callerAndPathID(w, r)
	if !ok {
		return
	}
	count, err := h.counts.UserLikesCount(r.Context(), userID, targetID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: count})
}

func callerAndPathID(w http.ResponseWriter, r *http.Request) (uint64, uint64, bool) {
	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return 0, 0, false
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, 0, false
	}
	return userID, id, true
}

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

type tweetHandler struct {
	tweets   service.TweetService
	counts   service.CountService
	validate *validator.Validate
	logger   *logger.Logger
}

// RegisterTweetRoutes mounts tweet creation, deletion and the read
// surfaces around a tweet.
func RegisterTweetRoutes(r *mux.Router, tweets service.TweetService, counts service.CountService, log *logger.Logger) {
	h := &tweetHandler{
		tweets:   tweets,
		counts:   counts,
		validate: validator.New(),
		logger:   log,
	}

	r.HandleFunc("/tweets", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/tweets/{id:[0-9]+}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/tweets/{id:[0-9]+}", h.Delete).Methods(http.MethodDelete)
	r.HandleFunc("/tweets/{id:[0-9]+}/comments", h.Comments).Methods(http.MethodGet)
	r.HandleFunc("/tweets/{id:[0-9]+}/quotes", h.Quotes).Methods(http.MethodGet)
	r.HandleFunc("/tweets/{id:[0-9]+}/retweeters", h.Retweeters).Methods(http.MethodGet)
	r.HandleFunc("/tweets/{id:[0-9]+}/comments/count", h.CommentsCount).Methods(http.MethodGet)
	r.HandleFunc("/tweets/{id:[0-9]+}/quotes/count", h.QuotesCount).Methods(http.MethodGet)
	r.HandleFunc("/tweets/{id:[0-9]+}/retweets/count", h.RetweetsCount).Methods(http.MethodGet)

	r.HandleFunc("/users/{id:[0-9]+}/tweets", h.UserTweets).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}/replies", h.UserReplies).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}/tweets/count", h.UserTweetsCount).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}/replies/count", h.UserRepliesCount).Methods(http.MethodGet)
}

type createTweetRequest struct {
	Text             string           `json:"text" validate:"max=280"`
	Type             models.TweetType `json:"type" validate:"required,oneof=NORMAL COMMENT RETWEET QUOTE"`
	ReferenceTweetID *uint64          `json:"reference_tweet_id"`
}

type tweetResponse struct {
	ID               uint64           `json:"id"`
	AuthorID         uint64           `json:"author_id"`
	Text             string           `json:"text"`
	Type             models.TweetType `json:"type"`
	ReferenceTweetID *uint64          `json:"reference_tweet_id,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

func toTweetResponse(tweet *models.Tweet) tweetResponse {
	return tweetResponse{
		ID:               tweet.ID,
		AuthorID:         tweet.AuthorID,
		Text:             tweet.Text,
		Type:             tweet.Type,
		ReferenceTweetID: tweet.ReferenceTweetID,
		CreatedAt:        tweet.CreatedAt,
	}
}

func toTweetResponses(tweets []*models.Tweet) []tweetResponse {
	responses := make([]tweetResponse, 0, len(tweets))
	for _, tweet := range tweets {
		responses = append(responses, toTweetResponse(tweet))
	}
	return responses
}

func (h *tweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req createTweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// retweets repeat the original verbatim, everything else needs text
	if req.Type != models.TweetTypeRetweet && req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	tweet, err := h.tweets.CreateTweet(r.Context(), userID, req.Text, req.Type, req.ReferenceTweetID)
	if err != nil {
		h.logger.WithUserID(userID).WithError(err).Debug("tweet creation rejected")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTweetResponse(tweet))
}

func (h *tweetHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, tweetID, ok := h.callerAndTweet(w, r)
	if !ok {
		return
	}

	tweet, err := h.tweets.GetTweet(r.Context(), userID, tweetID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTweetResponse(tweet))
}

func (h *tweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, tweetID, ok := h.callerAndTweet(w, r)
	if !ok {
		return
	}

	if err := h.tweets.DeleteTweet(r.Context(), userID, tweetID); err != nil {
		h.logger.WithUserID(userID).WithError(err).Debug("tweet deletion rejected")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (h *tweetHandler) Comments(w http.ResponseWriter, r *http.Request) {
	h.tweetListing(w, r, h.tweets.TweetComments)
}

func (h *tweetHandler) Quotes(w http.ResponseWriter, r *http.Request) {
	h.tweetListing(w, r, h.tweets.TweetQuotes)
}

func (h *tweetHandler) Retweeters(w http.ResponseWriter, r *http.Request) {
	userID, tweetID, ok := h.callerAndTweet(w, r)
	if !ok {
		return
	}

	retweeterIDs, err := h.tweets.TweetRetweeters(r.Context(), userID, tweetID, pageParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, retweeterIDs)
}

func (h *tweetHandler) UserTweets(w http.ResponseWriter, r *http.Request) {
	h.tweetListing(w, r, h.tweets.UserTweets)
}

func (h *tweetHandler) UserReplies(w http.ResponseWriter, r *http.Request) {
	h.tweetListing(w, r, h.tweets.UserReplies)
}

func (h *tweetHandler) CommentsCount(w http.ResponseWriter, r *http.Request) {
	h.count(w, r, h.counts.TweetCommentsCount)
}

func (h *tweetHandler) QuotesCount(w http.ResponseWriter, r *http.Request) {
	h.count(w, r, h.counts.TweetQuotesCount)
}

func (h *tweetHandler) RetweetsCount(w http.ResponseWriter, r *http.Request) {
	h.count(w, r, h.counts.TweetRetweetsCount)
}

func (h *tweetHandler) UserTweetsCount(w http.ResponseWriter, r *http.Request) {
	h.count(w, r, h.counts.UserTweetsCount)
}

func (h *tweetHandler) UserRepliesCount(w http.ResponseWriter, r *http.Request) {
	h.count(w, r, h.counts.UserRepliesCount)
}

func (h *tweetHandler) callerAndTweet(w http.ResponseWriter, r *http.Request) (uint64, uint64, bool) {
	userID, err := requestUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return 0, 0, false
	}
	tweetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, 0, false
	}
	return userID, tweetID, true
}

func (h *tweetHandler) tweetListing(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, viewerID, targetID uint64, page int) ([]*models.Tweet, error)) {
	userID, targetID, ok := h.callerAndTweet(w, r)
	if !ok {
		return
	}
	tweets, err := op(r.Context(), userID, targetID, pageParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTweetResponses(tweets))
}

func (h *tweetHandler) count(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, viewerID, targetID uint64) (int64, error)) {
	userID, targetID, ok := h.callerAndTweet(w, r)
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

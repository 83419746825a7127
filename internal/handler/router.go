package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chirper/social-service/internal/service"
	"chirper/social-service/pkg/logger"
	"chirper/social-service/pkg/metrics"
)

// Services bundles everything the router mounts.
type Services struct {
	Users     service.UserService
	Relations service.RelationService
	Tweets    service.TweetService
	Likes     service.LikeService
	Timeline  service.TimelineService
	Counts    service.CountService
}

// NewRouter assembles the full HTTP surface with middleware, the health
// probe and the metrics endpoint.
func NewRouter(svcs Services, log *logger.Logger, m *metrics.Metrics) *mux.Router {
	r := mux.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(RecoverMiddleware(log))
	r.Use(logger.Middleware(log))
	r.Use(metrics.Middleware(m))

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	RegisterUserRoutes(r, svcs.Users, svcs.Counts, log)
	RegisterFollowRoutes(r, svcs.Relations, svcs.Counts, log)
	RegisterTweetRoutes(r, svcs.Tweets, svcs.Counts, log)
	RegisterLikeRoutes(r, svcs.Likes, svcs.Counts, log)
	RegisterTimelineRoutes(r, svcs.Timeline, log)

	return r
}

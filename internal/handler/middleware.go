package handler

import (
	"net/http"

	"github.com/google/uuid"

	"chirper/social-service/pkg/logger"
)

// RequestIDMiddleware tags every request with an id, preserving one set
// by the upstream gateway.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}

// RecoverMiddleware turns panics into 500 responses instead of dropped
// connections.
func RecoverMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					log.WithField("panic", recovered).WithField("path", r.URL.Path).Error("handler panicked")
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

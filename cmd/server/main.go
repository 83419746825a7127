package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"chirper/social-service/internal/cache"
	"chirper/social-service/internal/handler"
	"chirper/social-service/internal/policy"
	"chirper/social-service/internal/repository"
	"chirper/social-service/internal/service"
	"chirper/social-service/pkg/db"
	"chirper/social-service/pkg/logger"
	"chirper/social-service/pkg/metrics"
)

func main() {
	log := logger.NewLogger("social-service")

	if err := godotenv.Load(); err != nil {
		log.WithError(err).Warn(".env file not found")
	}

	conn, err := db.NewConnection(db.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 3306),
		User:     getEnv("DB_USER", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Database: getEnv("DB_DATABASE", "chirper_db"),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer conn.Close()
	log.Info("successfully connected to database")

	guard := db.NewSchemaGuard(conn.DB)
	if err := guard.ValidateTables(db.ExpectedSchemas()); err != nil {
		log.WithError(err).Fatal("database schema mismatch")
	}

	// Repositories
	userRepo := repository.NewUserRepository(conn.DB)
	followRepo := repository.NewFollowRepository(conn.DB)
	tweetRepo := repository.NewTweetRepository(conn.DB)
	likeRepo := repository.NewLikeRepository(conn.DB)

	visibility := policy.NewVisibilityPolicy(userRepo, followRepo, tweetRepo)

	// Timeline page cache, optional
	var timelineCache service.TimelineCache
	var feedInvalidator service.FeedInvalidator
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.WithError(err).Warn("redis unreachable, timeline cache disabled")
		} else {
			redisCache := cache.NewRedisTimelineCache(client)
			timelineCache = redisCache
			feedInvalidator = redisCache
			log.Info("timeline cache enabled")
		}
	}

	// Services
	svcs := handler.Services{
		Users:     service.NewUserService(userRepo, followRepo),
		Relations: service.NewRelationService(userRepo, followRepo, visibility, feedInvalidator),
		Tweets:    service.NewTweetService(userRepo, tweetRepo, visibility, feedInvalidator),
		Likes:     service.NewLikeService(tweetRepo, likeRepo, visibility, feedInvalidator),
		Timeline:  service.NewTimelineService(userRepo, followRepo, tweetRepo, likeRepo, visibility, timelineCache, log.Logger),
		Counts:    service.NewCountService(userRepo, followRepo, tweetRepo, likeRepo, visibility),
	}

	m := metrics.NewMetrics("social")
	router := handler.NewRouter(svcs, log, m)

	// DB pool gauges
	poolTicker := time.NewTicker(15 * time.Second)
	defer poolTicker.Stop()
	go func() {
		for range poolTicker.C {
			stats := conn.DB.Stats()
			m.RecordDBPoolStats(stats.OpenConnections, stats.InUse, stats.Idle, stats.WaitCount, stats.WaitDuration)
		}
	}()

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{getEnv("CORS_ORIGIN", "*")}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE"}),
		handlers.AllowedHeaders([]string{"Content-Type", "X-User-ID", "X-Request-ID"}),
	)(router)

	port := getEnv("HTTP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      corsHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", port).Info("social service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("failed to serve")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

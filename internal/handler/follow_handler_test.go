package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chirper/social-service/internal/policy"
	"chirper/social-service/internal/repository"
	"chirper/social-service/internal/service"
	"chirper/social-service/pkg/logger"
)

const userColumnList = "id, username, name, bio, location, link, birth_day, status, last_seen_of_timeline, created_at, updated_at"

func userRow(id uint64, username, status string) *sqlmock.Rows {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{"id", "username", "name", "bio", "location", "link",
		"birth_day", "status", "last_seen_of_timeline", "created_at", "updated_at"}).
		AddRow(id, username, username, "", "", "", nil, status, nil, now, now)
}

func edgeRow(actorID, subjectID uint64, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"actor_id", "subject_id", "status", "created_at"}).
		AddRow(actorID, subjectID, status, time.Now())
}

func noEdgeRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"actor_id", "subject_id", "status", "created_at"})
}

func newFollowRouter(t *testing.T) (*mux.Router, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	tweetRepo := repository.NewTweetRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	visibility := policy.NewVisibilityPolicy(userRepo, followRepo, tweetRepo)

	log := logger.NewLogger("social-service-test")
	log.SetOutput(io.Discard)

	relations := service.NewRelationService(userRepo, followRepo, visibility, nil)
	counts := service.NewCountService(userRepo, followRepo, tweetRepo, likeRepo, visibility)

	r := mux.NewRouter()
	RegisterFollowRoutes(r, relations, counts, log)
	return r, mock
}

func TestFollowHandler_Follow(t *testing.T) {
	router, mock := newFollowRouter(t)

	t.Run("public target becomes follower", func(t *testing.T) {
		// CanInteract loads both accounts and both edges.
		mock.ExpectQuery("SELECT " + userColumnList + " FROM users").
			WithArgs(uint64(1)).WillReturnRows(userRow(1, "alice", "PUBLIC"))
		mock.ExpectQuery("SELECT " + userColumnList + " FROM users").
			WithArgs(uint64(2)).WillReturnRows(userRow(2, "bob", "PUBLIC"))
		mock.ExpectQuery("SELECT actor_id, subject_id, status, created_at FROM follows").
			WithArgs(uint64(1), uint64(2)).WillReturnRows(noEdgeRows())
		mock.ExpectQuery("SELECT actor_id, subject_id, status, created_at FROM follows").
			WithArgs(uint64(2), uint64(1)).WillReturnRows(noEdgeRows())
		// Existing-edge check, subject privacy lookup, then the insert.
		mock.ExpectQuery("SELECT actor_id, subject_id, status, created_at FROM follows").
			WithArgs(uint64(1), uint64(2)).WillReturnRows(noEdgeRows())
		mock.ExpectQuery("SELECT " + userColumnList + " FROM users").
			WithArgs(uint64(2)).WillReturnRows(userRow(2, "bob", "PUBLIC"))
		mock.ExpectExec("INSERT INTO follows").
			WithArgs(uint64(1), uint64(2), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		req := httptest.NewRequest(http.MethodPost, "/follows/2", nil)
		req.Header.Set("X-User-ID", "1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"status":"FOLLOWER"}`, rec.Body.String())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing caller header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/follows/2", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("following yourself", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/follows/1", nil)
		req.Header.Set("X-User-ID", "1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestFollowHandler_RelationStatus(t *testing.T) {
	router, mock := newFollowRouter(t)

	mock.ExpectQuery("SELECT actor_id, subject_id, status, created_at FROM follows").
		WithArgs(uint64(1), uint64(2)).WillReturnRows(edgeRow(1, 2, "PENDING"))
	mock.ExpectQuery("SELECT actor_id, subject_id, status, created_at FROM follows").
		WithArgs(uint64(2), uint64(1)).WillReturnRows(noEdgeRows())

	req := httptest.NewRequest(http.MethodGet, "/relations/2", nil)
	req.Header.Set("X-User-ID", "1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"relation":"PENDING_NONE"}`, rec.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowHandler_FollowersCount(t *testing.T) {
	router, mock := newFollowRouter(t)

	t.Run("non-follower of a private account is refused", func(t *testing.T) {
		mock.ExpectQuery("SELECT " + userColumnList + " FROM users").
			WithArgs(uint64(2)).WillReturnRows(userRow(2, "bob", "PRIVATE"))
		mock.ExpectQuery("SELECT actor_id, subject_id, status, created_at FROM follows").
			WithArgs(uint64(1), uint64(2)).WillReturnRows(noEdgeRows())
		mock.ExpectQuery("SELECT actor_id, subject_id, status, created_at FROM follows").
			WithArgs(uint64(2), uint64(1)).WillReturnRows(noEdgeRows())

		req := httptest.NewRequest(http.MethodGet, "/users/2/followers/count", nil)
		req.Header.Set("X-User-ID", "1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("follower of a private account sees the count", func(t *testing.T) {
		mock.ExpectQuery("SELECT " + userColumnList + " FROM users").
			WithArgs(uint64(2)).WillReturnRows(userRow(2, "bob", "PRIVATE"))
		mock.ExpectQuery("SELECT actor_id, subject_id, status, created_at FROM follows").
			WithArgs(uint64(1), uint64(2)).WillReturnRows(edgeRow(1, 2, "FOLLOWER"))
		mock.ExpectQuery("SELECT actor_id, subject_id, status, created_at FROM follows").
			WithArgs(uint64(2), uint64(1)).WillReturnRows(noEdgeRows())
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM follows").
			WithArgs(uint64(2), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

		req := httptest.NewRequest(http.MethodGet, "/users/2/followers/count", nil)
		req.Header.Set("X-User-ID", "1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"count":42}`, rec.Body.String())
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFollowHandler_Unfollow(t *testing.T) {
	router, mock := newFollowRouter(t)

	t.Run("not following", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM follows").
			WithArgs(uint64(1), uint64(2), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		req := httptest.NewRequest(http.MethodDelete, "/follows/2", nil)
		req.Header.Set("X-User-ID", "1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("existing follow is removed", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM follows").
			WithArgs(uint64(1), uint64(2), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		req := httptest.NewRequest(http.MethodDelete, "/follows/2", nil)
		req.Header.Set("X-User-ID", "1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

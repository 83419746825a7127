package service

import (
	"context"
	"errors"
	"time"

	"chirper/social-service/internal/models"
)

var errNotImplemented = errors.New("not implemented")

// mockUserRepository implements repository.UserRepository with func fields
type mockUserRepository struct {
	getByIDFunc               func(ctx context.Context, userID uint64) (*models.User, error)
	getByUsernameFunc         func(ctx context.Context, username string) (*models.User, error)
	updateProfileFunc         func(ctx context.Context, user *models.User) error
	setStatusFunc             func(ctx context.Context, userID uint64, from, to models.UserStatus) error
	setLastSeenOfTimelineFunc func(ctx context.Context, userID uint64, lastSeen time.Time) error
}

func (m *mockUserRepository) GetByID(ctx context.Context, userID uint64) (*models.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, userID)
	}
	return nil, errNotImplemented
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.getByUsernameFunc != nil {
		return m.getByUsernameFunc(ctx, username)
	}
	return nil, errNotImplemented
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	if m.updateProfileFunc != nil {
		return m.updateProfileFunc(ctx, user)
	}
	return errNotImplemented
}

func (m *mockUserRepository) SetStatus(ctx context.Context, userID uint64, from, to models.UserStatus) error {
	if m.setStatusFunc != nil {
		return m.setStatusFunc(ctx, userID, from, to)
	}
	return errNotImplemented
}

func (m *mockUserRepository) SetLastSeenOfTimeline(ctx context.Context, userID uint64, lastSeen time.Time) error {
	if m.setLastSeenOfTimelineFunc != nil {
		return m.setLastSeenOfTimelineFunc(ctx, userID, lastSeen)
	}
	return errNotImplemented
}

// mockFollowRepository implements repository.FollowRepository with func fields
type mockFollowRepository struct {
	getFunc              func(ctx context.Context, actorID, subjectID uint64) (*models.FollowEdge, error)
	createFunc           func(ctx context.Context, edge *models.FollowEdge) error
	updateStatusFunc     func(ctx context.Context, actorID, subjectID uint64, from, to models.FollowStatus) error
	deleteFunc           func(ctx context.Context, actorID, subjectID uint64, status models.FollowStatus) error
	deleteBetweenFunc    func(ctx context.Context, userID, otherID uint64) error
	acceptAllPendingFunc func(ctx context.Context, subjectID uint64) error
	listSubjectIDsFunc   func(ctx context.Context, actorID uint64, status models.FollowStatus) ([]uint64, error)
	listActorsFunc       func(ctx context.Context, subjectID uint64, status models.FollowStatus, page int) ([]*models.UserProfile, error)
	listSubjectsFunc     func(ctx context.Context, actorID uint64, status models.FollowStatus, page int) ([]*models.UserProfile, error)
	countActorsFunc      func(ctx context.Context, subjectID uint64, status models.FollowStatus) (int64, error)
	countSubjectsFunc    func(ctx context.Context, actorID uint64, status models.FollowStatus) (int64, error)
}

func (m *mockFollowRepository) Get(ctx context.Context, actorID, subjectID uint64) (*models.FollowEdge, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, actorID, subjectID)
	}
	return nil, errNotImplemented
}

func (m *mockFollowRepository) Create(ctx context.Context, edge *models.FollowEdge) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, edge)
	}
	return errNotImplemented
}

func (m *mockFollowRepository) UpdateStatus(ctx context.Context, actorID, subjectID uint64, from, to models.FollowStatus) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, actorID, subjectID, from, to)
	}
	return errNotImplemented
}

func (m *mockFollowRepository) Delete(ctx context.Context, actorID, subjectID uint64, status models.FollowStatus) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, actorID, subjectID, status)
	}
	return errNotImplemented
}

func (m *mockFollowRepository) DeleteBetween(ctx context.Context, userID, otherID uint64) error {
	if m.deleteBetweenFunc != nil {
		return m.deleteBetweenFunc(ctx, userID, otherID)
	}
	return errNotImplemented
}

func (m *mockFollowRepository) AcceptAllPending(ctx context.Context, subjectID uint64) error {
	if m.acceptAllPendingFunc != nil {
		return m.acceptAllPendingFunc(ctx, subjectID)
	}
	return errNotImplemented
}

func (m *mockFollowRepository) ListSubjectIDs(ctx context.Context, actorID uint64, status models.FollowStatus) ([]uint64, error) {
	if m.listSubjectIDsFunc != nil {
		return m.listSubjectIDsFunc(ctx, actorID, status)
	}
	return nil, errNotImplemented
}

func (m *mockFollowRepository) ListActors(ctx context.Context, subjectID uint64, status models.FollowStatus, page int) ([]*models.UserProfile, error) {
	if m.listActorsFunc != nil {
		return m.listActorsFunc(ctx, subjectID, status, page)
	}
	return nil, errNotImplemented
}

func (m *mockFollowRepository) ListSubjects(ctx context.Context, actorID uint64, status models.FollowStatus, page int) ([]*models.UserProfile, error) {
	if m.listSubjectsFunc != nil {
		return m.listSubjectsFunc(ctx, actorID, status, page)
	}
	return nil, errNotImplemented
}

func (m *mockFollowRepository) CountActors(ctx context.Context, subjectID uint64, status models.FollowStatus) (int64, error) {
	if m.countActorsFunc != nil {
		return m.countActorsFunc(ctx, subjectID, status)
	}
	return 0, errNotImplemented
}

func (m *mockFollowRepository) CountSubjects(ctx context.Context, actorID uint64, status models.FollowStatus) (int64, error) {
	if m.countSubjectsFunc != nil {
		return m.countSubjectsFunc(ctx, actorID, status)
	}
	return 0, errNotImplemented
}

// mockTweetRepository implements repository.TweetRepository with func fields
type mockTweetRepository struct {
	getByIDFunc              func(ctx context.Context, tweetID uint64) (*models.Tweet, error)
	getByIDsFunc             func(ctx context.Context, tweetIDs []uint64) ([]*models.Tweet, error)
	createFunc               func(ctx context.Context, tweet *models.Tweet) error
	deleteFunc               func(ctx context.Context, tweetID uint64) error
	existsRetweetFunc        func(ctx context.Context, authorID, referenceTweetID uint64) (bool, error)
	listByAuthorsFunc        func(ctx context.Context, authorIDs []uint64) ([]*models.Tweet, error)
	listByAuthorFunc         func(ctx context.Context, authorID uint64, page int) ([]*models.Tweet, error)
	listRepliesByAuthorFunc  func(ctx context.Context, authorID uint64, page int) ([]*models.Tweet, error)
	listByReferenceFunc      func(ctx context.Context, referenceTweetID uint64, tweetType models.TweetType, page int) ([]*models.Tweet, error)
	listRetweeterIDsFunc     func(ctx context.Context, referenceTweetID uint64, page int) ([]uint64, error)
	countByAuthorFunc        func(ctx context.Context, authorID uint64) (int64, error)
	countRepliesByAuthorFunc func(ctx context.Context, authorID uint64) (int64, error)
	countByReferenceFunc     func(ctx context.Context, referenceTweetID uint64, tweetType models.TweetType) (int64, error)
}

func (m *mockTweetRepository) GetByID(ctx context.Context, tweetID uint64) (*models.Tweet, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, tweetID)
	}
	return nil, errNotImplemented
}

func (m *mockTweetRepository) GetByIDs(ctx context.Context, tweetIDs []uint64) ([]*models.Tweet, error) {
	if m.getByIDsFunc != nil {
		return m.getByIDsFunc(ctx, tweetIDs)
	}
	return nil, errNotImplemented
}

func (m *mockTweetRepository) Create(ctx context.Context, tweet *models.Tweet) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, tweet)
	}
	return errNotImplemented
}

func (m *mockTweetRepository) Delete(ctx context.Context, tweetID uint64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, tweetID)
	}
	return errNotImplemented
}

func (m *mockTweetRepository) ExistsRetweet(ctx context.Context, authorID, referenceTweetID uint64) (bool, error) {
	if m.existsRetweetFunc != nil {
		return m.existsRetweetFunc(ctx, authorID, referenceTweetID)
	}
	return false, errNotImplemented
}

func (m *mockTweetRepository) ListByAuthors(ctx context.Context, authorIDs []uint64) ([]*models.Tweet, error) {
	if m.listByAuthorsFunc != nil {
		return m.listByAuthorsFunc(ctx, authorIDs)
	}
	return nil, errNotImplemented
}

func (m *mockTweetRepository) ListByAuthor(ctx context.Context, authorID uint64, page int) ([]*models.Tweet, error) {
	if m.listByAuthorFunc != nil {
		return m.listByAuthorFunc(ctx, authorID, page)
	}
	return nil, errNotImplemented
}

func (m *mockTweetRepository) ListRepliesByAuthor(ctx context.Context, authorID uint64, page int) ([]*models.Tweet, error) {
	if m.listRepliesByAuthorFunc != nil {
		return m.listRepliesByAuthorFunc(ctx, authorID, page)
	}
	return nil, errNotImplemented
}

func (m *mockTweetRepository) ListByReference(ctx context.Context, referenceTweetID uint64, tweetType models.TweetType, page int) ([]*models.Tweet, error) {
	if m.listByReferenceFunc != nil {
		return m.listByReferenceFunc(ctx, referenceTweetID, tweetType, page)
	}
	return nil, errNotImplemented
}

func (m *mockTweetRepository) ListRetweeterIDs(ctx context.Context, referenceTweetID uint64, page int) ([]uint64, error) {
	if m.listRetweeterIDsFunc != nil {
		return m.listRetweeterIDsFunc(ctx, referenceTweetID, page)
	}
	return nil, errNotImplemented
}

func (m *mockTweetRepository) CountByAuthor(ctx context.Context, authorID uint64) (int64, error) {
	if m.countByAuthorFunc != nil {
		return m.countByAuthorFunc(ctx, authorID)
	}
	return 0, errNotImplemented
}

func (m *mockTweetRepository) CountRepliesByAuthor(ctx context.Context, authorID uint64) (int64, error) {
	if m.countRepliesByAuthorFunc != nil {
		return m.countRepliesByAuthorFunc(ctx, authorID)
	}
	return 0, errNotImplemented
}

func (m *mockTweetRepository) CountByReference(ctx context.Context, referenceTweetID uint64, tweetType models.TweetType) (int64, error) {
	if m.countByReferenceFunc != nil {
		return m.countByReferenceFunc(ctx, referenceTweetID, tweetType)
	}
	return 0, errNotImplemented
}

// mockLikeRepository implements repository.LikeRepository with func fields
type mockLikeRepository struct {
	createFunc             func(ctx context.Context, userID, tweetID uint64) error
	deleteFunc             func(ctx context.Context, userID, tweetID uint64) error
	existsFunc             func(ctx context.Context, userID, tweetID uint64) (bool, error)
	listByUsersFunc        func(ctx context.Context, userIDs []uint64) ([]*models.Like, error)
	listLikersFunc         func(ctx context.Context, tweetID uint64, page int) ([]*models.UserProfile, error)
	listTweetIDsByUserFunc func(ctx context.Context, userID uint64, page int) ([]uint64, error)
	countByTweetFunc       func(ctx context.Context, tweetID uint64) (int64, error)
	countByUserFunc        func(ctx context.Context, userID uint64) (int64, error)
}

func (m *mockLikeRepository) Create(ctx context.Context, userID, tweetID uint64) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, tweetID)
	}
	return errNotImplemented
}

func (m *mockLikeRepository) Delete(ctx context.Context, userID, tweetID uint64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, userID, tweetID)
	}
	return errNotImplemented
}

func (m *mockLikeRepository) Exists(ctx context.Context, userID, tweetID uint64) (bool, error) {
	if m.existsFunc != nil {
		return m.existsFunc(ctx, userID, tweetID)
	}
	return false, errNotImplemented
}

func (m *mockLikeRepository) ListByUsers(ctx context.Context, userIDs []uint64) ([]*models.Like, error) {
	if m.listByUsersFunc != nil {
		return m.listByUsersFunc(ctx, userIDs)
	}
	return nil, errNotImplemented
}

func (m *mockLikeRepository) ListLikers(ctx context.Context, tweetID uint64, page int) ([]*models.UserProfile, error) {
	if m.listLikersFunc != nil {
		return m.listLikersFunc(ctx, tweetID, page)
	}
	return nil, errNotImplemented
}

func (m *mockLikeRepository) ListTweetIDsByUser(ctx context.Context, userID uint64, page int) ([]uint64, error) {
	if m.listTweetIDsByUserFunc != nil {
		return m.listTweetIDsByUserFunc(ctx, userID, page)
	}
	return nil, errNotImplemented
}

func (m *mockLikeRepository) CountByTweet(ctx context.Context, tweetID uint64) (int64, error) {
	if m.countByTweetFunc != nil {
		return m.countByTweetFunc(ctx, tweetID)
	}
	return 0, errNotImplemented
}

func (m *mockLikeRepository) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	if m.countByUserFunc != nil {
		return m.countByUserFunc(ctx, userID)
	}
	return 0, errNotImplemented
}

// mockFeedInvalidator records which users' cached pages were dropped
type mockFeedInvalidator struct {
	invalidated []uint64
}

func (m *mockFeedInvalidator) InvalidateUser(_ context.Context, userID uint64) error {
	m.invalidated = append(m.invalidated, userID)
	return nil
}

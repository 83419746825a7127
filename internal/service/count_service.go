package service

import (
	"context"

	"chirper/social-service/internal/models"
	"chirper/social-service/internal/policy"
	"chirper/social-service/internal/repository"
)

// CountService exposes aggregate counts. Every count checks the
// viewer's access to the counted account or tweet first and fails with
// ErrNotAllowed when access is denied; a zero would read as "exists but
// empty" and give the subject away.
type CountService interface {
	FollowersCount(ctx context.Context, requestingUserID, targetUserID uint64) (int64, error)
	FollowingsCount(ctx context.Context, requestingUserID, targetUserID uint64) (int64, error)
	// PendingRequestsCount is self-scoped: only the account owner can
	// see how many follow requests await them.
	PendingRequestsCount(ctx context.Context, userID uint64) (int64, error)
	UserTweetsCount(ctx context.Context, requestingUserID, targetUserID uint64) (int64, error)
	UserRepliesCount(ctx context.Context, requestingUserID, targetUserID uint64) (int64, error)
	UserLikesCount(ctx context.Context, requestingUserID, targetUserID uint64) (int64, error)
	TweetLikesCount(ctx context.Context, requestingUserID, tweetID uint64) (int64, error)
	TweetCommentsCount(ctx context.Context, requestingUserID, tweetID uint64) (int64, error)
	TweetQuotesCount(ctx context.Context, requestingUserID, tweetID uint64) (int64, error)
	TweetRetweetsCount(ctx context.Context, requestingUserID, tweetID uint64) (int64, error)
}

type countService struct {
	users      repository.UserRepository
	follows    repository.FollowRepository
	tweets     repository.TweetRepository
	likes      repository.LikeRepository
	visibility *policy.VisibilityPolicy
}

func NewCountService(
	users repository.UserRepository,
	follows repository.FollowRepository,
	tweets repository.TweetRepository,
	likes repository.LikeRepository,
	visibility *policy.VisibilityPolicy,
) CountService {
	return &countService{
		users:      users,
		follows:    follows,
		tweets:     tweets,
		likes:      likes,
		visibility: visibility,
	}
}

func (s *countService) FollowersCount(ctx context.Context, requestingUserID, targetUserID uint64) (int64, error) {
	if err := s.requireViewAccount(ctx, requestingUserID, targetUserID); err != nil {
		return 0, err
	}
	return s.follows.CountActors(ctx, targetUserID, models.FollowStatusFollower)
}

func (s *countService) FollowingsCount(ctx context.Context, requestingUserID, targetUserID uint64) (int64, error) {
	if err := s.requireViewAccount(ctx, requestingUserID, targetUserID); err != nil {
		return 0, err
	}
	return s.follows.CountSubjects(ctx, targetUserID, models.FollowStatusFollower)
}

func (s *countService) PendingRequestsCount(ctx context.Context, userID uint64) (int64, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, policy.ErrUserNotFound
	}
	return s.follows.CountActors(ctx, userID, models.FollowStatusPending)
}

func (s *countService) UserTweetsCount(ctx context.Context, requestingUserID, targetUserID uint64) (int64, error) {
	if err := s.requireViewAccount(ctx, requestingUserID, targetUserID); err != nil {
		return 0, err
	}
	return s.tweets.CountByAuthor(ctx, targetUserID)
}

func (s *countService) UserRepliesCount(ctx context.Context, requestingUserID, targetUserID uint64) (int64, error) {
	if err := s.requireViewAccount(ctx, requestingUserID, targetUserID); err != nil {
		return 0, err
	}
	return s.tweets.CountRepliesByAuthor(ctx, targetUserID)
}

func (s *countService) UserLikesCount(ctx context.Context, requestingUserID, targetUserID uint64) (int64, error) {
	if err := s.requireViewAccount(ctx, requestingUserID, targetUserID); err != nil {
		return 0, err
	}
	return s.likes.CountByUser(ctx, targetUserID)
}

func (s *countService) TweetLikesCount(ctx context.Context, requestingUserID, tweetID uint64) (int64, error) {
	if err := s.requireViewTweet(ctx, requestingUserID, tweetID); err != nil {
		return 0, err
	}
	return s.likes.CountByTweet(ctx, tweetID)
}

func (s *countService) TweetCommentsCount(ctx context.Context, requestingUserID, tweetID uint64) (int64, error) {
	if err := s.requireViewTweet(ctx, requestingUserID, tweetID); err != nil {
		return 0, err
	}
	return s.tweets.CountByReference(ctx, tweetID, models.TweetTypeComment)
}

func (s *countService) TweetQuotesCount(ctx context.Context, requestingUserID, tweetID uint64) (int64, error) {
	if err := s.requireViewTweet(ctx, requestingUserID, tweetID); err != nil {
		return 0, err
	}
	return s.tweets.CountByReference(ctx, tweetID, models.TweetTypeQuote)
}

func (s *countService) TweetRetweetsCount(ctx context.Context, requestingUserID, tweetID uint64) (int64, error) {
	if err := s.requireViewTweet(ctx, requestingUserID, tweetID); err != nil {
		return 0, err
	}
	return s.tweets.CountByReference(ctx, tweetID, models.TweetTypeRetweet)
}

func (s *countService) requireViewAccount(ctx context.Context, viewerID, ownerID uint64) error {
	ok, err := s.visibility.CanViewAccount(ctx, viewerID, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAllowed
	}
	return nil
}

func (s *countService) requireViewTweet(ctx context.Context, viewerID, tweetID uint64) error {
	tweet, err := s.tweets.GetByID(ctx, tweetID)
	if err != nil {
		return err
	}
	if tweet == nil {
		return policy.ErrTweetNotFound
	}
	ok, err := s.visibility.CanViewTweet(ctx, viewerID, tweet)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAllowed
	}
	return nil
}

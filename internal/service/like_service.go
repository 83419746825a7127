package service

import (
	"context"
	"database/sql"
	"errors"

	"chirper/social-service/internal/models"
	"chirper/social-service/internal/policy"
	"chirper/social-service/internal/repository"
)

var (
	ErrAlreadyLiked = errors.New("tweet is already liked")
	ErrNotLiked     = errors.New("tweet is not liked")
)

type LikeService interface {
	Like(ctx context.Context, userID, tweetID uint64) error
	Unlike(ctx context.Context, userID, tweetID uint64) error
	HasLiked(ctx context.Context, userID, tweetID uint64) (bool, error)
	TweetLikers(ctx context.Context, requestingUserID, tweetID uint64, page int) ([]*models.UserProfile, error)
	// UserLikes lists the tweets the target user has liked, most recent
	// like first.
	UserLikes(ctx context.Context, requestingUserID, targetUserID uint64, page int) ([]*models.Tweet, error)
}

type likeService struct {
	tweets     repository.TweetRepository
	likes      repository.LikeRepository
	visibility *policy.VisibilityPolicy
	feed       FeedInvalidator
}

// NewLikeService wires the like lifecycle. feed may be nil, cached
// timeline pages then only expire on their TTL.
func NewLikeService(
	tweets repository.TweetRepository,
	likes repository.LikeRepository,
	visibility *policy.VisibilityPolicy,
	feed FeedInvalidator,
) LikeService {
	return &likeService{
		tweets:     tweets,
		likes:      likes,
		visibility: visibility,
		feed:       feed,
	}
}

func (s *likeService) Like(ctx context.Context, userID, tweetID uint64) error {
	tweet, err := s.tweets.GetByID(ctx, tweetID)
	if err != nil {
		return err
	}
	if tweet == nil {
		return policy.ErrTweetNotFound
	}

	ok, err := s.visibility.CanViewTweet(ctx, userID, tweet)
	if err != nil {
		return err
	}
	if ok {
		ok, err = s.visibility.CanInteract(ctx, userID, tweet.AuthorID)
		if err != nil {
			return err
		}
	}
	if !ok {
		return ErrNotAllowed
	}

	if err := s.likes.Create(ctx, userID, tweetID); err != nil {
		if errors.Is(err, repository.ErrDuplicateEdge) {
			return ErrAlreadyLiked
		}
		return err
	}
	invalidateFeeds(ctx, s.feed, userID)
	return nil
}

func (s *likeService) Unlike(ctx context.Context, userID, tweetID uint64) error {
	if err := s.likes.Delete(ctx, userID, tweetID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotLiked
		}
		return err
	}
	invalidateFeeds(ctx, s.feed, userID)
	return nil
}

func (s *likeService) HasLiked(ctx context.Context, userID, tweetID uint64) (bool, error) {
	return s.likes.Exists(ctx, userID, tweetID)
}

func (s *likeService) TweetLikers(ctx context.Context, requestingUserID, tweetID uint64, page int) ([]*models.UserProfile, error) {
	tweet, err := s.tweets.GetByID(ctx, tweetID)
	if err != nil {
		return nil, err
	}
	if tweet == nil {
		return nil, policy.ErrTweetNotFound
	}
	ok, err := s.visibility.CanViewTweet(ctx, requestingUserID, tweet)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAllowed
	}
	return s.likes.ListLikers(ctx, tweetID, page)
}

func (s *likeService) UserLikes(ctx context.Context, requestingUserID, targetUserID uint64, page int) ([]*models.Tweet, error) {
	ok, err := s.visibility.CanViewAccount(ctx, requestingUserID, targetUserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAllowed
	}

	tweetIDs, err := s.likes.ListTweetIDsByUser(ctx, targetUserID, page)
	if err != nil {
		return nil, err
	}
	if len(tweetIDs) == 0 {
		return []*models.Tweet{}, nil
	}

	tweets, err := s.tweets.GetByIDs(ctx, tweetIDs)
	if err != nil {
		return nil, err
	}

	// Preserve the like ordering, the batch lookup does not.
	byID := make(map[uint64]*models.Tweet, len(tweets))
	for _, t := range tweets {
		byID[t.ID] = t
	}
	ordered := make([]*models.Tweet, 0, len(tweetIDs))
	for _, id := range tweetIDs {
		if t, found := byID[id]; found {
			ordered = append(ordered, t)
		}
	}
	return ordered, nil
}

package service

import (
	"context"
	"errors"

	"chirper/social-service/internal/models"
	"chirper/social-service/internal/policy"
	"chirper/social-service/internal/repository"
)

var (
	ErrMissingReference    = errors.New("reference tweet is required")
	ErrUnexpectedReference = errors.New("normal tweets cannot reference another tweet")
	ErrAlreadyRetweeted    = errors.New("already retweeted this tweet")
)

type TweetService interface {
	CreateTweet(ctx context.Context, authorID uint64, text string, tweetType models.TweetType, referenceTweetID *uint64) (*models.Tweet, error)
	// DeleteTweet removes the author's own tweet; retweets of it go with
	// it, comments and quotes stay behind.
	DeleteTweet(ctx context.Context, requestingUserID, tweetID uint64) error
	GetTweet(ctx context.Context, requestingUserID, tweetID uint64) (*models.Tweet, error)
	UserTweets(ctx context.Context, requestingUserID, targetUserID uint64, page int) ([]*models.Tweet, error)
	UserReplies(ctx context.Context, requestingUserID, targetUserID uint64, page int) ([]*models.Tweet, error)
	TweetComments(ctx context.Context, requestingUserID, tweetID uint64, page int) ([]*models.Tweet, error)
	TweetQuotes(ctx context.Context, requestingUserID, tweetID uint64, page int) ([]*models.Tweet, error)
	TweetRetweeters(ctx context.Context, requestingUserID, tweetID uint64, page int) ([]uint64, error)
}

type tweetService struct {
	users      repository.UserRepository
	tweets     repository.TweetRepository
	visibility *policy.VisibilityPolicy
	feed       FeedInvalidator
}

// NewTweetService wires the tweet lifecycle. feed may be nil, cached
// timeline pages then only expire on their TTL.
func NewTweetService(
	users repository.UserRepository,
	tweets repository.TweetRepository,
	visibility *policy.VisibilityPolicy,
	feed FeedInvalidator,
) TweetService {
	return &tweetService{
		users:      users,
		tweets:     tweets,
		visibility: visibility,
		feed:       feed,
	}
}

func (s *tweetService) CreateTweet(ctx context.Context, authorID uint64, text string, tweetType models.TweetType, referenceTweetID *uint64) (*models.Tweet, error) {
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, policy.ErrUserNotFound
	}

	if tweetType == models.TweetTypeNormal {
		if referenceTweetID != nil {
			return nil, ErrUnexpectedReference
		}
	} else {
		if referenceTweetID == nil {
			return nil, ErrMissingReference
		}
		if err := s.checkReference(ctx, authorID, tweetType, *referenceTweetID); err != nil {
			return nil, err
		}
	}

	tweet := &models.Tweet{
		AuthorID:         authorID,
		Text:             text,
		Type:             tweetType,
		ReferenceTweetID: referenceTweetID,
	}
	if err := s.tweets.Create(ctx, tweet); err != nil {
		// Two concurrent retweets of the same tweet race past the
		// ExistsRetweet check; the unique key settles the loser here.
		if errors.Is(err, repository.ErrDuplicateEdge) {
			return nil, ErrAlreadyRetweeted
		}
		return nil, err
	}
	invalidateFeeds(ctx, s.feed, authorID)
	return tweet, nil
}

func (s *tweetService) checkReference(ctx context.Context, authorID uint64, tweetType models.TweetType, referenceTweetID uint64) error {
	reference, err := s.tweets.GetByID(ctx, referenceTweetID)
	if err != nil {
		return err
	}
	if reference == nil {
		return policy.ErrTweetNotFound
	}

	ok, err := s.visibility.CanViewTweet(ctx, authorID, reference)
	if err != nil {
		return err
	}
	if ok {
		ok, err = s.visibility.CanInteract(ctx, authorID, reference.AuthorID)
		if err != nil {
			return err
		}
	}
	if !ok {
		return ErrNotAllowed
	}

	if tweetType == models.TweetTypeRetweet {
		exists, err := s.tweets.ExistsRetweet(ctx, authorID, referenceTweetID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyRetweeted
		}
	}
	return nil
}

func (s *tweetService) DeleteTweet(ctx context.Context, requestingUserID, tweetID uint64) error {
	tweet, err := s.tweets.GetByID(ctx, tweetID)
	if err != nil {
		return err
	}
	if tweet == nil {
		return policy.ErrTweetNotFound
	}
	if tweet.AuthorID != requestingUserID {
		return ErrNotAllowed
	}
	if err := s.tweets.Delete(ctx, tweetID); err != nil {
		return err
	}
	invalidateFeeds(ctx, s.feed, requestingUserID)
	return nil
}

func (s *tweetService) GetTweet(ctx context.Context, requestingUserID, tweetID uint64) (*models.Tweet, error) {
	tweet, err := s.visibleTweet(ctx, requestingUserID, tweetID)
	if err != nil {
		return nil, err
	}
	return tweet, nil
}

func (s *tweetService) UserTweets(ctx context.Context, requestingUserID, targetUserID uint64, page int) ([]*models.Tweet, error) {
	if err := s.requireViewAccount(ctx, requestingUserID, targetUserID); err != nil {
		return nil, err
	}
	return s.tweets.ListByAuthor(ctx, targetUserID, page)
}

func (s *tweetService) UserReplies(ctx context.Context, requestingUserID, targetUserID uint64, page int) ([]*models.Tweet, error) {
	if err := s.requireViewAccount(ctx, requestingUserID, targetUserID); err != nil {
		return nil, err
	}
	return s.tweets.ListRepliesByAuthor(ctx, targetUserID, page)
}

func (s *tweetService) TweetComments(ctx context.Context, requestingUserID, tweetID uint64, page int) ([]*models.Tweet, error) {
	if _, err := s.visibleTweet(ctx, requestingUserID, tweetID); err != nil {
		return nil, err
	}
	return s.tweets.ListByReference(ctx, tweetID, models.TweetTypeComment, page)
}

func (s *tweetService) TweetQuotes(ctx context.Context, requestingUserID, tweetID uint64, page int) ([]*models.Tweet, error) {
	if _, err := s.visibleTweet(ctx, requestingUserID, tweetID); err != nil {
		return nil, err
	}
	return s.tweets.ListByReference(ctx, tweetID, models.TweetTypeQuote, page)
}

func (s *tweetService) TweetRetweeters(ctx context.Context, requestingUserID, tweetID uint64, page int) ([]uint64, error) {
	if _, err := s.visibleTweet(ctx, requestingUserID, tweetID); err != nil {
		return nil, err
	}
	return s.tweets.ListRetweeterIDs(ctx, tweetID, page)
}

// visibleTweet loads a tweet and enforces the viewer's access to it.
func (s *tweetService) visibleTweet(ctx context.Context, requestingUserID, tweetID uint64) (*models.Tweet, error) {
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
	return tweet, nil
}

func (s *tweetService) requireViewAccount(ctx context.Context, viewerID, ownerID uint64) error {
	ok, err := s.visibility.CanViewAccount(ctx, viewerID, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAllowed
	}
	return nil
}

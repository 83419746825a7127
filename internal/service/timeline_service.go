package service

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"chirper/social-service/internal/models"
	"chirper/social-service/internal/policy"
	"chirper/social-service/internal/repository"
)

// TimelineCache holds composed timeline pages for a short while so that
// repeated scrolls do not recompute the candidate set. Misses return
// (nil, nil).
type TimelineCache interface {
	GetPage(ctx context.Context, userID uint64, page int) ([]*models.Tweet, error)
	SetPage(ctx context.Context, userID uint64, page int, tweets []*models.Tweet) error
}

// FeedInvalidator drops a user's cached timeline pages after a mutation
// that changes what their feed should contain.
type FeedInvalidator interface {
	InvalidateUser(ctx context.Context, userID uint64) error
}

// invalidateFeeds is best effort: a page that survives an invalidation
// failure still falls off the cache TTL.
func invalidateFeeds(ctx context.Context, feed FeedInvalidator, userIDs ...uint64) {
	if feed == nil {
		return
	}
	for _, id := range userIDs {
		_ = feed.InvalidateUser(ctx, id)
	}
}

type TimelineService interface {
	// HomeTimeline returns one page of the user's home feed, newest
	// first, and advances the user's last-seen cursor to the newest
	// tweet on the returned page.
	HomeTimeline(ctx context.Context, userID uint64, page int) ([]*models.Tweet, error)
	// UnseenPageIndex returns the page the user left off on, derived
	// from how many feed items predate the last-seen cursor.
	UnseenPageIndex(ctx context.Context, userID uint64) (int, error)
}

type timelineService struct {
	users      repository.UserRepository
	follows    repository.FollowRepository
	tweets     repository.TweetRepository
	likes      repository.LikeRepository
	visibility *policy.VisibilityPolicy
	cache      TimelineCache
	logger     *logrus.Logger
}

// NewTimelineService wires the feed composer. cache may be nil, pages
// are then always recomputed.
func NewTimelineService(
	users repository.UserRepository,
	follows repository.FollowRepository,
	tweets repository.TweetRepository,
	likes repository.LikeRepository,
	visibility *policy.VisibilityPolicy,
	cache TimelineCache,
	logger *logrus.Logger,
) TimelineService {
	return &timelineService{
		users:      users,
		follows:    follows,
		tweets:     tweets,
		likes:      likes,
		visibility: visibility,
		cache:      cache,
		logger:     logger,
	}
}

func (s *timelineService) HomeTimeline(ctx context.Context, userID uint64, page int) ([]*models.Tweet, error) {
	if page < 0 {
		page = 0
	}

	if s.cache != nil {
		cached, err := s.cache.GetPage(ctx, userID, page)
		if err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Warn("timeline cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	candidates, err := s.candidates(ctx, userID)
	if err != nil {
		return nil, err
	}

	start := page * repository.PageSize
	if start >= len(candidates) {
		return []*models.Tweet{}, nil
	}
	end := start + repository.PageSize
	if end > len(candidates) {
		end = len(candidates)
	}
	result := candidates[start:end]

	if len(result) > 0 {
		// The newest tweet handed out becomes the cursor; a failed
		// write only delays the cursor, the feed itself is fine.
		if err := s.users.SetLastSeenOfTimeline(ctx, userID, result[0].CreatedAt); err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Warn("failed to update timeline cursor")
		}
	}

	if s.cache != nil {
		if err := s.cache.SetPage(ctx, userID, page, result); err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Warn("timeline cache write failed")
		}
	}
	return result, nil
}

func (s *timelineService) UnseenPageIndex(ctx context.Context, userID uint64) (int, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, policy.ErrUserNotFound
	}
	if user.LastSeenOfTimeline == nil {
		return 0, nil
	}

	candidates, err := s.candidates(ctx, userID)
	if err != nil {
		return 0, err
	}

	seen := 0
	for _, tweet := range candidates {
		if tweet.CreatedAt.Before(*user.LastSeenOfTimeline) {
			seen++
		}
	}
	return seen / repository.PageSize, nil
}

// candidates builds the full feed for one user: own and followed
// authors' tweets plus tweets liked by those accounts, de-duplicated
// and sorted newest first.
func (s *timelineService) candidates(ctx context.Context, userID uint64) ([]*models.Tweet, error) {
	followingIDs, err := s.follows.ListSubjectIDs(ctx, userID, models.FollowStatusFollower)
	if err != nil {
		return nil, err
	}
	sourceIDs := append([]uint64{userID}, followingIDs...)

	authored, err := s.tweets.ListByAuthors(ctx, sourceIDs)
	if err != nil {
		return nil, err
	}

	likes, err := s.likes.ListByUsers(ctx, sourceIDs)
	if err != nil {
		return nil, err
	}

	canView := newAccountViewMemo(s.visibility, userID)

	seen := make(map[uint64]struct{}, len(authored))
	feed := make([]*models.Tweet, 0, len(authored))
	for _, tweet := range authored {
		if _, dup := seen[tweet.ID]; dup {
			continue
		}
		ok, err := s.admitTweet(ctx, userID, tweet)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		seen[tweet.ID] = struct{}{}
		feed = append(feed, tweet)
	}

	likedIDs := make([]uint64, 0, len(likes))
	likerOf := make(map[uint64]uint64, len(likes))
	for _, like := range likes {
		if _, dup := seen[like.TweetID]; dup {
			continue
		}
		if _, queued := likerOf[like.TweetID]; queued {
			continue
		}
		likerOf[like.TweetID] = like.UserID
		likedIDs = append(likedIDs, like.TweetID)
	}

	if len(likedIDs) > 0 {
		likedTweets, err := s.tweets.GetByIDs(ctx, likedIDs)
		if err != nil {
			return nil, err
		}
		for _, tweet := range likedTweets {
			ok, err := canView.check(ctx, likerOf[tweet.ID])
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			ok, err = canView.check(ctx, tweet.AuthorID)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			seen[tweet.ID] = struct{}{}
			feed = append(feed, tweet)
		}
	}

	sort.Slice(feed, func(i, j int) bool {
		if feed[i].CreatedAt.Equal(feed[j].CreatedAt) {
			return feed[i].ID > feed[j].ID
		}
		return feed[i].CreatedAt.After(feed[j].CreatedAt)
	})
	return feed, nil
}

// admitTweet filters followed authors' tweets: plain tweets always make
// the feed, comments, retweets and quotes only when the referenced
// tweet is visible to the viewer.
func (s *timelineService) admitTweet(ctx context.Context, userID uint64, tweet *models.Tweet) (bool, error) {
	if tweet.Type == models.TweetTypeNormal {
		return true, nil
	}
	return s.visibility.CanViewTweet(ctx, userID, tweet)
}

// accountViewMemo caches CanViewAccount answers for one viewer while a
// single feed is composed.
type accountViewMemo struct {
	visibility *policy.VisibilityPolicy
	viewerID   uint64
	answers    map[uint64]bool
}

func newAccountViewMemo(visibility *policy.VisibilityPolicy, viewerID uint64) *accountViewMemo {
	return &accountViewMemo{
		visibility: visibility,
		viewerID:   viewerID,
		answers:    map[uint64]bool{},
	}
}

func (m *accountViewMemo) check(ctx context.Context, ownerID uint64) (bool, error) {
	if ok, cached := m.answers[ownerID]; cached {
		return ok, nil
	}
	ok, err := m.visibility.CanViewAccount(ctx, m.viewerID, ownerID)
	if err != nil {
		return false, err
	}
	m.answers[ownerID] = ok
	return ok, nil
}

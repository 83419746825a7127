package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"chirper/social-service/internal/models"
	"chirper/social-service/internal/policy"
	"chirper/social-service/internal/repository"
)

func newLikeService(g *graphFixture, tweets *mockTweetRepository, likes *mockLikeRepository) LikeService {
	users := g.userRepo()
	follows := g.followRepo()
	visibility := policy.NewVisibilityPolicy(users, follows, tweets)
	return NewLikeService(tweets, likes, visibility, nil)
}

func publicTweetRepo(authorID uint64) *mockTweetRepository {
	return &mockTweetRepository{
		getByIDFunc: func(_ context.Context, tweetID uint64) (*models.Tweet, error) {
			return &models.Tweet{ID: tweetID, AuthorID: authorID, Type: models.TweetTypeNormal}, nil
		},
	}
}

func TestLikeService_Like(t *testing.T) {
	ctx := context.Background()

	t.Run("liking a visible tweet stores the pair", func(t *testing.T) {
		g := newGraphFixture(publicUser(1), publicUser(2))
		stored := false
		likes := &mockLikeRepository{
			createFunc: func(_ context.Context, userID, tweetID uint64) error {
				if userID != 1 || tweetID != 9 {
					t.Errorf("Unexpected like: %d %d", userID, tweetID)
				}
				stored = true
				return nil
			},
		}
		if err := newLikeService(g, publicTweetRepo(2), likes).Like(ctx, 1, 9); err != nil {
			t.Fatalf("Like failed: %v", err)
		}
		if !stored {
			t.Error("Expected like to be stored")
		}
	})

	t.Run("liking twice is rejected", func(t *testing.T) {
		g := newGraphFixture(publicUser(1), publicUser(2))
		likes := &mockLikeRepository{
			createFunc: func(context.Context, uint64, uint64) error {
				return repository.ErrDuplicateEdge
			},
		}
		if err := newLikeService(g, publicTweetRepo(2), likes).Like(ctx, 1, 9); !errors.Is(err, ErrAlreadyLiked) {
			t.Errorf("Expected ErrAlreadyLiked, got %v", err)
		}
	})

	t.Run("like drops the liker's cached feed pages", func(t *testing.T) {
		g := newGraphFixture(publicUser(1), publicUser(2))
		feed := &mockFeedInvalidator{}
		likes := &mockLikeRepository{
			createFunc: func(context.Context, uint64, uint64) error { return nil },
		}
		users := g.userRepo()
		follows := g.followRepo()
		tweets := publicTweetRepo(2)
		visibility := policy.NewVisibilityPolicy(users, follows, tweets)
		if err := NewLikeService(tweets, likes, visibility, feed).Like(ctx, 1, 9); err != nil {
			t.Fatalf("Like failed: %v", err)
		}
		if len(feed.invalidated) != 1 || feed.invalidated[0] != 1 {
			t.Errorf("Expected feed invalidation for user 1, got %v", feed.invalidated)
		}
	})

	t.Run("cannot like an invisible tweet", func(t *testing.T) {
		g := newGraphFixture(publicUser(1), privateUser(2))
		if err := newLikeService(g, publicTweetRepo(2), &mockLikeRepository{}).Like(ctx, 1, 9); !errors.Is(err, ErrNotAllowed) {
			t.Errorf("Expected ErrNotAllowed, got %v", err)
		}
	})

	t.Run("missing tweet is not found", func(t *testing.T) {
		g := newGraphFixture(publicUser(1))
		tweets := &mockTweetRepository{
			getByIDFunc: func(context.Context, uint64) (*models.Tweet, error) { return nil, nil },
		}
		if err := newLikeService(g, tweets, &mockLikeRepository{}).Like(ctx, 1, 9); !errors.Is(err, policy.ErrTweetNotFound) {
			t.Errorf("Expected ErrTweetNotFound, got %v", err)
		}
	})
}

func TestLikeService_Unlike(t *testing.T) {
	ctx := context.Background()

	t.Run("unliking without a like fails", func(t *testing.T) {
		g := newGraphFixture(publicUser(1))
		likes := &mockLikeRepository{
			deleteFunc: func(context.Context, uint64, uint64) error { return sql.ErrNoRows },
		}
		if err := newLikeService(g, &mockTweetRepository{}, likes).Unlike(ctx, 1, 9); !errors.Is(err, ErrNotLiked) {
			t.Errorf("Expected ErrNotLiked, got %v", err)
		}
	})
}

func TestLikeService_UserLikes(t *testing.T) {
	ctx := context.Background()

	t.Run("preserves the like ordering", func(t *testing.T) {
		g := newGraphFixture(publicUser(1), publicUser(2))
		tweets := &mockTweetRepository{
			getByIDsFunc: func(_ context.Context, tweetIDs []uint64) ([]*models.Tweet, error) {
				// batch lookup returns id order, not like order
				return []*models.Tweet{{ID: 3}, {ID: 8}, {ID: 12}}, nil
			},
		}
		likes := &mockLikeRepository{
			listTweetIDsByUserFunc: func(_ context.Context, userID uint64, page int) ([]uint64, error) {
				return []uint64{12, 3, 8}, nil
			},
		}

		result, err := newLikeService(g, tweets, likes).UserLikes(ctx, 1, 2, 0)
		if err != nil {
			t.Fatalf("UserLikes failed: %v", err)
		}
		if len(result) != 3 || result[0].ID != 12 || result[1].ID != 3 || result[2].ID != 8 {
			t.Errorf("Unexpected order: %+v", result)
		}
	})

	t.Run("private target is forbidden", func(t *testing.T) {
		g := newGraphFixture(publicUser(1), privateUser(2))
		if _, err := newLikeService(g, &mockTweetRepository{}, &mockLikeRepository{}).UserLikes(ctx, 1, 2, 0); !errors.Is(err, ErrNotAllowed) {
			t.Errorf("Expected ErrNotAllowed, got %v", err)
		}
	})

	t.Run("no likes yields an empty page", func(t *testing.T) {
		g := newGraphFixture(publicUser(1), publicUser(2))
		likes := &mockLikeRepository{
			listTweetIDsByUserFunc: func(context.Context, uint64, int) ([]uint64, error) {
				return nil, nil
			},
		}
		result, err := newLikeService(g, &mockTweetRepository{}, likes).UserLikes(ctx, 1, 2, 0)
		if err != nil {
			t.Fatalf("UserLikes failed: %v", err)
		}
		if len(result) != 0 {
			t.Errorf("Expected empty result, got %+v", result)
		}
	})
}

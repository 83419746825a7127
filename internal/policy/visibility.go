// Package policy holds the visibility rules of the social graph. Every
// read path answers "may this viewer see that account or tweet" through
// the predicates here; no caller re-implements the boolean logic.
package policy

import (
	"context"
	"errors"
	"fmt"

	"chirper/social-service/internal/models"
	"chirper/social-service/internal/repository"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrTweetNotFound = errors.New("tweet not found")
)

// VisibilityPolicy decides account and tweet visibility. All methods are
// side-effect-free reads over the current graph state.
type VisibilityPolicy struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	tweets  repository.TweetRepository
}

func NewVisibilityPolicy(
	users repository.UserRepository,
	follows repository.FollowRepository,
	tweets repository.TweetRepository,
) *VisibilityPolicy {
	return &VisibilityPolicy{
		users:   users,
		follows: follows,
		tweets:  tweets,
	}
}

// CanViewAccount reports whether viewer may see owner's profile and
// content. Always true for the owner looking at their own account. A BLOCK
// edge in either direction hides the accounts from each other; otherwise
// public accounts are visible to everyone and private accounts only to
// accepted followers.
func (p *VisibilityPolicy) CanViewAccount(ctx context.Context, viewerID, ownerID uint64) (bool, error) {
	if viewerID == ownerID {
		return true, nil
	}

	owner, err := p.users.GetByID(ctx, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to load account: %w", err)
	}
	if owner == nil {
		return false, ErrUserNotFound
	}

	viewerEdge, err := p.follows.Get(ctx, viewerID, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to load viewer edge: %w", err)
	}
	if viewerEdge != nil && viewerEdge.Status == models.FollowStatusBlock {
		return false, nil
	}
	ownerEdge, err := p.follows.Get(ctx, ownerID, viewerID)
	if err != nil {
		return false, fmt.Errorf("failed to load owner edge: %w", err)
	}
	if ownerEdge != nil && ownerEdge.Status == models.FollowStatusBlock {
		return false, nil
	}

	if owner.Status == models.UserStatusPublic {
		return true, nil
	}
	return viewerEdge != nil && viewerEdge.Status == models.FollowStatusFollower, nil
}

// CanViewTweet reports whether viewer may see the tweet. For comments,
// retweets and quotes the single directly-referenced tweet must be visible
// too; reference chains are not walked further. A reference whose target
// has been deleted no longer protects anything and does not hide the
// referencing tweet.
func (p *VisibilityPolicy) CanViewTweet(ctx context.Context, viewerID uint64, tweet *models.Tweet) (bool, error) {
	if tweet == nil {
		return false, ErrTweetNotFound
	}

	ok, err := p.CanViewAccount(ctx, viewerID, tweet.AuthorID)
	if err != nil || !ok {
		return false, err
	}
	if !tweet.HasReference() {
		return true, nil
	}

	reference, err := p.tweets.GetByID(ctx, *tweet.ReferenceTweetID)
	if err != nil {
		return false, fmt.Errorf("failed to load reference tweet: %w", err)
	}
	if reference == nil {
		// Dangling reference: the target was deleted, comments and
		// quotes keep pointing at it.
		return true, nil
	}
	return p.CanViewAccount(ctx, viewerID, reference.AuthorID)
}

// CanInteract reports whether the pair may interact at all: likes,
// replies, quotes, retweets and new relationship requests are all off the
// table while a BLOCK edge exists in either direction.
func (p *VisibilityPolicy) CanInteract(ctx context.Context, actorID, subjectID uint64) (bool, error) {
	if actorID == subjectID {
		return true, nil
	}

	for _, id := range []uint64{actorID, subjectID} {
		user, err := p.users.GetByID(ctx, id)
		if err != nil {
			return false, fmt.Errorf("failed to load account: %w", err)
		}
		if user == nil {
			return false, ErrUserNotFound
		}
	}

	edge, err := p.follows.Get(ctx, actorID, subjectID)
	if err != nil {
		return false, fmt.Errorf("failed to load edge: %w", err)
	}
	if edge != nil && edge.Status == models.FollowStatusBlock {
		return false, nil
	}
	edge, err = p.follows.Get(ctx, subjectID, actorID)
	if err != nil {
		return false, fmt.Errorf("failed to load edge: %w", err)
	}
	if edge != nil && edge.Status == models.FollowStatusBlock {
		return false, nil
	}
	return true, nil
}

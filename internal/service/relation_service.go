package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chirper/social-service/internal/models"
	"chirper/social-service/internal/policy"
	"chirper/social-service/internal/repository"
)

var (
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
	ErrCannotBlockSelf  = errors.New("cannot block yourself")
	ErrSelfRelation     = errors.New("cannot compute relation to yourself")
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrAlreadyRequested = errors.New("follow request already pending")
	ErrAlreadyBlocked   = errors.New("user is already blocked")
	ErrNotFollowing     = errors.New("not following this user")
	ErrNoPendingRequest = errors.New("no pending follow request")
	ErrNotBlocked       = errors.New("user is not blocked")
	ErrNotAllowed       = errors.New("you are not allowed")
	ErrRelationConflict = errors.New("conflicting relationship state")
)

// RelationService owns the follow/pending/block lifecycle. All operations
// work on the directed pair (actor, subject): the actor performs the
// action, the subject receives it.
type RelationService interface {
	// Follow creates a FOLLOWER edge toward a public subject or a PENDING
	// edge toward a private one, and returns the status it created.
	Follow(ctx context.Context, actorID, subjectID uint64) (models.FollowStatus, error)
	Unfollow(ctx context.Context, actorID, subjectID uint64) error
	// CancelRequest withdraws the actor's own pending follow request.
	CancelRequest(ctx context.Context, actorID, subjectID uint64) error
	// Accept lets userID admit requesterID's pending follow request.
	Accept(ctx context.Context, userID, requesterID uint64) error
	Refuse(ctx context.Context, userID, requesterID uint64) error
	Block(ctx context.Context, actorID, subjectID uint64) error
	Unblock(ctx context.Context, actorID, subjectID uint64) error
	RelationStatus(ctx context.Context, requestingUserID, targetUserID uint64) (models.RelationLabel, error)
	Followers(ctx context.Context, requestingUserID, targetUserID uint64, page int) ([]*models.UserProfile, error)
	Followings(ctx context.Context, requestingUserID, targetUserID uint64, page int) ([]*models.UserProfile, error)
	// PendingFollowers lists the requests waiting on the calling user; it
	// is never exposed for other accounts.
	PendingFollowers(ctx context.Context, userID uint64, page int) ([]*models.UserProfile, error)
}

type relationService struct {
	users      repository.UserRepository
	follows    repository.FollowRepository
	visibility *policy.VisibilityPolicy
	feed       FeedInvalidator
}

// NewRelationService wires the relationship lifecycle. feed may be nil,
// cached timeline pages then only expire on their TTL.
func NewRelationService(
	users repository.UserRepository,
	follows repository.FollowRepository,
	visibility *policy.VisibilityPolicy,
	feed FeedInvalidator,
) RelationService {
	return &relationService{
		users:      users,
		follows:    follows,
		visibility: visibility,
		feed:       feed,
	}
}

func (s *relationService) Follow(ctx context.Context, actorID, subjectID uint64) (models.FollowStatus, error) {
	if actorID == subjectID {
		return "", ErrCannotFollowSelf
	}

	// Existence of both accounts plus the block gate in one predicate.
	ok, err := s.visibility.CanInteract(ctx, actorID, subjectID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotAllowed
	}

	edge, err := s.follows.Get(ctx, actorID, subjectID)
	if err != nil {
		return "", err
	}
	if edge != nil {
		switch edge.Status {
		case models.FollowStatusFollower:
			return "", ErrAlreadyFollowing
		case models.FollowStatusPending:
			return "", ErrAlreadyRequested
		default:
			return "", ErrNotAllowed
		}
	}

	subject, err := s.users.GetByID(ctx, subjectID)
	if err != nil {
		return "", err
	}
	if subject == nil {
		return "", policy.ErrUserNotFound
	}

	status := models.FollowStatusFollower
	if subject.Status == models.UserStatusPrivate {
		status = models.FollowStatusPending
	}

	err = s.follows.Create(ctx, &models.FollowEdge{
		ActorID:   actorID,
		SubjectID: subjectID,
		Status:    status,
	})
	if errors.Is(err, repository.ErrDuplicateEdge) {
		// Lost a race against an identical request.
		if status == models.FollowStatusPending {
			return "", ErrAlreadyRequested
		}
		return "", ErrAlreadyFollowing
	}
	if err != nil {
		return "", err
	}
	if status == models.FollowStatusFollower {
		// A pending request grants nothing, only a live follow
		// changes the actor's feed.
		invalidateFeeds(ctx, s.feed, actorID)
	}
	return status, nil
}

func (s *relationService) Unfollow(ctx context.Context, actorID, subjectID uint64) error {
	err := s.follows.Delete(ctx, actorID, subjectID, models.FollowStatusFollower)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFollowing
	}
	if err == nil {
		invalidateFeeds(ctx, s.feed, actorID)
	}
	return err
}

func (s *relationService) CancelRequest(ctx context.Context, actorID, subjectID uint64) error {
	err := s.follows.Delete(ctx, actorID, subjectID, models.FollowStatusPending)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoPendingRequest
	}
	return err
}

func (s *relationService) Accept(ctx context.Context, userID, requesterID uint64) error {
	err := s.follows.UpdateStatus(ctx, requesterID, userID,
		models.FollowStatusPending, models.FollowStatusFollower)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoPendingRequest
	}
	if err == nil {
		// The admitted requester's feed gains this account's content.
		invalidateFeeds(ctx, s.feed, requesterID)
	}
	return err
}

func (s *relationService) Refuse(ctx context.Context, userID, requesterID uint64) error {
	err := s.follows.Delete(ctx, requesterID, userID, models.FollowStatusPending)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoPendingRequest
	}
	return err
}

func (s *relationService) Block(ctx context.Context, actorID, subjectID uint64) error {
	if actorID == subjectID {
		return ErrCannotBlockSelf
	}

	for _, id := range []uint64{actorID, subjectID} {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if user == nil {
			return policy.ErrUserNotFound
		}
	}

	own, err := s.follows.Get(ctx, actorID, subjectID)
	if err != nil {
		return err
	}
	if own != nil && own.Status == models.FollowStatusBlock {
		return ErrAlreadyBlocked
	}
	reverse, err := s.follows.Get(ctx, subjectID, actorID)
	if err != nil {
		return err
	}
	if reverse != nil && reverse.Status == models.FollowStatusBlock {
		return ErrNotAllowed
	}

	// A block erases every follow relation between the pair first.
	if err := s.follows.DeleteBetween(ctx, actorID, subjectID); err != nil {
		return err
	}
	err = s.follows.Create(ctx, &models.FollowEdge{
		ActorID:   actorID,
		SubjectID: subjectID,
		Status:    models.FollowStatusBlock,
	})
	if errors.Is(err, repository.ErrDuplicateEdge) {
		return ErrAlreadyBlocked
	}
	if err == nil {
		// Both feeds lose the other account's content.
		invalidateFeeds(ctx, s.feed, actorID, subjectID)
	}
	return err
}

func (s *relationService) Unblock(ctx context.Context, actorID, subjectID uint64) error {
	err := s.follows.Delete(ctx, actorID, subjectID, models.FollowStatusBlock)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotBlocked
	}
	return err
}

func (s *relationService) RelationStatus(ctx context.Context, requestingUserID, targetUserID uint64) (models.RelationLabel, error) {
	if requestingUserID == targetUserID {
		return "", ErrSelfRelation
	}

	toTarget, err := s.edgeStatus(ctx, requestingUserID, targetUserID)
	if err != nil {
		return "", err
	}
	fromTarget, err := s.edgeStatus(ctx, targetUserID, requestingUserID)
	if err != nil {
		return "", err
	}

	label, ok := models.RelationLabelFor(toTarget, fromTarget)
	if !ok {
		// A BLOCK edge next to a live FOLLOWER/PENDING edge should have
		// been impossible; surface it instead of guessing a label.
		return "", fmt.Errorf("%w: %s/%s between %d and %d",
			ErrRelationConflict, toTarget, fromTarget, requestingUserID, targetUserID)
	}
	return label, nil
}

func (s *relationService) edgeStatus(ctx context.Context, actorID, subjectID uint64) (models.FollowStatus, error) {
	edge, err := s.follows.Get(ctx, actorID, subjectID)
	if err != nil {
		return "", err
	}
	if edge == nil {
		return models.FollowStatusNone, nil
	}
	return edge.Status, nil
}

func (s *relationService) Followers(ctx context.Context, requestingUserID, targetUserID uint64, page int) ([]*models.UserProfile, error) {
	if err := s.requireViewAccount(ctx, requestingUserID, targetUserID); err != nil {
		return nil, err
	}
	return s.follows.ListActors(ctx, targetUserID, models.FollowStatusFollower, page)
}

func (s *relationService) Followings(ctx context.Context, requestingUserID, targetUserID uint64, page int) ([]*models.UserProfile, error) {
	if err := s.requireViewAccount(ctx, requestingUserID, targetUserID); err != nil {
		return nil, err
	}
	return s.follows.ListSubjects(ctx, targetUserID, models.FollowStatusFollower, page)
}

func (s *relationService) PendingFollowers(ctx context.Context, userID uint64, page int) ([]*models.UserProfile, error) {
	return s.follows.ListActors(ctx, userID, models.FollowStatusPending, page)
}

func (s *relationService) requireViewAccount(ctx context.Context, viewerID, ownerID uint64) error {
	ok, err := s.visibility.CanViewAccount(ctx, viewerID, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAllowed
	}
	return nil
}

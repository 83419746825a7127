package models

import "time"

// FollowStatus is the state of one directed edge in the social graph.
// FollowStatusNone is a computed state meaning no edge exists; it is never
// stored.
type FollowStatus string

const (
	FollowStatusNone     FollowStatus = "NONE"
	FollowStatusFollower FollowStatus = "FOLLOWER"
	FollowStatusPending  FollowStatus = "PENDING"
	FollowStatusBlock    FollowStatus = "BLOCK"
)

// FollowEdge is one directed relationship record. ActorID is the account
// that performed the follow/block action, SubjectID the account it targets.
// FOLLOWER means actor follows subject; PENDING means actor has asked to
// follow a private subject; BLOCK means actor refuses all contact with
// subject. At most one edge exists per ordered pair.
type FollowEdge struct {
	ActorID   uint64
	SubjectID uint64
	Status    FollowStatus
	CreatedAt time.Time
}

// RelationLabel names the combined state of both directed edges between a
// pair of accounts. The first position is always the status of the
// requesting user's edge toward the target, the second the reverse edge.
// So after A follows public B, RelationLabel for (A, B) is FOLLOW_NONE and
// for (B, A) it is NONE_FOLLOW.
type RelationLabel string

const (
	RelationNoneNone      RelationLabel = "NONE_NONE"
	RelationNoneFollow    RelationLabel = "NONE_FOLLOW"
	RelationNonePending   RelationLabel = "NONE_PENDING"
	RelationNoneBlock     RelationLabel = "NONE_BLOCK"
	RelationFollowNone    RelationLabel = "FOLLOW_NONE"
	RelationFollowFollow  RelationLabel = "FOLLOW_FOLLOW"
	RelationFollowPending RelationLabel = "FOLLOW_PENDING"
	RelationPendingNone   RelationLabel = "PENDING_NONE"
	RelationPendingFollow RelationLabel = "PENDING_FOLLOW"
	RelationPendingPend   RelationLabel = "PENDING_PENDING"
	RelationBlockNone     RelationLabel = "BLOCK_NONE"
	RelationBlockBlock    RelationLabel = "BLOCK_BLOCK"
)

// RelationLabelFor combines the two directed edge statuses into one of the
// twelve valid labels. ok is false for combinations that violate the block
// invariant: a BLOCK edge suppresses FOLLOWER/PENDING edges on the same
// pair, so BLOCK may only pair with NONE or BLOCK.
func RelationLabelFor(toTarget, fromTarget FollowStatus) (RelationLabel, bool) {
	if toTarget == FollowStatusBlock || fromTarget == FollowStatusBlock {
		switch {
		case toTarget == FollowStatusBlock && fromTarget == FollowStatusBlock:
			return RelationBlockBlock, true
		case toTarget == FollowStatusBlock && fromTarget == FollowStatusNone:
			return RelationBlockNone, true
		case toTarget == FollowStatusNone && fromTarget == FollowStatusBlock:
			return RelationNoneBlock, true
		}
		return "", false
	}

	labels := map[FollowStatus]map[FollowStatus]RelationLabel{
		FollowStatusNone: {
			FollowStatusNone:     RelationNoneNone,
			FollowStatusFollower: RelationNoneFollow,
			FollowStatusPending:  RelationNonePending,
		},
		FollowStatusFollower: {
			FollowStatusNone:     RelationFollowNone,
			FollowStatusFollower: RelationFollowFollow,
			FollowStatusPending:  RelationFollowPending,
		},
		FollowStatusPending: {
			FollowStatusNone:     RelationPendingNone,
			FollowStatusFollower: RelationPendingFollow,
			FollowStatusPending:  RelationPendingPend,
		},
	}
	label, ok := labels[toTarget][fromTarget]
	return label, ok
}

package models

import "testing"

func TestRelationLabelFor(t *testing.T) {
	tests := []struct {
		name       string
		toTarget   FollowStatus
		fromTarget FollowStatus
		want       RelationLabel
		wantOK     bool
	}{
		{"no edges", FollowStatusNone, FollowStatusNone, RelationNoneNone, true},
		{"target follows requester", FollowStatusNone, FollowStatusFollower, RelationNoneFollow, true},
		{"target requested requester", FollowStatusNone, FollowStatusPending, RelationNonePending, true},
		{"requester follows target", FollowStatusFollower, FollowStatusNone, RelationFollowNone, true},
		{"mutual follow", FollowStatusFollower, FollowStatusFollower, RelationFollowFollow, true},
		{"follows but reverse pending", FollowStatusFollower, FollowStatusPending, RelationFollowPending, true},
		{"requester requested target", FollowStatusPending, FollowStatusNone, RelationPendingNone, true},
		{"pending while followed back", FollowStatusPending, FollowStatusFollower, RelationPendingFollow, true},
		{"mutual pending", FollowStatusPending, FollowStatusPending, RelationPendingPend, true},
		{"requester blocks target", FollowStatusBlock, FollowStatusNone, RelationBlockNone, true},
		{"target blocks requester", FollowStatusNone, FollowStatusBlock, RelationNoneBlock, true},
		{"mutual block", FollowStatusBlock, FollowStatusBlock, RelationBlockBlock, true},
		{"block beside follower is invalid", FollowStatusBlock, FollowStatusFollower, "", false},
		{"block beside pending is invalid", FollowStatusPending, FollowStatusBlock, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RelationLabelFor(tt.toTarget, tt.fromTarget)
			if ok != tt.wantOK {
				t.Fatalf("RelationLabelFor(%s, %s) ok = %v, want %v", tt.toTarget, tt.fromTarget, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("RelationLabelFor(%s, %s) = %s, want %s", tt.toTarget, tt.fromTarget, got, tt.want)
			}
		})
	}
}

func TestTweetHasReference(t *testing.T) {
	ref := uint64(7)

	normal := &Tweet{Type: TweetTypeNormal}
	if normal.HasReference() {
		t.Error("normal tweet should not report a reference")
	}

	retweet := &Tweet{Type: TweetTypeRetweet, ReferenceTweetID: &ref}
	if !retweet.HasReference() {
		t.Error("retweet with reference should report it")
	}

	dangling := &Tweet{Type: TweetTypeComment}
	if dangling.HasReference() {
		t.Error("comment without reference id should not report one")
	}
}

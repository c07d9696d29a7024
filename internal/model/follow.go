package model

import (
	"errors"
	"time"
)

// Follow is a directed edge: FollowingUser follows FollowedUser.
type Follow struct {
	ID            int64     `db:"id" json:"id"`
	FollowingUser int64     `db:"following_user" json:"following_user"`
	FollowedUser  int64     `db:"followed_user" json:"followed_user"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// FollowEdge is a follow listing entry with the opposite endpoint populated.
type FollowEdge struct {
	Follow
	User UserSummary `json:"user"`
}

// FollowResult is the payload returned after a successful follow.
type FollowResult struct {
	Follow
	FollowedUserInfo FollowedUserInfo `json:"followed_user_info"`
}

type FollowedUserInfo struct {
	Name     string `json:"name"`
	LastName string `json:"last_name"`
}

// FollowIDs lists who a user follows and who follows them.
type FollowIDs struct {
	Following []int64 `json:"following"`
	Followers []int64 `json:"followers"`
}

// FollowStatus is the pairwise relation between a viewer and another user.
type FollowStatus struct {
	Following bool `json:"following"`
	Follower  bool `json:"follower"`
}

type FollowList struct {
	Follows []FollowEdge
	Total   int
}

type FollowRequest struct {
	FollowedUser int64 `json:"followed_user" validate:"required,gt=0"`
}

var (
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrNotFollowing     = errors.New("not following this user")
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)

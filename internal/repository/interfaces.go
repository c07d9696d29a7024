package repository

import (
	"context"

	"github.com/karen-colon/b3-backend-social-net/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// ExistsByEmailOrNick matches case-insensitively.
	ExistsByEmailOrNick(ctx context.Context, email, nick string) (bool, error)
	// IdentityTakenByOther reports whether a user other than id holds email or nick.
	IdentityTakenByOther(ctx context.Context, id int64, email, nick string) (bool, error)
	List(ctx context.Context, offset, limit int) ([]model.PublicUser, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, user *model.User) error
	UpdateImage(ctx context.Context, id int64, image string) (*model.User, error)
}

type FollowRepository interface {
	// Create returns false when the edge already existed.
	Create(ctx context.Context, followerID, followeeID int64) (*model.Follow, bool, error)
	Delete(ctx context.Context, followerID, followeeID int64) error
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)
	GetFollowingIDs(ctx context.Context, userID int64) ([]int64, error)
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
	ListFollowing(ctx context.Context, userID int64, offset, limit int) ([]model.FollowEdge, error)
	ListFollowers(ctx context.Context, userID int64, offset, limit int) ([]model.FollowEdge, error)
	CountFollowing(ctx context.Context, userID int64) (int, error)
	CountFollowers(ctx context.Context, userID int64) (int, error)
}

type PublicationRepository interface {
	Create(ctx context.Context, userID int64, text string) (*model.Publication, error)
	// GetByID populates Owner.
	GetByID(ctx context.Context, id int64) (*model.Publication, error)
	Exists(ctx context.Context, id int64) (bool, error)
	// Delete removes the publication only when userID owns it.
	Delete(ctx context.Context, id, userID int64) error
	ListByUser(ctx context.Context, userID int64, offset, limit int) ([]model.Publication, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	ListByOwners(ctx context.Context, ownerIDs []int64, offset, limit int) ([]model.Publication, error)
	CountByOwners(ctx context.Context, ownerIDs []int64) (int, error)
	UpdateFile(ctx context.Context, id int64, file string) (*model.Publication, error)
}

type ReplyRepository interface {
	// Create inserts the reply and bumps the publication's reply_count in one transaction.
	Create(ctx context.Context, publicationID, userID int64, text string) (*model.Reply, error)
	ListByPublication(ctx context.Context, publicationID int64, offset, limit int) ([]model.Reply, error)
	CountByPublication(ctx context.Context, publicationID int64) (int, error)
}

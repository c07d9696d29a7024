package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/karen-colon/b3-backend-social-net/internal/model"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create inserts the edge. The unique (following_user, followed_user) index makes a
// concurrent duplicate a no-op, reported as inserted=false.
func (r *followRepository) Create(ctx context.Context, followerID, followeeID int64) (*model.Follow, bool, error) {
	query := `
		INSERT INTO follows (following_user, followed_user)
		VALUES ($1, $2)
		ON CONFLICT (following_user, followed_user) DO NOTHING
		RETURNING id, following_user, followed_user, created_at
	`
	var follow model.Follow
	err := r.db.GetContext(ctx, &follow, query, followerID, followeeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, false, model.ErrUserNotFound
		}
		return nil, false, fmt.Errorf("failed to create follow: %w", err)
	}
	return &follow, true, nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followeeID int64) error {
	query := `DELETE FROM follows WHERE following_user = $1 AND followed_user = $2`
	result, err := r.db.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotFollowing
	}

	return nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE following_user = $1 AND followed_user = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow existence: %w", err)
	}
	return exists, nil
}

func (r *followRepository) GetFollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids := []int64{}
	err := r.db.SelectContext(ctx, &ids, `SELECT followed_user FROM follows WHERE following_user = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get following ids: %w", err)
	}
	return ids, nil
}

func (r *followRepository) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids := []int64{}
	err := r.db.SelectContext(ctx, &ids, `SELECT following_user FROM follows WHERE followed_user = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get follower ids: %w", err)
	}
	return ids, nil
}

type followEdgeRow struct {
	ID            int64     `db:"id"`
	FollowingUser int64     `db:"following_user"`
	FollowedUser  int64     `db:"followed_user"`
	CreatedAt     time.Time `db:"created_at"`
	UserID        int64     `db:"user_id"`
	UserName      string    `db:"user_name"`
	UserLastName  string    `db:"user_last_name"`
	UserNick      string    `db:"user_nick"`
	UserImage     string    `db:"user_image"`
}

func (row followEdgeRow) toModel() model.FollowEdge {
	return model.FollowEdge{
		Follow: model.Follow{
			ID:            row.ID,
			FollowingUser: row.FollowingUser,
			FollowedUser:  row.FollowedUser,
			CreatedAt:     row.CreatedAt,
		},
		User: model.UserSummary{
			ID:       row.UserID,
			Name:     row.UserName,
			LastName: row.UserLastName,
			Nick:     row.UserNick,
			Image:    row.UserImage,
		},
	}
}

// ListFollowing returns the users userID follows, newest edge first, with the followed user populated.
func (r *followRepository) ListFollowing(ctx context.Context, userID int64, offset, limit int) ([]model.FollowEdge, error) {
	query := `
		SELECT f.id, f.following_user, f.followed_user, f.created_at,
		       u.id AS user_id, u.name AS user_name, u.last_name AS user_last_name,
		       u.nick AS user_nick, u.image AS user_image
		FROM follows f
		JOIN users u ON u.id = f.followed_user
		WHERE f.following_user = $1
		ORDER BY f.created_at DESC, f.id DESC
		LIMIT $2 OFFSET $3
	`
	return r.listEdges(ctx, query, userID, offset, limit)
}

// ListFollowers returns the users following userID, newest edge first, with the follower populated.
func (r *followRepository) ListFollowers(ctx context.Context, userID int64, offset, limit int) ([]model.FollowEdge, error) {
	query := `
		SELECT f.id, f.following_user, f.followed_user, f.created_at,
		       u.id AS user_id, u.name AS user_name, u.last_name AS user_last_name,
		       u.nick AS user_nick, u.image AS user_image
		FROM follows f
		JOIN users u ON u.id = f.following_user
		WHERE f.followed_user = $1
		ORDER BY f.created_at DESC, f.id DESC
		LIMIT $2 OFFSET $3
	`
	return r.listEdges(ctx, query, userID, offset, limit)
}

func (r *followRepository) listEdges(ctx context.Context, query string, userID int64, offset, limit int) ([]model.FollowEdge, error) {
	var rows []followEdgeRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list follows: %w", err)
	}

	edges := make([]model.FollowEdge, len(rows))
	for i, row := range rows {
		edges[i] = row.toModel()
	}
	return edges, nil
}

func (r *followRepository) CountFollowing(ctx context.Context, userID int64) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM follows WHERE following_user = $1`, userID); err != nil {
		return 0, fmt.Errorf("failed to count following: %w", err)
	}
	return total, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID int64) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM follows WHERE followed_user = $1`, userID); err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}
	return total, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/karen-colon/b3-backend-social-net/internal/model"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, last_name, nick, email, password, bio, role, image, created_at`

// Create inserts the user and fills ID, Role, Image and CreatedAt from the row.
// A unique index hit on email or nick is reported as ErrUserExists.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (name, last_name, nick, email, password, bio, role, image)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE(NULLIF($7, ''), 'role_user'), COALESCE(NULLIF($8, ''), 'default_user.png'))
		RETURNING id, role, image, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		user.Name, user.LastName, user.Nick, user.Email, user.Password, user.Bio, user.Role, user.Image,
	).Scan(&user.ID, &user.Role, &user.Image, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmailOrNick(ctx context.Context, email, nick string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) OR LOWER(nick) = LOWER($2))`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email, nick); err != nil {
		return false, fmt.Errorf("check user existence: %w", err)
	}
	return exists, nil
}

func (r *userRepository) IdentityTakenByOther(ctx context.Context, id int64, email, nick string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM users
			WHERE id <> $1 AND (LOWER(email) = LOWER($2) OR LOWER(nick) = LOWER($3))
		)
	`
	var taken bool
	if err := r.db.GetContext(ctx, &taken, query, id, email, nick); err != nil {
		return false, fmt.Errorf("check identity collision: %w", err)
	}
	return taken, nil
}

func (r *userRepository) List(ctx context.Context, offset, limit int) ([]model.PublicUser, error) {
	query := `
		SELECT id, name, last_name, nick, bio, image, created_at
		FROM users
		ORDER BY id
		LIMIT $1 OFFSET $2
	`
	users := []model.PublicUser{}
	if err := r.db.SelectContext(ctx, &users, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

// Update persists the mutable profile fields. Role is never written here.
func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET name = $1, last_name = $2, nick = $3, email = $4, bio = $5, password = $6, image = $7
		WHERE id = $8
	`
	result, err := r.db.ExecContext(ctx, query,
		user.Name, user.LastName, user.Nick, user.Email, user.Bio, user.Password, user.Image, user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrIdentityTaken
		}
		return fmt.Errorf("update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) UpdateImage(ctx context.Context, id int64, image string) (*model.User, error) {
	query := `UPDATE users SET image = $1 WHERE id = $2 RETURNING ` + userColumns
	var user model.User
	err := r.db.GetContext(ctx, &user, query, image, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update user image: %w", err)
	}
	return &user, nil
}

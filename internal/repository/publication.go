package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/karen-colon/b3-backend-social-net/internal/model"
)

type publicationRepository struct {
	db *sqlx.DB
}

func NewPublicationRepository(db *sqlx.DB) PublicationRepository {
	return &publicationRepository{db: db}
}

const publicationWithOwner = `
	SELECT p.id, p.user_id, p.text, p.file, p.reply_count, p.created_at,
	       u.name AS owner_name, u.last_name AS owner_last_name,
	       u.nick AS owner_nick, u.image AS owner_image
	FROM publications p
	JOIN users u ON u.id = p.user_id
`

type publicationRow struct {
	ID            int64     `db:"id"`
	UserID        int64     `db:"user_id"`
	Text          string    `db:"text"`
	File          *string   `db:"file"`
	ReplyCount    int       `db:"reply_count"`
	CreatedAt     time.Time `db:"created_at"`
	OwnerName     string    `db:"owner_name"`
	OwnerLastName string    `db:"owner_last_name"`
	OwnerNick     string    `db:"owner_nick"`
	OwnerImage    string    `db:"owner_image"`
}

func (row publicationRow) toModel() model.Publication {
	return model.Publication{
		ID:         row.ID,
		UserID:     row.UserID,
		Text:       row.Text,
		File:       row.File,
		ReplyCount: row.ReplyCount,
		CreatedAt:  row.CreatedAt,
		Owner: &model.UserSummary{
			ID:       row.UserID,
			Name:     row.OwnerName,
			LastName: row.OwnerLastName,
			Nick:     row.OwnerNick,
			Image:    row.OwnerImage,
		},
	}
}

func (r *publicationRepository) Create(ctx context.Context, userID int64, text string) (*model.Publication, error) {
	query := `
		INSERT INTO publications (user_id, text)
		VALUES ($1, $2)
		RETURNING id, user_id, text, file, reply_count, created_at
	`
	var publication model.Publication
	if err := r.db.GetContext(ctx, &publication, query, userID, text); err != nil {
		if isForeignKeyViolation(err) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("insert publication: %w", err)
	}
	return &publication, nil
}

func (r *publicationRepository) GetByID(ctx context.Context, id int64) (*model.Publication, error) {
	var row publicationRow
	err := r.db.GetContext(ctx, &row, publicationWithOwner+` WHERE p.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPublicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get publication: %w", err)
	}
	publication := row.toModel()
	return &publication, nil
}

func (r *publicationRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM publications WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("check publication existence: %w", err)
	}
	return exists, nil
}

// Delete matches on both id and owner so a foreign publication looks exactly like a missing one.
func (r *publicationRepository) Delete(ctx context.Context, id, userID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM publications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete publication: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPublicationNotFound
	}
	return nil
}

func (r *publicationRepository) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]model.Publication, error) {
	query := publicationWithOwner + `
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, userID, limit, offset)
}

func (r *publicationRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM publications WHERE user_id = $1`, userID); err != nil {
		return 0, fmt.Errorf("count publications: %w", err)
	}
	return total, nil
}

// ListByOwners backs the feed: publications by any of ownerIDs, newest first.
func (r *publicationRepository) ListByOwners(ctx context.Context, ownerIDs []int64, offset, limit int) ([]model.Publication, error) {
	if len(ownerIDs) == 0 {
		return []model.Publication{}, nil
	}
	query := publicationWithOwner + `
		WHERE p.user_id = ANY($1)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, pq.Array(ownerIDs), limit, offset)
}

func (r *publicationRepository) CountByOwners(ctx context.Context, ownerIDs []int64) (int, error) {
	if len(ownerIDs) == 0 {
		return 0, nil
	}
	var total int
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM publications WHERE user_id = ANY($1)`, pq.Array(ownerIDs))
	if err != nil {
		return 0, fmt.Errorf("count feed publications: %w", err)
	}
	return total, nil
}

func (r *publicationRepository) UpdateFile(ctx context.Context, id int64, file string) (*model.Publication, error) {
	query := `
		UPDATE publications SET file = $1 WHERE id = $2
		RETURNING id, user_id, text, file, reply_count, created_at
	`
	var publication model.Publication
	err := r.db.GetContext(ctx, &publication, query, file, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPublicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update publication file: %w", err)
	}
	return &publication, nil
}

func (r *publicationRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.Publication, error) {
	var rows []publicationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list publications: %w", err)
	}

	publications := make([]model.Publication, len(rows))
	for i, row := range rows {
		publications[i] = row.toModel()
	}
	return publications, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/karen-colon/b3-backend-social-net/internal/model"
)

type replyRepository struct {
	db *sqlx.DB
}

func NewReplyRepository(db *sqlx.DB) ReplyRepository {
	return &replyRepository{db: db}
}

// Create inserts a reply and increments the publication's reply_count atomically.
// If the publication vanished in between, the foreign key rejects the insert.
func (r *replyRepository) Create(ctx context.Context, publicationID, userID int64, text string) (*model.Reply, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO replies (publication_id, user_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, publication_id, user_id, text, created_at
	`
	var reply model.Reply
	if err := tx.GetContext(ctx, &reply, query, publicationID, userID, text); err != nil {
		if isForeignKeyViolation(err) {
			return nil, model.ErrPublicationNotFound
		}
		return nil, fmt.Errorf("insert reply: %w", err)
	}

	result, err := tx.ExecContext(ctx, `UPDATE publications SET reply_count = reply_count + 1 WHERE id = $1`, publicationID)
	if err != nil {
		return nil, fmt.Errorf("increment reply count: %w", err)
	}
	if rows, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	} else if rows == 0 {
		return nil, model.ErrPublicationNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &reply, nil
}

type replyRow struct {
	ID             int64     `db:"id"`
	PublicationID  int64     `db:"publication_id"`
	UserID         int64     `db:"user_id"`
	Text           string    `db:"text"`
	CreatedAt      time.Time `db:"created_at"`
	AuthorName     string    `db:"author_name"`
	AuthorLastName string    `db:"author_last_name"`
	AuthorNick     string    `db:"author_nick"`
	AuthorImage    string    `db:"author_image"`
}

// ListByPublication returns replies newest first with the author populated.
func (r *replyRepository) ListByPublication(ctx context.Context, publicationID int64, offset, limit int) ([]model.Reply, error) {
	query := `
		SELECT r.id, r.publication_id, r.user_id, r.text, r.created_at,
		       u.name AS author_name, u.last_name AS author_last_name,
		       u.nick AS author_nick, u.image AS author_image
		FROM replies r
		JOIN users u ON u.id = r.user_id
		WHERE r.publication_id = $1
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $2 OFFSET $3
	`
	var rows []replyRow
	if err := r.db.SelectContext(ctx, &rows, query, publicationID, limit, offset); err != nil {
		return nil, fmt.Errorf("get replies: %w", err)
	}

	replies := make([]model.Reply, len(rows))
	for i, row := range rows {
		replies[i] = model.Reply{
			ID:            row.ID,
			PublicationID: row.PublicationID,
			UserID:        row.UserID,
			Text:          row.Text,
			CreatedAt:     row.CreatedAt,
			Author: &model.UserSummary{
				ID:       row.UserID,
				Name:     row.AuthorName,
				LastName: row.AuthorLastName,
				Nick:     row.AuthorNick,
				Image:    row.AuthorImage,
			},
		}
	}
	return replies, nil
}

func (r *replyRepository) CountByPublication(ctx context.Context, publicationID int64) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM replies WHERE publication_id = $1`, publicationID); err != nil {
		return 0, fmt.Errorf("count replies: %w", err)
	}
	return total, nil
}

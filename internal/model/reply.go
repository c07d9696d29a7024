package model

import "time"

// Reply is a text response bound to a publication.
type Reply struct {
	ID            int64     `db:"id" json:"id"`
	PublicationID int64     `db:"publication_id" json:"publication_id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	Text          string    `db:"text" json:"text"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`

	Author *UserSummary `json:"user,omitempty"` // Joined field
}

type AddReplyRequest struct {
	PublicationID int64  `json:"publication_id" validate:"required,gt=0"`
	Text          string `json:"text" validate:"required"`
}

type ReplyList struct {
	Replies []Reply
	Total   int
}

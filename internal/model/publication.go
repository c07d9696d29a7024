package model

import (
	"errors"
	"time"
)

// Publication is a short text post with an optional media reference.
type Publication struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	Text       string    `db:"text" json:"text"`
	File       *string   `db:"file" json:"file"`
	ReplyCount int       `db:"reply_count" json:"reply_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`

	// Joined field (not in publications table)
	Owner *UserSummary `json:"user,omitempty"`
}

// CreatePublicationRequest is the request body for creating a publication.
type CreatePublicationRequest struct {
	Text string `json:"text" validate:"required"`
}

// PublicationList is one page of publications plus the unpaged total.
type PublicationList struct {
	Publications []Publication
	Total        int
}

const MaxPublicationTextLength = 1000

var (
	ErrPublicationNotFound = errors.New("publication not found")
	ErrTextRequired        = errors.New("text is required")
	ErrTextTooLong         = errors.New("text exceeds 1000 characters")
	ErrNoFollowing         = errors.New("you are not following anyone yet, follow someone to see a feed")
	ErrNoPublications      = errors.New("no publications to show")
	ErrMediaNotFound       = errors.New("media not found")
)

package model

import (
	"errors"
	"time"
)

// Claims are the fields carried inside a signed session token. Times are Unix seconds.
type Claims struct {
	UserID    int64  `json:"userId"`
	Role      string `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Expired reports whether the token is no longer valid at now.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt <= now.Unix()
}

// Error codes for auth failures
const (
	CodeMissingAuth  = "MISSING_AUTH"
	CodeInvalidToken = "INVALID_TOKEN"
	CodeExpiredToken = "EXPIRED_TOKEN"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrMissingSecret    = errors.New("token signing secret is not configured")
	ErrNotAuthenticated = errors.New("authentication required")
)

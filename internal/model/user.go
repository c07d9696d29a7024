package model

import (
	"errors"
	"time"
)

const (
	RoleUser  = "role_user"
	RoleAdmin = "role_admin"
)

// User represents a user in the system
type User struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Nick      string    `db:"nick" json:"nick"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password" json:"-"` // bcrypt hash, never serialized
	Bio       *string   `db:"bio" json:"bio"`
	Role      string    `db:"role" json:"role"`
	Image     string    `db:"image" json:"image"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PublicUser is the projection other users may see: no password, role or email.
type PublicUser struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Nick      string    `db:"nick" json:"nick"`
	Bio       *string   `db:"bio" json:"bio"`
	Image     string    `db:"image" json:"image"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// UserSummary is the owner/author subset embedded in publications, replies and follow listings.
type UserSummary struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	LastName string `db:"last_name" json:"last_name"`
	Nick     string `db:"nick" json:"nick"`
	Image    string `db:"image" json:"image"`
}

// SessionUser is returned next to the token on login.
type SessionUser struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Email    string `json:"email"`
	Nick     string `json:"nick"`
	Image    string `json:"image"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		LastName:  u.LastName,
		Nick:      u.Nick,
		Bio:       u.Bio,
		Image:     u.Image,
		CreatedAt: u.CreatedAt,
	}
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Name:     u.Name,
		LastName: u.LastName,
		Nick:     u.Nick,
		Image:    u.Image,
	}
}

func (u *User) Session() SessionUser {
	return SessionUser{
		ID:       u.ID,
		Name:     u.Name,
		LastName: u.LastName,
		Email:    u.Email,
		Nick:     u.Nick,
		Image:    u.Image,
	}
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Name     string  `json:"name" validate:"required,notblank"`
	LastName string  `json:"last_name" validate:"required,notblank"`
	Nick     string  `json:"nick" validate:"required,notblank,max=50"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required"`
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest is a partial update. Token-derived fields (role, iat, exp) have no
// place here, so a client cannot smuggle them into the stored record.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitnil,notblank"`
	LastName *string `json:"last_name" validate:"omitnil,notblank"`
	Nick     *string `json:"nick" validate:"omitnil,notblank,max=50"`
	Email    *string `json:"email" validate:"omitnil,email"`
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
	Image    *string `json:"image" validate:"omitnil,notblank"`
	Password *string `json:"password" validate:"omitnil,min=1"`
}

// UserList is one page of public users.
type UserList struct {
	Users []PublicUser
	Total int
}

// Counters are the follow and publication totals for one user.
type Counters struct {
	UserID       int64 `json:"user_id"`
	Following    int   `json:"following"`
	Followers    int   `json:"followers"`
	Publications int   `json:"publications"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned on registration when the email or nick is taken
	ErrUserExists = errors.New("a user with this email or nick already exists")

	// ErrIdentityTaken is returned on update when the new email or nick belongs to someone else
	ErrIdentityTaken = errors.New("email or nick already in use")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrImageNotFound = errors.New("image not found")
)

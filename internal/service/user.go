package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/karen-colon/b3-backend-social-net/internal/model"
	"github.com/karen-colon/b3-backend-social-net/internal/repository"
)

// UserService handles business logic for user operations
type UserService struct {
	repo          repository.UserRepository
	defaultAvatar string
}

func NewUserService(repo repository.UserRepository, defaultAvatar string) *UserService {
	return &UserService{
		repo:          repo,
		defaultAvatar: defaultAvatar,
	}
}

// Register creates a new account. Email is stored lowercased; name fields are trimmed.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	email := normalizeEmail(req.Email)
	nick := strings.TrimSpace(req.Nick)

	exists, err := s.repo.ExistsByEmailOrNick(ctx, email, nick)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, model.ErrUserExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:     strings.TrimSpace(req.Name),
		LastName: strings.TrimSpace(req.LastName),
		Nick:     nick,
		Email:    email,
		Password: string(hashedPassword),
		Bio:      req.Bio,
		Role:     model.RoleUser,
		Image:    s.defaultAvatar,
	}

	// The unique indexes are authoritative; Create maps a lost race to ErrUserExists.
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login returns the user when the password matches. Unknown email yields
// ErrUserNotFound, a wrong password ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// List pages through public user projections ordered by id.
func (s *UserService) List(ctx context.Context, page model.Page) (*model.UserList, error) {
	users, err := s.repo.List(ctx, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &model.UserList{Users: users, Total: total}, nil
}

// Update applies a partial update to the caller's own record.
func (s *UserService) Update(ctx context.Context, userID int64, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Nick != nil {
		user.Nick = strings.TrimSpace(*req.Nick)
	}
	if req.Email != nil {
		user.Email = normalizeEmail(*req.Email)
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.Image != nil {
		user.Image = strings.TrimSpace(*req.Image)
	}

	if req.Email != nil || req.Nick != nil {
		taken, err := s.repo.IdentityTakenByOther(ctx, userID, user.Email, user.Nick)
		if err != nil {
			return nil, fmt.Errorf("failed to check identity collision: %w", err)
		}
		if taken {
			return nil, model.ErrIdentityTaken
		}
	}

	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hashed)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID int64, image string) (*model.User, error) {
	return s.repo.UpdateImage(ctx, userID, image)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

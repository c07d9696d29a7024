package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/karen-colon/b3-backend-social-net/internal/model"
)

// TokenService issues and decodes HS256 session tokens. Verify does not check
// expiry; the auth middleware compares exp against the clock itself.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, model.ErrMissingSecret
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs {userId, role, iat, exp} for the user.
func (s *TokenService) Issue(user *model.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"userId": user.ID,
		"role":   user.Role,
		"iat":    now.Unix(),
		"exp":    now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and shape of the token and returns its claims.
func (s *TokenService) Verify(tokenString string) (*model.Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidToken, err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, model.ErrInvalidToken
	}

	userID, err := numericClaim(mapClaims, "userId")
	if err != nil {
		return nil, err
	}
	iat, err := numericClaim(mapClaims, "iat")
	if err != nil {
		return nil, err
	}
	exp, err := numericClaim(mapClaims, "exp")
	if err != nil {
		return nil, err
	}
	role, _ := mapClaims["role"].(string)

	return &model.Claims{
		UserID:    userID,
		Role:      role,
		IssuedAt:  iat,
		ExpiresAt: exp,
	}, nil
}

func numericClaim(claims jwt.MapClaims, key string) (int64, error) {
	// encoding/json decodes JSON numbers into float64
	v, ok := claims[key].(float64)
	if !ok {
		return 0, fmt.Errorf("%w: missing %s claim", model.ErrInvalidToken, key)
	}
	return int64(v), nil
}

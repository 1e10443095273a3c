// Package auth handles account registration, login and JWT verification.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/storage/postgres"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the persistence surface auth needs; *postgres.Store satisfies
// it.
type UserStore interface {
	CreateUser(ctx context.Context, email, hashedPassword, fullName string) (*postgres.User, error)
	UserByEmail(ctx context.Context, email string) (*postgres.User, error)
	UserByID(ctx context.Context, id int) (*postgres.User, error)
	DeleteUser(ctx context.Context, id int) error
}

// TokenResponse is returned from register and login; registration logs the
// user straight in.
type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        UserProfile `json:"user"`
}

// UserProfile is the public view of an account.
type UserProfile struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Service issues and verifies access tokens.
type Service struct {
	store UserStore
	cfg   *config.AuthConfig
}

// NewService creates the auth service.
func NewService(store UserStore, cfg *config.AuthConfig) *Service {
	return &Service{store: store, cfg: cfg}
}

// validatePassword enforces length bounds; the upper bound is bcrypt's own
// input limit.
func validatePassword(password string) error {
	if len(password) < 6 {
		return common.NewValidationError("password must be at least 6 characters long")
	}
	if len(password) > 72 {
		return common.NewValidationError("password must be less than 72 characters long")
	}
	return nil
}

// Register creates an account and returns a token for immediate use.
func (s *Service) Register(ctx context.Context, email, password, fullName string) (*TokenResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, common.NewValidationError("invalid email address")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, email, string(hash), strings.TrimSpace(fullName))
	if err != nil {
		return nil, err
	}
	return s.tokenResponse(user)
}

// Login verifies credentials and returns a fresh token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		return nil, common.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}
	return s.tokenResponse(user)
}

// VerifyToken validates a bearer token and loads its account.
func (s *Service) VerifyToken(ctx context.Context, tokenString string) (*postgres.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, common.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, common.ErrUnauthorized
	}
	email, _ := claims["sub"].(string)
	if email == "" {
		return nil, common.ErrUnauthorized
	}

	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		return nil, common.ErrUnauthorized
	}
	return user, nil
}

// DeleteAccount removes the account and everything hanging off it.
func (s *Service) DeleteAccount(ctx context.Context, userID int) error {
	return s.store.DeleteUser(ctx, userID)
}

func (s *Service) tokenResponse(user *postgres.User) (*TokenResponse, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.Email,
		"iat": now.Unix(),
		"exp": now.Add(s.cfg.TokenExpiry).Unix(),
	})

	signed, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &TokenResponse{
		AccessToken: signed,
		TokenType:   "bearer",
		User: UserProfile{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
		},
	}, nil
}

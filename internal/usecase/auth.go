package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
)

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// Profile is the authenticated user with their memberships.
type Profile struct {
	User        *model.User        `json:"user"`
	Memberships []model.AgencyUser `json:"memberships"`
}

// HashPassword hashes a plain password with bcrypt.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", apperrors.NewValidation("password", "required", "This field is required.")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Login checks username and password and issues an access token. Unknown
// users and wrong passwords fail the same way.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	log := logger.FromContext(ctx)
	if s.tokens == nil {
		return nil, fmt.Errorf("%w: token issuer is not configured", apperrors.ErrUnauthorized)
	}

	user, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Info("Login for unknown user", zap.String("username", username))
			return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user is inactive", apperrors.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Info("Login with wrong password", zap.Int64("user_id", user.ID))
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Username, user.IsStaff)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Me returns the authenticated user and their agency memberships.
func (s *Service) Me(ctx context.Context) (*Profile, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindUserByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d no longer exists", apperrors.ErrUnauthorized, p.UserID)
		}
		return nil, err
	}
	memberships, err := s.repo.ListMemberships(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Memberships: memberships}, nil
}

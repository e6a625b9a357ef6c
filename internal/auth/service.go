package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/swyft-bank/swyft/internal/config"
	"github.com/swyft-bank/swyft/internal/identity"
)

// ErrWrongPin occurs when a presented PIN does not match the stored hash.
var ErrWrongPin = errors.New("wrong PIN")

// Service performs credential checks and issues access tokens.
type Service struct {
	cfg   config.Config
	users identity.Repository
}

// NewService constructs an auth service over the user repository.
func NewService(cfg config.Config, users identity.Repository) *Service {
	return &Service{cfg: cfg, users: users}
}

// VerifyPin compares the presented PIN against the stored hash of the given
// user. It never mutates state and applies no lockout on repeated failures.
func (s *Service) VerifyPin(ctx context.Context, userID int64, presented string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword(user.PINHash, []byte(presented)) != nil {
		return ErrWrongPin
	}
	return nil
}

// Token is an issued access token.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Login validates email and PIN and issues a signed access token.
func (s *Service) Login(ctx context.Context, email, pin string) (identity.User, Token, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return identity.User{}, Token{}, err
	}
	if bcrypt.CompareHashAndPassword(user.PINHash, []byte(pin)) != nil {
		return identity.User{}, Token{}, ErrWrongPin
	}

	now := time.Now()
	exp := now.Add(s.cfg.AccessTokenTTL)
	claims := map[string]any{
		"sub":   user.ID,
		"email": user.Email,
		"name":  user.FullName(),
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	signed, err := SignHS256(claims, []byte(s.cfg.JWTSecret))
	if err != nil {
		return identity.User{}, Token{}, err
	}
	return user, Token{AccessToken: signed, ExpiresIn: int64(time.Until(exp).Seconds())}, nil
}

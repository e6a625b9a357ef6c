package identity

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const pinLength = 4

// ErrInvalidPIN occurs when a registration PIN is not exactly four digits.
var ErrInvalidPIN = errors.New("PIN must be exactly 4 digits")

// Service manages user registration.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Registration captures the data required to register a user.
type Registration struct {
	FirstName string
	LastName  string
	Email     string
	PIN       string
}

// Register creates a new user with a bcrypt-hashed transaction PIN.
func (s *Service) Register(ctx context.Context, reg Registration) (User, error) {
	if !validPIN(reg.PIN) {
		return User{}, ErrInvalidPIN
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.PIN), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	return s.repo.Create(ctx, User{
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Email:     reg.Email,
		PINHash:   hash,
	})
}

// Get fetches a user by identity.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.FindByID(ctx, id)
}

func validPIN(pin string) bool {
	if len(pin) != pinLength {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/swyft-bank/swyft/internal/config"
	"github.com/swyft-bank/swyft/internal/identity"
)

func registerUser(t *testing.T, repo identity.Repository, email, pin string) identity.User {
	t.Helper()
	user, err := identity.NewService(repo).Register(context.Background(), identity.Registration{
		FirstName: "Ada",
		LastName:  "Obi",
		Email:     email,
		PIN:       pin,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return user
}

func testConfig() config.Config {
	return config.Config{JWTSecret: "test-secret", AccessTokenTTL: time.Minute}
}

func TestVerifyPin(t *testing.T) {
	repo := identity.NewMemoryRepository()
	user := registerUser(t, repo, "ada@example.com", "1234")
	svc := NewService(testConfig(), repo)
	ctx := context.Background()

	if err := svc.VerifyPin(ctx, user.ID, "1234"); err != nil {
		t.Fatalf("verify correct pin: %v", err)
	}
	if err := svc.VerifyPin(ctx, user.ID, "4321"); err != ErrWrongPin {
		t.Fatalf("expected ErrWrongPin, got %v", err)
	}
	if err := svc.VerifyPin(ctx, 99, "1234"); err != identity.ErrUserNotFound {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	repo := identity.NewMemoryRepository()
	registerUser(t, repo, "ada@example.com", "1234")
	cfg := testConfig()
	svc := NewService(cfg, repo)
	ctx := context.Background()

	user, token, err := svc.Login(ctx, "ada@example.com", "1234")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := ParseAndVerifyHS256(token.AccessToken, []byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	sub, _ := claims["sub"].(float64)
	if int64(sub) != user.ID {
		t.Fatalf("expected sub %d, got %v", user.ID, claims["sub"])
	}

	if _, _, err := svc.Login(ctx, "ada@example.com", "0000"); err != ErrWrongPin {
		t.Fatalf("expected ErrWrongPin, got %v", err)
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	signed, err := SignHS256(map[string]any{"sub": 1}, []byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAndVerifyHS256(signed, []byte("other-secret")); err == nil {
		t.Fatalf("expected signature mismatch")
	}
	if _, err := ParseAndVerifyHS256(signed+"x", []byte("secret")); err == nil {
		t.Fatalf("expected invalid token")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	signed, err := SignHS256(map[string]any{"sub": 1, "exp": time.Now().Add(-time.Minute).Unix()}, []byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAndVerifyHS256(signed, []byte("secret")); err == nil {
		t.Fatalf("expected expired token error")
	}
}

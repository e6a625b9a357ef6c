package identity

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestRegister(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, Registration{FirstName: "Ada", LastName: "Obi", Email: "ada@example.com", PIN: "1234"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if user.FullName() != "Ada Obi" {
		t.Fatalf("unexpected full name %q", user.FullName())
	}
	if err := bcrypt.CompareHashAndPassword(user.PINHash, []byte("1234")); err != nil {
		t.Fatalf("stored hash does not match PIN: %v", err)
	}

	if _, err := svc.Register(ctx, Registration{FirstName: "Ada", LastName: "Obi", Email: "ada@example.com", PIN: "1234"}); err != ErrUserExists {
		t.Fatalf("expected duplicate user error, got %v", err)
	}
}

func TestRegisterRejectsBadPIN(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	for _, pin := range []string{"", "123", "12345", "12a4"} {
		if _, err := svc.Register(ctx, Registration{Email: "x@example.com", PIN: pin}); err != ErrInvalidPIN {
			t.Fatalf("pin %q: expected ErrInvalidPIN, got %v", pin, err)
		}
	}
}

func TestSessionFromUser(t *testing.T) {
	user := User{ID: 7, FirstName: "Ada", LastName: "Obi"}
	sess := user.Session()
	if sess.UserID != 7 || sess.FullName != "Ada Obi" {
		t.Fatalf("unexpected session %+v", sess)
	}
}

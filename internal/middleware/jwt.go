package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/swyft-bank/swyft/internal/auth"
	"github.com/swyft-bank/swyft/internal/config"
	"github.com/swyft-bank/swyft/internal/identity"
)

const (
	userIDKey   = "user_id"
	userNameKey = "user_name"
)

// JWTAuth validates bearer tokens and attaches the acting user's session to
// the request. Core operations receive the session explicitly; nothing reads
// a global current user.
func JWTAuth(cfg config.Config, users identity.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])
		claims, err := auth.ParseAndVerifyHS256(tokenStr, []byte(cfg.JWTSecret))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}
		sub, ok := claims["sub"].(float64)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "invalid token subject")
		}

		user, err := users.FindByID(c.UserContext(), int64(sub))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "user not found")
		}

		c.Locals(userIDKey, user.ID)
		c.Locals(userNameKey, user.FullName())
		return c.Next()
	}
}

// SessionFrom extracts the session attached by JWTAuth.
func SessionFrom(c *fiber.Ctx) (identity.Session, bool) {
	userID, ok := c.Locals(userIDKey).(int64)
	if !ok {
		return identity.Session{}, false
	}
	name, _ := c.Locals(userNameKey).(string)
	return identity.Session{UserID: userID, FullName: name}, true
}

package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/swyft-bank/swyft/internal/logging"
)

func setupTestApp(t *testing.T) (*fiber.App, *atomic.Int64, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))

	var applied atomic.Int64
	app.Post("/deposit", func(c *fiber.Ctx) error {
		applied.Add(1)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"applied": applied.Load()})
	})

	cleanup := func() {
		cache.Close()
		mr.Close()
	}
	return app, &applied, cleanup
}

func postDeposit(t *testing.T, app *fiber.App, key string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/deposit", strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode, string(body)
}

func TestIdempotencyAppliesOnce(t *testing.T) {
	app, applied, cleanup := setupTestApp(t)
	defer cleanup()

	status, body := postDeposit(t, app, "dep-1")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	replayStatus, replayBody := postDeposit(t, app, "dep-1")
	if replayStatus != fiber.StatusOK {
		t.Fatalf("expected replayed 200, got %d", replayStatus)
	}
	if replayBody != body {
		t.Fatalf("expected replayed body %s, got %s", body, replayBody)
	}
	if got := applied.Load(); got != 1 {
		t.Fatalf("handler must run once for a repeated key, ran %d times", got)
	}
}

func TestIdempotencyWithoutKeyPassesThrough(t *testing.T) {
	app, applied, cleanup := setupTestApp(t)
	defer cleanup()

	postDeposit(t, app, "")
	postDeposit(t, app, "")
	if got := applied.Load(); got != 2 {
		t.Fatalf("requests without a key must each apply, got %d", got)
	}
}

func TestIdempotencyDistinctKeysApplySeparately(t *testing.T) {
	app, applied, cleanup := setupTestApp(t)
	defer cleanup()

	postDeposit(t, app, "dep-1")
	postDeposit(t, app, "dep-2")
	if got := applied.Load(); got != 2 {
		t.Fatalf("distinct keys must both apply, got %d", got)
	}
}

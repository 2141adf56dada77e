package auth

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(New(cfg))
	app.Get("/", func(c *fiber.Ctx) error {
		if name, ok := c.Locals(LocalsKey).(string); ok {
			return c.SendString(name)
		}
		return c.SendString("admin")
	})
	return app
}

func do(t *testing.T, app *fiber.App, key string) int {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	if key != "" {
		req.Header.Set(DefaultHeader, key)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuth(t *testing.T) {
	app := newApp(Config{
		ApiKey: "admin-key",
		Resolve: func(c *fiber.Ctx, key string) (any, bool, error) {
			switch key {
			case "alice-key":
				return "alice", true, nil
			case "broken":
				return nil, false, errors.New("db down")
			}
			return nil, false, nil
		},
	})

	tests := []struct {
		name string
		key  string
		want int
	}{
		{"Missing", "", fiber.StatusUnauthorized},
		{"Admin", "admin-key", fiber.StatusOK},
		{"User", "alice-key", fiber.StatusOK},
		{"Unknown", "nope", fiber.StatusUnauthorized},
		{"Resolver Error", "broken", fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, do(t, app, tt.key))
		})
	}
}

func TestAuth_NoAdminKey(t *testing.T) {
	app := newApp(Config{})
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, "anything"))
}

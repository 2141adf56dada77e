package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// DefaultHeader is the request header carrying the API key.
const DefaultHeader = "X-Api-Key"

// LocalsKey is where the resolved principal is stored.
const LocalsKey = "user"

// Config configures the API key middleware.
type Config struct {
	// ApiKey is the admin key. A match passes without a principal.
	ApiKey string
	// Header overrides DefaultHeader.
	Header string
	// Resolve maps a key to a principal. found=false rejects the request.
	Resolve func(c *fiber.Ctx, key string) (principal any, found bool, err error)
}

// New returns a middleware that rejects requests without a known API key.
func New(cfg Config) fiber.Handler {
	header := cfg.Header
	if header == "" {
		header = DefaultHeader
	}

	return func(c *fiber.Ctx) error {
		key := c.Get(header)
		if key == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing API key"})
		}

		if cfg.ApiKey != "" && subtle.ConstantTimeCompare([]byte(key), []byte(cfg.ApiKey)) == 1 {
			return c.Next()
		}

		if cfg.Resolve != nil {
			principal, found, err := cfg.Resolve(c, key)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to resolve API key"})
			}
			if found {
				c.Locals(LocalsKey, principal)
				return c.Next()
			}
		}

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid API key"})
	}
}

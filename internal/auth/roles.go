package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/helpdesk/internal/domain"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

// RequireIdentity rejects requests that reached the handler without a session.
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := IdentityFromContext(c); !ok {
			return apperrors.NewUnauthorized("login required")
		}
		return c.Next()
	}
}

// MustIdentity returns the caller or an Unauthenticated error.
func MustIdentity(c *fiber.Ctx) (domain.Identity, error) {
	identity, ok := IdentityFromContext(c)
	if !ok || identity == nil {
		return domain.Identity{}, apperrors.NewUnauthorized("login required")
	}
	return *identity, nil
}

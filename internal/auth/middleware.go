package auth

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/opsdesk/helpdesk/internal/domain"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

const identityKey = "auth_identity"

// SessionRevoker remembers logged-out session tokens until they expire.
type SessionRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthMiddleware validates session tokens and attaches the caller's identity.
type AuthMiddleware struct {
	tokens     *TokenManager
	revoked    SessionRevoker
	cookieName string
	logger     *zap.Logger
}

// NewAuthMiddleware constructs middleware. revoked may be nil, in which case
// logout only clears the client cookie.
func NewAuthMiddleware(tokens *TokenManager, revoked SessionRevoker, cookieName string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, revoked: revoked, cookieName: cookieName, logger: logger}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	identity, err := m.authenticate(c)
	if err != nil {
		return err
	}
	c.Locals(identityKey, identity)
	return c.Next()
}

// Optional attaches an identity when a valid session is present and never rejects.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	if identity, err := m.authenticate(c); err == nil {
		c.Locals(identityKey, identity)
	}
	return c.Next()
}

func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*domain.Identity, error) {
	raw, err := m.tokenFromRequest(c)
	if err != nil {
		return nil, err
	}

	identity, err := m.tokens.ParseToken(raw)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid session")
	}

	if m.revoked != nil {
		revoked, err := m.revoked.IsRevoked(c.UserContext(), identity.TokenID)
		if err != nil {
			m.logger.Error("session revocation lookup failed", zap.Error(err))
			return nil, apperrors.NewInternalError(err)
		}
		if revoked {
			return nil, apperrors.NewUnauthorized("session ended")
		}
	}
	return &identity, nil
}

func (m *AuthMiddleware) tokenFromRequest(c *fiber.Ctx) (string, error) {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", apperrors.NewUnauthorized("invalid authorization header")
		}
		return parts[1], nil
	}
	if cookie := c.Cookies(m.cookieName); cookie != "" {
		return cookie, nil
	}
	return "", apperrors.NewUnauthorized("login required")
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok
}

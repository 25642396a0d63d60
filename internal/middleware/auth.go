package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/storyboarder/ai-service/internal/auth"
	"github.com/storyboarder/ai-service/pkg/response"
)

const (
	localCaller = "caller"
	localClaims = "claims"
)

// AuthMiddleware handles JWT authentication of calling services
type AuthMiddleware struct {
	verifier  auth.TokenVerifier
	jwtSecret string // HMAC fallback
	issuer    string
}

// NewAuthMiddleware accepts JWKS-verified tokens and, when jwtSecret is set,
// HMAC service tokens. Either may be absent.
func NewAuthMiddleware(verifier auth.TokenVerifier, jwtSecret, issuer string) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:  verifier,
		jwtSecret: jwtSecret,
		issuer:    issuer,
	}
}

// Authenticate validates JWT token from Authorization header
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return response.Unauthorized(c, "Invalid authorization header format")
		}

		tokenString := parts[1]

		if m.verifier != nil {
			claims, err := m.verifier.Validate(tokenString)
			if err == nil {
				return m.accept(c, claims)
			}
			if m.jwtSecret == "" {
				return response.Unauthorized(c, "Invalid or expired token")
			}
		}

		if m.jwtSecret != "" {
			claims, err := auth.ValidateServiceToken(tokenString, m.jwtSecret, m.issuer)
			if err != nil {
				return response.Unauthorized(c, "Invalid or expired token")
			}
			return m.accept(c, claims)
		}

		return response.Unauthorized(c, "Authentication not configured")
	}
}

func (m *AuthMiddleware) accept(c *fiber.Ctx, claims *auth.Claims) error {
	c.Locals(localCaller, claims.Caller())
	c.Locals(localClaims, claims)
	return c.Next()
}

// GetCaller returns the authenticated caller, or "" on open routes.
func GetCaller(c *fiber.Ctx) string {
	if caller, ok := c.Locals(localCaller).(string); ok {
		return caller
	}
	return ""
}

package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const identityKey = "identity"

// JWTMiddleware validates bearer tokens and stores the caller's Identity in
// locals.
func JWTMiddleware(secret string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get("Authorization"))
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		parsed, err := parseMiddlewareClaimsFn(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
			return secretBytes, nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		claims, ok := parsed.Claims.(*Claims)
		if !ok || !parsed.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "token invalid")
		}

		c.Locals(identityKey, Identity{AdminID: claims.AdminID, Role: claims.Role})
		return c.Next()
	}
}

var parseMiddlewareClaimsFn = jwt.ParseWithClaims

// IdentityFrom returns the identity set by JWTMiddleware, or the zero value.
func IdentityFrom(c *fiber.Ctx) Identity {
	id, _ := c.Locals(identityKey).(Identity)
	return id
}

// RequireRole lets the request through when the caller has role. Admins pass
// every check.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := IdentityFrom(c)
		if id.Role != role && !id.IsAdmin() {
			return fiber.NewError(fiber.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/apranova/bootcamp-api/internal/utils"
)

// Locals keys populated by the JWT middleware.
const (
	LocalsUserID   = "user_id"
	LocalsUserRole = "user_role"
)

// JWTProtected returns a middleware that validates JWT bearer tokens issued
// by the identity provider and exposes the user id and role to handlers.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "bearer "
		if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		if userID, ok := subjectID(claims); ok {
			c.Locals(LocalsUserID, userID)
		}
		if role := claimRole(claims); role != "" {
			c.Locals(LocalsUserRole, role)
		}

		return c.Next()
	}
}

// UserID returns the authenticated user id bound to the request, if any.
func UserID(c *fiber.Ctx) (uint, bool) {
	if value := c.Locals(LocalsUserID); value != nil {
		if id, ok := value.(uint); ok {
			return id, true
		}
	}
	return 0, false
}

// UserRole returns the authenticated user's role, or "".
func UserRole(c *fiber.Ctx) string {
	if value := c.Locals(LocalsUserRole); value != nil {
		if role, ok := value.(string); ok {
			return role
		}
	}
	return ""
}

func subjectID(claims jwt.MapClaims) (uint, bool) {
	for _, key := range []string{"sub", "user_id", "id"} {
		value, ok := claims[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case float64:
			if v >= 0 {
				return uint(v), true
			}
		case string:
			if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
				return uint(parsed), true
			}
		}
	}
	return 0, false
}

func claimRole(claims jwt.MapClaims) string {
	value, ok := claims["role"]
	if !ok {
		return ""
	}
	role, _ := value.(string)
	return strings.ToLower(strings.TrimSpace(role))
}

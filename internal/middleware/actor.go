package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// ActorContext reads the Bearer token, when present, and exposes the actor
// claims through request locals so audit entries can attribute actions.
//
// Requests without a token (or with an invalid one) pass through untouched:
// attribution is best effort, authorization is not this middleware's job.
func ActorContext(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return c.Next()
		}

		authorization := c.Get("Authorization")
		const bearer = "Bearer "
		if len(authorization) <= len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return c.Next()
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return c.Next()
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Next()
		}

		if id := claimString(claims, "sub", "user_id", "id"); id != "" {
			c.Locals("user_id", id)
		}
		if email := claimString(claims, "email"); email != "" {
			c.Locals("user_email", email)
		}
		if name := claimString(claims, "name"); name != "" {
			c.Locals("user_name", name)
		}
		if lastname := claimString(claims, "lastname", "last_name"); lastname != "" {
			c.Locals("user_lastname", lastname)
		}
		if roles := claimStrings(claims, "roles"); len(roles) > 0 {
			c.Locals("user_roles", roles)
		}

		return c.Next()
	}
}

func claimString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		value, ok := claims[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}

func claimStrings(claims jwt.MapClaims, key string) []string {
	raw, ok := claims[key]
	if !ok {
		return nil
	}
	values, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	roles := make([]string, 0, len(values))
	for _, value := range values {
		if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
			roles = append(roles, strings.TrimSpace(s))
		}
	}
	return roles
}

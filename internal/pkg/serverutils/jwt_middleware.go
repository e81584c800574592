package serverutils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const UserIdLocal = "user_id"

// OptionalJwtMiddleware attaches the user_id claim of a valid bearer token
// to the request. Requests without a token pass through anonymously; a
// present but invalid token is rejected.
func OptionalJwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if authHeader == "" {
			return ctx.Next()
		}
		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenStr == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization header")
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid claims")
		}
		if userId, ok := claims["user_id"].(string); ok && userId != "" {
			ctx.Locals(UserIdLocal, userId)
		}
		return ctx.Next()
	}
}

// UserIdFromCtx returns the authenticated user id, or nil for anonymous
// requests.
func UserIdFromCtx(ctx *fiber.Ctx) *string {
	if userId, ok := ctx.Locals(UserIdLocal).(string); ok && userId != "" {
		return &userId
	}
	return nil
}

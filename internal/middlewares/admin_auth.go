package middlewares

import (
	"strings"

	"github.com/datalume/partners-portal/internal/auth"
	"github.com/gofiber/fiber/v2"
)

// RequireAdmin guards administrator routes. The bearer token is re-validated
// against the session store on every request; no cached admin flag is ever
// trusted.
func RequireAdmin(sessions *auth.SessionService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		token := bearerToken(ctx.Get(fiber.HeaderAuthorization))
		if token == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Não autorizado"})
		}

		_, client, err := sessions.Validate(ctx.Context(), token)
		if err != nil || !client.IsAdmin {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Não autorizado"})
		}

		ctx.Locals("admin", client)
		return ctx.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

package middlewares

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Erro interno do servidor."
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	if code == fiber.StatusInternalServerError {
		slog.Error("Unhandled error", "path", ctx.Path(), "error", err)
		message = "Erro interno do servidor."
	}
	return ctx.Status(code).JSON(fiber.Map{"error": message})
}

package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// clientIP prefers proxy headers over the socket address, matching what the
// reverse proxy in front of the portal forwards.
func clientIP(ctx *fiber.Ctx) string {
	if xff := ctx.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if ip := ctx.Get("X-Real-Ip"); ip != "" {
		return ip
	}
	if ip := ctx.IP(); ip != "" {
		return ip
	}
	return "unknown"
}

func userAgent(ctx *fiber.Ctx) string {
	return ctx.Get(fiber.HeaderUserAgent)
}

package api

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/datalume/partners-portal/internal/accesslog"
	"github.com/datalume/partners-portal/internal/auth"
	"github.com/datalume/partners-portal/internal/clients"
	"github.com/datalume/partners-portal/model"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler serves the client-facing authentication endpoints.
type AuthHandler struct {
	loginService     *auth.LoginService
	sessionService   *auth.SessionService
	accessLogService *accesslog.AccessLogService
	clientService    *clients.ClientService
}

func (h *AuthHandler) PostLogin(ctx *fiber.Ctx) error {
	var req LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": MsgMissingCredentials})
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": MsgMissingCredentials})
	}

	token, client, err := h.loginService.Login(ctx.Context(), req.Username, req.Password, clientIP(ctx), userAgent(ctx))
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": MsgWrongCredentials})
	case errors.Is(err, auth.ErrSessionCreate):
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": MsgSessionCreateFailed})
	case err != nil:
		slog.Error("Login failed", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": MsgInternalError})
	}

	return ctx.JSON(fiber.Map{
		"token":  token,
		"client": client,
	})
}

// PostLogout always reports success: the caller's only remaining recourse is
// to discard its local credentials, whether or not the delete went through.
func (h *AuthHandler) PostLogout(ctx *fiber.Ctx) error {
	var req TokenRequest
	if err := ctx.BodyParser(&req); err == nil && req.Token != "" {
		if err := h.sessionService.Destroy(ctx.Context(), req.Token); err != nil {
			slog.Warn("Failed to destroy session on logout", "error", err)
		}
	}
	return ctx.JSON(fiber.Map{"ok": true})
}

func (h *AuthHandler) PostSession(ctx *fiber.Ctx) error {
	var req TokenRequest
	if err := ctx.BodyParser(&req); err != nil || req.Token == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": MsgMissingToken})
	}

	client, err := h.loginService.ValidateToken(ctx.Context(), req.Token)
	if errors.Is(err, auth.ErrSessionInvalid) {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": MsgSessionInvalid})
	}
	if err != nil {
		slog.Error("Session validation failed", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": MsgInternalError})
	}

	return ctx.JSON(fiber.Map{"client": client})
}

func (h *AuthHandler) PostLogAccess(ctx *fiber.Ctx) error {
	var req LogAccessRequest
	if err := ctx.BodyParser(&req); err != nil || req.Token == "" || req.Action == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": MsgMissingTokenAction})
	}

	switch req.Action {
	case model.ActionLogin, model.ActionViewReport, model.ActionOpenDrive:
	default:
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": MsgInvalidAction})
	}

	_, client, err := h.sessionService.Validate(ctx.Context(), req.Token)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": MsgSessionInvalid})
	}

	// Admin usage is invisible to metrics; the service refuses admin rows as
	// well, this just avoids a pointless write attempt.
	if !client.IsAdmin {
		h.accessLogService.Record(ctx.Context(), client, req.Action, clientIP(ctx), userAgent(ctx))
	}

	return ctx.JSON(fiber.Map{"ok": true})
}

func (h *AuthHandler) PostChangePassword(ctx *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := ctx.BodyParser(&req); err != nil || req.Token == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": MsgMissingToken})
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": MsgMissingPasswords})
	}

	_, client, err := h.sessionService.Validate(ctx.Context(), req.Token)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": MsgSessionInvalid})
	}

	if err := h.clientService.ChangePassword(ctx.Context(), client, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrWrongPassword) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": MsgWrongCurrentPassword})
		}
		slog.Error("Failed to change password", "username", client.Username, "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": MsgInternalError})
	}

	return ctx.JSON(fiber.Map{"ok": true})
}

func NewAuthHandler(loginService *auth.LoginService, sessionService *auth.SessionService, accessLogService *accesslog.AccessLogService, clientService *clients.ClientService) *AuthHandler {
	return &AuthHandler{
		loginService:     loginService,
		sessionService:   sessionService,
		accessLogService: accessLogService,
		clientService:    clientService,
	}
}

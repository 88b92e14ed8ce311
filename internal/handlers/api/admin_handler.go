package api

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/datalume/partners-portal/internal/accesslog"
	"github.com/datalume/partners-portal/internal/attempts"
	"github.com/datalume/partners-portal/internal/audit"
	"github.com/datalume/partners-portal/internal/auth"
	"github.com/datalume/partners-portal/internal/clients"
	"github.com/datalume/partners-portal/model"
	"github.com/datalume/partners-portal/params"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the administrator endpoints. Authorization is
// re-derived per request by the RequireAdmin middleware; the resolved admin
// is read from the request locals.
type AdminHandler struct {
	clientService    *clients.ClientService
	sessionService   *auth.SessionService
	accessLogService *accesslog.AccessLogService
	attemptService   *attempts.AttemptService
	auditService     *audit.AuditService
}

func adminFromCtx(ctx *fiber.Ctx) *model.Client {
	admin, _ := ctx.Locals("admin").(*model.Client)
	return admin
}

func (h *AdminHandler) GetClients(ctx *fiber.Ctx) error {
	rows, err := h.clientService.List(ctx.Context())
	if err != nil {
		slog.Error("Failed to list clients", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": MsgInternalError})
	}
	response := make([]ClientResponse, 0, len(rows))
	for _, row := range rows {
		response = append(response, NewClientResponse(row))
	}
	return ctx.JSON(response)
}

func (h *AdminHandler) PostClient(ctx *fiber.Ctx) error {
	var req CreateClientRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": MsgMissingClientFields})
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": MsgMissingClientFields})
	}

	client, err := h.clientService.Create(ctx.Context(), adminFromCtx(ctx), clients.CreateClientInput{
		Username:  req.Username,
		Password:  req.Password,
		Name:      req.Name,
		ReportURL: req.ReportURL,
		DriveURL:  req.DriveURL,
		LogoURL:   req.LogoURL,
		IsAdmin:   req.IsAdmin,
	})
	if errors.Is(err, clients.ErrUsernameTaken) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": MsgUsernameTaken})
	}
	if err != nil {
		slog.Error("Failed to create client", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": MsgInternalError})
	}

	return ctx.Status(fiber.StatusCreated).JSON(NewClientResponse(client))
}

func (h *AdminHandler) PutClient(ctx *fiber.Ctx) error {
	var req UpdateClientRequest
	if err := ctx.BodyParser(&req); err != nil || req.ID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": MsgMissingClientID})
	}

	admin := adminFromCtx(ctx)

	// Activate/deactivate shortcut: only {id, is_active} supplied.
	statusOnly := req.IsActive != nil &&
		req.Username == nil && req.Password == nil && req.Name == nil &&
		req.ReportURL == nil && req.DriveURL == nil && req.LogoURL == nil && req.IsAdmin == nil
	if statusOnly {
		if err := h.clientService.SetActive(ctx.Context(), admin, req.ID, *req.IsActive); err != nil {
			slog.Error("Failed to update client status", "id", req.ID, "error", err)
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": MsgInternalError})
		}
		// Not required for correctness (validation re-checks the active
		// flag) but keeps the session table tidy.
		if !*req.IsActive {
			if err := h.sessionService.DestroyAllForClient(ctx.Context(), req.ID); err != nil {
				slog.Warn("Failed to destroy sessions of deactivated client", "id", req.ID, "error", err)
			}
		}
		return ctx.JSON(fiber.Map{"ok": true})
	}

	client, err := h.clientService.Update(ctx.Context(), admin, req.ID, clients.UpdateClientInput{
		Username:  req.Username,
		Password:  req.Password,
		Name:      req.Name,
		ReportURL: req.ReportURL,
		DriveURL:  req.DriveURL,
		LogoURL:   req.LogoURL,
		IsAdmin:   req.IsAdmin,
	})
	switch {
	case errors.Is(err, clients.ErrClientNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": MsgClientNotFound})
	case errors.Is(err, clients.ErrNothingToUpdate):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": MsgNothingToUpdate})
	case errors.Is(err, clients.ErrUsernameTaken):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": MsgUsernameTaken})
	case err != nil:
		slog.Error("Failed to update client", "id", req.ID, "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": MsgInternalError})
	}

	return ctx.JSON(NewClientResponse(client))
}

func (h *AdminHandler) DeleteClient(ctx *fiber.Ctx) error {
	id := ctx.Query("id")
	if id == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": MsgMissingClientID})
	}

	err := h.clientService.Delete(ctx.Context(), adminFromCtx(ctx), id)
	if errors.Is(err, clients.ErrSelfDelete) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": MsgSelfDelete})
	}
	if err != nil {
		slog.Error("Failed to delete client", "id", id, "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": MsgInternalError})
	}

	return ctx.JSON(fiber.Map{"ok": true})
}

func (h *AdminHandler) GetStats(ctx *fiber.Ctx) error {
	startDate := ctx.Query("startDate")
	endDate := ctx.Query("endDate")
	if startDate == "" || endDate == "" {
		today := time.Now().UTC()
		endDate = today.Format("2006-01-02")
		startDate = today.AddDate(0, 0, -params.StatsDefaultDays).Format("2006-01-02")
	}

	stats, err := h.accessLogService.StatsByDateRange(ctx.Context(), startDate, endDate)
	if err != nil {
		var parseErr *time.ParseError
		if errors.As(err, &parseErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": MsgInvalidDate})
		}
		slog.Error("Failed to compute access stats", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": MsgInternalError})
	}

	return ctx.JSON(stats)
}

func (h *AdminHandler) GetAttempts(ctx *fiber.Ctx) error {
	onlyFailed := ctx.Query("onlyFailed") == "true"
	rows, err := h.attemptService.List(ctx.Context(), onlyFailed)
	if err != nil {
		slog.Error("Failed to list login attempts", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": MsgInternalError})
	}
	response := make([]AttemptResponse, 0, len(rows))
	for _, row := range rows {
		response = append(response, NewAttemptResponse(row))
	}
	return ctx.JSON(response)
}

func (h *AdminHandler) GetSessions(ctx *fiber.Ctx) error {
	sessions, err := h.sessionService.ListActive(ctx.Context())
	if err != nil {
		slog.Error("Failed to list active sessions", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": MsgInternalError})
	}
	response := make([]SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		response = append(response, NewSessionResponse(session))
	}
	return ctx.JSON(response)
}

// DeleteSessions force-terminates every session of a client.
func (h *AdminHandler) DeleteSessions(ctx *fiber.Ctx) error {
	clientID := ctx.Query("clientId")
	if clientID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": MsgMissingSessionClient})
	}

	target := clientID
	if client, err := h.clientService.GetByID(ctx.Context(), clientID); err == nil {
		target = client.Name
	}

	if err := h.sessionService.DestroyAllForClient(ctx.Context(), clientID); err != nil {
		slog.Error("Failed to force logout", "clientId", clientID, "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": MsgInternalError})
	}

	h.auditService.Record(ctx.Context(), adminFromCtx(ctx).ID, audit.ActionForceLogout, target, map[string]any{})
	return ctx.JSON(fiber.Map{"ok": true})
}

func (h *AdminHandler) GetAudit(ctx *fiber.Ctx) error {
	entries, err := h.auditService.List(ctx.Context(), nil, nil, params.MaxAuditRows)
	if err != nil {
		slog.Error("Failed to list audit entries", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": MsgInternalError})
	}
	return ctx.JSON(entries)
}

func NewAdminHandler(clientService *clients.ClientService, sessionService *auth.SessionService, accessLogService *accesslog.AccessLogService, attemptService *attempts.AttemptService, auditService *audit.AuditService) *AdminHandler {
	return &AdminHandler{
		clientService:    clientService,
		sessionService:   sessionService,
		accessLogService: accessLogService,
		attemptService:   attemptService,
		auditService:     auditService,
	}
}

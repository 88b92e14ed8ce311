package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/datalume/partners-portal/model"
	"github.com/google/uuid"
	"github.com/spf13/cast"
)

const (
	ActionCreateClient  = "create_client"
	ActionUpdateClient  = "update_client"
	ActionDeleteClient  = "delete_client"
	ActionForceLogout   = "force_logout"
	ActionResetPassword = "reset_password"
)

// ClientNameResolver maps client IDs to current display names. Implemented
// by the clients repository.
type ClientNameResolver interface {
	NamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
}

// Entry is the read-side form of an audit row, with the target already
// resolved to a display name where possible.
type Entry struct {
	ID        uint           `json:"id"`
	AdminID   string         `json:"admin_id"`
	Action    string         `json:"action"`
	Target    string         `json:"target"`
	Details   map[string]any `json:"details"`
	CreatedAt time.Time      `json:"created_at"`
}

// AuditService records administrative mutations and serves the audit trail.
type AuditService struct {
	auditRepo AuditRepository
	resolver  ClientNameResolver
}

// Record appends an audit entry. Recording is best-effort: a failure here
// must never fail or roll back the administrative action it accompanies.
func (s *AuditService) Record(ctx context.Context, adminID, action, target string, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	payload, err := json.Marshal(details)
	if err != nil {
		slog.Warn("Failed to encode audit details", "action", action, "error", err)
		payload = []byte("{}")
	}
	entry := model.AuditEntry{
		AdminID: adminID,
		Action:  action,
		Target:  target,
		Details: payload,
	}
	if err := s.auditRepo.Create(ctx, &entry); err != nil {
		slog.Warn("Failed to record audit entry", "action", action, "target", target, "error", err)
	}
}

// List returns audit entries newest first. Targets that look like client
// IDs are resolved to current display names in one batched lookup; when a
// client has since been deleted the raw identifier is kept.
func (s *AuditService) List(ctx context.Context, start, end *time.Time, limit int) ([]*Entry, error) {
	rows, err := s.auditRepo.Find(ctx, start, end, limit)
	if err != nil {
		return nil, err
	}

	var idsToResolve []string
	seen := make(map[string]bool)
	for _, row := range rows {
		if isClientID(row.Target) && !seen[row.Target] {
			seen[row.Target] = true
			idsToResolve = append(idsToResolve, row.Target)
		}
	}

	nameByID := map[string]string{}
	if len(idsToResolve) > 0 {
		nameByID, err = s.resolver.NamesByIDs(ctx, idsToResolve)
		if err != nil {
			slog.Warn("Failed to resolve audit targets", "error", err)
			nameByID = map[string]string{}
		}
	}

	entries := make([]*Entry, 0, len(rows))
	for _, row := range rows {
		target := row.Target
		if name, ok := nameByID[target]; ok && name != "" {
			target = name
		}
		entries = append(entries, &Entry{
			ID:        row.ID,
			AdminID:   row.AdminID,
			Action:    row.Action,
			Target:    target,
			Details:   normalizeDetails(row.Details),
			CreatedAt: row.CreatedAt,
		})
	}
	return entries, nil
}

func isClientID(target string) bool {
	return len(target) == 36 && uuid.Validate(target) == nil
}

// normalizeDetails tolerates legacy payloads: structured objects pass
// through, serialized-string forms are parsed, and anything malformed
// normalizes to an empty map instead of failing the read.
func normalizeDetails(raw []byte) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return map[string]any{}
	}
	if s, ok := value.(string); ok {
		if err := json.Unmarshal([]byte(s), &value); err != nil {
			return map[string]any{}
		}
	}
	details, err := cast.ToStringMapE(value)
	if err != nil || details == nil {
		return map[string]any{}
	}
	return details
}

func NewAuditService(auditRepo AuditRepository, resolver ClientNameResolver) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		resolver:  resolver,
	}
}

package clients

import (
	"context"
	"errors"
	"strings"

	"github.com/datalume/partners-portal/internal/audit"
	"github.com/datalume/partners-portal/internal/auth"
	"github.com/datalume/partners-portal/model"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Human-readable labels recorded in the audit trail for each mutated column.
var fieldLabels = map[string]string{
	"username":      "Usuário",
	"name":          "Nome",
	"report_url":    "URL do Relatório",
	"drive_url":     "URL do Drive",
	"is_admin":      "Permissão Admin",
	"is_active":     "Status",
	"logo_url":      "Logo",
	"password_hash": "Senha",
}

type CreateClientInput struct {
	Username  string
	Password  string
	Name      string
	ReportURL string
	DriveURL  string
	LogoURL   string
	IsAdmin   bool
}

type UpdateClientInput struct {
	Username  *string
	Password  *string
	Name      *string
	ReportURL *string
	DriveURL  *string
	LogoURL   *string
	IsAdmin   *bool
}

// ClientService implements the administrator-facing account CRUD. Every
// mutation leaves an audit entry; audit failures never roll the mutation
// back.
type ClientService struct {
	clientRepo ClientRepository
	auditor    *audit.AuditService
}

func (s *ClientService) List(ctx context.Context) ([]*model.Client, error) {
	return s.clientRepo.Find(ctx)
}

func (s *ClientService) GetByID(ctx context.Context, id string) (*model.Client, error) {
	client, err := s.clientRepo.FirstByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClientNotFound
	}
	return client, err
}

// Create registers a new account. Username uniqueness is enforced by the
// database; a duplicate surfaces as ErrUsernameTaken.
func (s *ClientService) Create(ctx context.Context, admin *model.Client, input CreateClientInput) (*model.Client, error) {
	passwordHash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	client := model.Client{
		Username:     strings.TrimSpace(input.Username),
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(input.Name),
		ReportURL:    strings.TrimSpace(input.ReportURL),
		DriveURL:     strings.TrimSpace(input.DriveURL),
		LogoURL:      strings.TrimSpace(input.LogoURL),
		IsAdmin:      input.IsAdmin,
		IsActive:     true,
	}

	var mysqlErr *mysql.MySQLError
	if err := s.clientRepo.Create(ctx, &client); errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return nil, ErrUsernameTaken
	} else if err != nil {
		return nil, err
	}

	accountType := "Cliente"
	if client.IsAdmin {
		accountType = "Administrador"
	}
	s.auditor.Record(ctx, admin.ID, audit.ActionCreateClient, client.Name, map[string]any{
		"tipo": accountType,
	})

	return &client, nil
}

// Update applies a partial edit. The current record is fetched first so that
// only genuinely changed columns are written and audited; supplying only
// unchanged values yields ErrNothingToUpdate.
func (s *ClientService) Update(ctx context.Context, admin *model.Client, id string, input UpdateClientInput) (*model.Client, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	var changedLabels []string
	record := func(column string, value interface{}) {
		updates[column] = value
		changedLabels = append(changedLabels, fieldLabels[column])
	}

	if input.Username != nil {
		if v := strings.TrimSpace(*input.Username); v != current.Username {
			record("username", v)
		}
	}
	if input.Name != nil {
		if v := strings.TrimSpace(*input.Name); v != current.Name {
			record("name", v)
		}
	}
	if input.ReportURL != nil {
		if v := strings.TrimSpace(*input.ReportURL); v != current.ReportURL {
			record("report_url", v)
		}
	}
	if input.DriveURL != nil {
		if v := strings.TrimSpace(*input.DriveURL); v != current.DriveURL {
			record("drive_url", v)
		}
	}
	if input.LogoURL != nil {
		if v := strings.TrimSpace(*input.LogoURL); v != current.LogoURL {
			record("logo_url", v)
		}
	}
	if input.IsAdmin != nil && *input.IsAdmin != current.IsAdmin {
		record("is_admin", *input.IsAdmin)
	}
	if input.Password != nil && *input.Password != "" {
		passwordHash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		record("password_hash", passwordHash)
	}

	if len(updates) == 0 {
		return nil, ErrNothingToUpdate
	}

	var mysqlErr *mysql.MySQLError
	if _, err := s.clientRepo.Updates(ctx, id, updates); errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return nil, ErrUsernameTaken
	} else if err != nil {
		return nil, err
	}

	updated, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, admin.ID, audit.ActionUpdateClient, updated.Name, map[string]any{
		"campos_alterados": changedLabels,
	})

	return updated, nil
}

// SetActive flips the active flag. Deactivation takes effect on the next
// session validation regardless of existing session rows.
func (s *ClientService) SetActive(ctx context.Context, admin *model.Client, id string, active bool) error {
	target := id
	if current, err := s.clientRepo.FirstByID(ctx, id); err == nil {
		target = current.Name
	}

	if _, err := s.clientRepo.Updates(ctx, id, map[string]interface{}{"is_active": active}); err != nil {
		return err
	}

	status := "Inativo"
	if active {
		status = "Ativo"
	}
	s.auditor.Record(ctx, admin.ID, audit.ActionUpdateClient, target, map[string]any{
		"campo_alterado": "Status",
		"valor":          status,
	})
	return nil
}

// Delete removes an account. Administrators cannot delete themselves; that
// would lock the acting admin out of the portal.
func (s *ClientService) Delete(ctx context.Context, admin *model.Client, id string) error {
	if id == admin.ID {
		return ErrSelfDelete
	}

	target := "Cliente excluído"
	if current, err := s.clientRepo.FirstByID(ctx, id); err == nil {
		target = current.Name
	}

	if _, err := s.clientRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditor.Record(ctx, admin.ID, audit.ActionDeleteClient, target, map[string]any{})
	return nil
}

// ChangePassword rotates the client's own password after re-verifying the
// current one.
func (s *ClientService) ChangePassword(ctx context.Context, client *model.Client, currentPassword, newPassword string) error {
	if !auth.CheckPassword(currentPassword, client.PasswordHash) {
		return auth.ErrWrongPassword
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if _, err := s.clientRepo.Updates(ctx, client.ID, map[string]interface{}{"password_hash": passwordHash}); err != nil {
		return err
	}

	s.auditor.Record(ctx, client.ID, audit.ActionResetPassword, client.Name, map[string]any{})
	return nil
}

func NewClientService(clientRepo ClientRepository, auditor *audit.AuditService) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		auditor:    auditor,
	}
}

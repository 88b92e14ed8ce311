package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/datalume/partners-portal/internal/metrics"
	"github.com/datalume/partners-portal/model"
	"gorm.io/gorm"
)

// ClientStore is the subset of the client repository the login flow needs.
type ClientStore interface {
	FirstActiveByUsername(ctx context.Context, username string) (*model.Client, error)
}

// AttemptRecorder appends login attempts. Implementations are best-effort
// and must not fail the login call.
type AttemptRecorder interface {
	Record(ctx context.Context, username string, success bool, ip, userAgent string)
}

// AccessRecorder appends access log events. Best-effort as well.
type AccessRecorder interface {
	Record(ctx context.Context, client *model.Client, action, ip, userAgent string)
}

// ClientView is the non-secret projection of a client returned to callers.
// The password hash never leaves the service layer.
type ClientView struct {
	Username  string `json:"username"`
	Name      string `json:"name"`
	ReportURL string `json:"reportUrl"`
	DriveURL  string `json:"driveUrl"`
	IsAdmin   bool   `json:"isAdmin"`
}

func NewClientView(client *model.Client) *ClientView {
	return &ClientView{
		Username:  client.Username,
		Name:      client.Name,
		ReportURL: client.ReportURL,
		DriveURL:  client.DriveURL,
		IsAdmin:   client.IsAdmin,
	}
}

// LoginService composes credential verification, attempt recording, session
// issuance and access logging into the login use case.
type LoginService struct {
	clientStore ClientStore
	sessions    *SessionService
	attempts    AttemptRecorder
	accessLogs  AccessRecorder
	metrics     metrics.Recorder
}

// Login verifies the credentials and issues a session token. Unknown
// username and wrong password are indistinguishable to the caller; every
// call records exactly one login attempt regardless of outcome.
func (s *LoginService) Login(ctx context.Context, username, password, ip, userAgent string) (string, *ClientView, error) {
	username = strings.TrimSpace(username)

	client, err := s.clientStore.FirstActiveByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("Client lookup failed during login", "error", err)
		}
		s.attempts.Record(ctx, username, false, ip, userAgent)
		s.metrics.RecordLogin(false)
		return "", nil, ErrInvalidCredentials
	}

	if !CheckPassword(password, client.PasswordHash) {
		s.attempts.Record(ctx, username, false, ip, userAgent)
		s.metrics.RecordLogin(false)
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, client.ID, ip, userAgent)
	if err != nil {
		slog.Error("Failed to create session", "username", username, "error", err)
		s.attempts.Record(ctx, username, false, ip, userAgent)
		s.metrics.RecordLogin(false)
		return "", nil, ErrSessionCreate
	}

	s.attempts.Record(ctx, username, true, ip, userAgent)
	s.metrics.RecordLogin(true)

	// Administrator accounts are excluded from access metrics.
	if !client.IsAdmin {
		s.accessLogs.Record(ctx, client, model.ActionLogin, ip, userAgent)
	}

	return token, NewClientView(client), nil
}

// ValidateToken resolves a session token to the current client view,
// re-checking the active flag on every call.
func (s *LoginService) ValidateToken(ctx context.Context, token string) (*ClientView, error) {
	_, client, err := s.sessions.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	return NewClientView(client), nil
}

func NewLoginService(clientStore ClientStore, sessions *SessionService, attempts AttemptRecorder, accessLogs AccessRecorder, metrics metrics.Recorder) *LoginService {
	return &LoginService{
		clientStore: clientStore,
		sessions:    sessions,
		attempts:    attempts,
		accessLogs:  accessLogs,
		metrics:     metrics,
	}
}

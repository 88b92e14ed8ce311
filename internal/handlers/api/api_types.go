package api

import (
	"time"

	"github.com/datalume/partners-portal/model"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenRequest struct {
	Token string `json:"token"`
}

type LogAccessRequest struct {
	Token  string `json:"token"`
	Action string `json:"action"`
}

type ChangePasswordRequest struct {
	Token           string `json:"token"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type CreateClientRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	ReportURL string `json:"report_url"`
	DriveURL  string `json:"drive_url"`
	LogoURL   string `json:"logo_url"`
	IsAdmin   bool   `json:"is_admin"`
}

// UpdateClientRequest carries a partial edit; absent fields stay untouched.
type UpdateClientRequest struct {
	ID        string  `json:"id"`
	Username  *string `json:"username"`
	Password  *string `json:"password"`
	Name      *string `json:"name"`
	ReportURL *string `json:"report_url"`
	DriveURL  *string `json:"drive_url"`
	LogoURL   *string `json:"logo_url"`
	IsAdmin   *bool   `json:"is_admin"`
	IsActive  *bool   `json:"is_active"`
}

// ClientResponse is the full record shape returned to administrators. The
// password hash is deliberately absent.
type ClientResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	ReportURL string    `json:"report_url"`
	DriveURL  string    `json:"drive_url"`
	IsAdmin   bool      `json:"is_admin"`
	IsActive  bool      `json:"is_active"`
	LogoURL   string    `json:"logo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewClientResponse(client *model.Client) ClientResponse {
	return ClientResponse{
		ID:        client.ID,
		Username:  client.Username,
		Name:      client.Name,
		ReportURL: client.ReportURL,
		DriveURL:  client.DriveURL,
		IsAdmin:   client.IsAdmin,
		IsActive:  client.IsActive,
		LogoURL:   client.LogoURL,
		CreatedAt: client.CreatedAt,
		UpdatedAt: client.UpdatedAt,
	}
}

type SessionClientIdentity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type SessionResponse struct {
	ID        uint                  `json:"id"`
	ClientID  string                `json:"client_id"`
	IP        string                `json:"ip"`
	UserAgent string                `json:"user_agent"`
	CreatedAt time.Time             `json:"created_at"`
	ExpiresAt time.Time             `json:"expires_at"`
	Client    SessionClientIdentity `json:"client"`
}

func NewSessionResponse(session *model.Session) SessionResponse {
	return SessionResponse{
		ID:        session.ID,
		ClientID:  session.ClientID,
		IP:        session.IP,
		UserAgent: session.UserAgent,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
		Client: SessionClientIdentity{
			ID:       session.Client.ID,
			Username: session.Client.Username,
			Name:     session.Client.Name,
		},
	}
}

type AttemptResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Success   bool      `json:"success"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

func NewAttemptResponse(attempt *model.LoginAttempt) AttemptResponse {
	return AttemptResponse{
		ID:        attempt.ID,
		Username:  attempt.Username,
		Success:   attempt.Success,
		IP:        attempt.IP,
		UserAgent: attempt.UserAgent,
		CreatedAt: attempt.CreatedAt,
	}
}

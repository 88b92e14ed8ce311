package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/datalume/partners-portal/internal/common"
	"github.com/datalume/partners-portal/internal/metrics"
	"github.com/datalume/partners-portal/model"
	"github.com/datalume/partners-portal/params"
	"gorm.io/gorm"
)

// SessionService owns the session lifecycle. A session is valid if and only
// if its expiry is strictly in the future and its owning client is active;
// the active flag is re-checked on every validation, so deactivating a
// client immediately invalidates all of their sessions.
type SessionService struct {
	sessionRepo SessionRepository
	duration    time.Duration
	metrics     metrics.Recorder
}

// Create issues a fresh high-entropy token for the client and persists the
// session with an absolute expiry.
func (s *SessionService) Create(ctx context.Context, clientID string, ip, userAgent string) (string, error) {
	token, err := common.GenerateToken(params.SessionTokenSize)
	if err != nil {
		return "", err
	}
	session := model.Session{
		Token:     token,
		ClientID:  clientID,
		IP:        ip,
		UserAgent: userAgent,
		ExpiresAt: time.Now().Add(s.duration),
	}
	if err := s.sessionRepo.Create(ctx, &session); err != nil {
		return "", err
	}
	s.metrics.RecordSessionIssued()
	return token, nil
}

// Validate resolves a token to its session and owning client. Unknown token,
// expired session and inactive client all collapse to ErrSessionInvalid.
func (s *SessionService) Validate(ctx context.Context, token string) (*model.Session, *model.Client, error) {
	if token == "" {
		return nil, nil, ErrSessionInvalid
	}
	session, err := s.sessionRepo.FirstValidByToken(ctx, token, time.Now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, nil, err
	}
	if !session.Client.IsActive {
		return nil, nil, ErrSessionInvalid
	}
	return session, &session.Client, nil
}

// Destroy deletes a single session. Destroying a nonexistent token is not an
// error.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	deleted, err := s.sessionRepo.DeleteByToken(ctx, token)
	if err != nil {
		return err
	}
	s.metrics.RecordSessionsRevoked(int(deleted))
	return nil
}

// DestroyAllForClient deletes every session owned by the client. Used for
// forced logout and as hygiene when an administrator deactivates an account.
func (s *SessionService) DestroyAllForClient(ctx context.Context, clientID string) error {
	deleted, err := s.sessionRepo.DeleteByClientID(ctx, clientID)
	if err != nil {
		return err
	}
	s.metrics.RecordSessionsRevoked(int(deleted))
	return nil
}

// ListActive returns unexpired sessions, newest first, with the owning
// client preloaded for administrator review.
func (s *SessionService) ListActive(ctx context.Context) ([]*model.Session, error) {
	return s.sessionRepo.FindActive(ctx, time.Now())
}

// CleanupExpired removes expired rows. Validation already filters by expiry,
// so this only reclaims storage.
func (s *SessionService) CleanupExpired(ctx context.Context) {
	deleted, err := s.sessionRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		slog.Warn("Failed to clean up expired sessions", "error", err)
		return
	}
	if deleted > 0 {
		slog.Debug("Cleaned up expired sessions", "count", deleted)
	}
}

func NewSessionService(sessionRepo SessionRepository, duration time.Duration, metrics metrics.Recorder) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		duration:    duration,
		metrics:     metrics,
	}
}

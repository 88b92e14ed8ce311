package attempts

import (
	"context"
	"log/slog"
	"time"

	"github.com/datalume/partners-portal/model"
	"github.com/datalume/partners-portal/params"
)

// AttemptService records and queries login attempts. Every login call
// produces exactly one row, successful or not, even for usernames that do
// not exist.
type AttemptService struct {
	attemptRepo AttemptRepository
}

// Record appends a login attempt. A storage failure here must never block
// the login it accompanies, so it is logged and discarded.
func (s *AttemptService) Record(ctx context.Context, username string, success bool, ip, userAgent string) {
	attempt := model.LoginAttempt{
		Username:  username,
		Success:   success,
		IP:        ip,
		UserAgent: userAgent,
	}
	if err := s.attemptRepo.Create(ctx, &attempt); err != nil {
		slog.Warn("Failed to record login attempt", "username", username, "error", err)
	}
}

// List returns attempts newest first, capped for the admin view.
func (s *AttemptService) List(ctx context.Context, onlyFailed bool) ([]*model.LoginAttempt, error) {
	return s.attemptRepo.Find(ctx, onlyFailed, params.MaxLoginAttemptRows)
}

// CountRecentFailures counts failed attempts from an IP inside the window.
// Building block for a lockout policy; no threshold is enforced here.
func (s *AttemptService) CountRecentFailures(ctx context.Context, ip string, window time.Duration) (int64, error) {
	return s.attemptRepo.CountFailedByIP(ctx, ip, time.Now().Add(-window))
}

func NewAttemptService(attemptRepo AttemptRepository) *AttemptService {
	return &AttemptService{attemptRepo: attemptRepo}
}

package accesslog

import (
	"context"
	"log/slog"

	"github.com/datalume/partners-portal/internal/metrics"
	"github.com/datalume/partners-portal/model"
)

// AccessLogService records usage events and computes access statistics.
type AccessLogService struct {
	accessLogRepo AccessLogRepository
	metrics       metrics.Recorder
}

// Record appends an access event, snapshotting the client's username and
// display name so historical reports survive renames. Administrator
// accounts never produce rows; the write itself is best-effort.
func (s *AccessLogService) Record(ctx context.Context, client *model.Client, action, ip, userAgent string) {
	if client.IsAdmin {
		return
	}
	if ip == "" {
		ip = "unknown"
	}
	log := model.AccessLog{
		ClientID:   client.ID,
		Username:   client.Username,
		ClientName: client.Name,
		Action:     action,
		IP:         ip,
		UserAgent:  userAgent,
	}
	if err := s.accessLogRepo.Create(ctx, &log); err != nil {
		slog.Warn("Failed to record access log", "username", client.Username, "action", action, "error", err)
		return
	}
	s.metrics.RecordAccess(action)
}

// StatsByDateRange aggregates events for the inclusive civil-day range
// defined by the fixed UTC-3 convention.
func (s *AccessLogService) StatsByDateRange(ctx context.Context, startDate, endDate string) (*AccessStats, error) {
	start, end, err := RangeBounds(startDate, endDate)
	if err != nil {
		return nil, err
	}
	logs, err := s.accessLogRepo.FindByTimeRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return ComputeStats(logs), nil
}

func NewAccessLogService(accessLogRepo AccessLogRepository, metrics metrics.Recorder) *AccessLogService {
	return &AccessLogService{
		accessLogRepo: accessLogRepo,
		metrics:       metrics,
	}
}

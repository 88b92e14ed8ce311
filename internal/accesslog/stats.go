package accesslog

import (
	"time"

	"github.com/datalume/partners-portal/model"
	"github.com/datalume/partners-portal/params"
)

// statsZone is the fixed civil-day offset used for all date bucketing.
// Server-local time is never consulted.
var statsZone = time.FixedZone("UTC-3", params.StatsUTCOffsetHours*3600)

// LogEntry is the wire form of an access log row.
type LogEntry struct {
	ID         uint      `json:"id"`
	ClientID   string    `json:"client_id"`
	Username   string    `json:"username"`
	ClientName string    `json:"client_name"`
	Action     string    `json:"action"`
	IP         string    `json:"ip"`
	UserAgent  string    `json:"user_agent"`
	CreatedAt  time.Time `json:"created_at"`
}

// AccessStats aggregates login and drive-open events over a date range.
type AccessStats struct {
	TotalAccesses      int            `json:"totalAccesses"`
	TotalDriveAccesses int            `json:"totalDriveAccesses"`
	AccessesByClient   map[string]int `json:"accessesByClient"`
	DriveByClient      map[string]int `json:"driveByClient"`
	AccessesByDate     map[string]int `json:"accessesByDate"`
	RecentLogs         []LogEntry     `json:"recentLogs"`
}

func newLogEntry(log *model.AccessLog) LogEntry {
	return LogEntry{
		ID:         log.ID,
		ClientID:   log.ClientID,
		Username:   log.Username,
		ClientName: log.ClientName,
		Action:     log.Action,
		IP:         log.IP,
		UserAgent:  log.UserAgent,
		CreatedAt:  log.CreatedAt,
	}
}

// civilDate formats a stored timestamp as its UTC-3 calendar date.
func civilDate(t time.Time) string {
	return t.In(statsZone).Format("2006-01-02")
}

// RangeBounds converts an inclusive civil-day range into stored-timestamp
// bounds [start, end). Day boundaries follow the fixed UTC-3 offset, so
// "2024-06-01" covers 2024-06-01T03:00Z through 2024-06-02T03:00Z.
func RangeBounds(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02", startDate, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.ParseInLocation("2006-01-02", endDate, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	offset := time.Duration(-params.StatsUTCOffsetHours) * time.Hour
	return start.Add(offset), end.AddDate(0, 0, 1).Add(offset), nil
}

// ComputeStats is a pure aggregation over already-fetched rows; it is safe
// to recompute any number of times. Rows are expected newest first.
func ComputeStats(logs []*model.AccessLog) *AccessStats {
	stats := &AccessStats{
		AccessesByClient: make(map[string]int),
		DriveByClient:    make(map[string]int),
		AccessesByDate:   make(map[string]int),
		RecentLogs:       []LogEntry{},
	}

	for _, log := range logs {
		switch log.Action {
		case model.ActionLogin:
			stats.TotalAccesses++
			stats.AccessesByClient[log.ClientName]++
			stats.AccessesByDate[civilDate(log.CreatedAt)]++
			if len(stats.RecentLogs) < params.StatsRecentLogs {
				stats.RecentLogs = append(stats.RecentLogs, newLogEntry(log))
			}
		case model.ActionOpenDrive:
			stats.TotalDriveAccesses++
			stats.DriveByClient[log.ClientName]++
		}
	}

	return stats
}

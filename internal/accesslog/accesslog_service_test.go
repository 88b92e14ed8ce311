package accesslog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/datalume/partners-portal/internal/metrics"
	"github.com/datalume/partners-portal/model"
)

type fakeAccessLogRepo struct {
	rows      []*model.AccessLog
	createErr error
}

func (f *fakeAccessLogRepo) Create(_ context.Context, log *model.AccessLog) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.rows = append(f.rows, log)
	return nil
}

func (f *fakeAccessLogRepo) FindByTimeRange(_ context.Context, start, end time.Time) ([]*model.AccessLog, error) {
	var out []*model.AccessLog
	for _, row := range f.rows {
		if !row.CreatedAt.Before(start) && row.CreatedAt.Before(end) {
			out = append(out, row)
		}
	}
	return out, nil
}

func TestRecordSnapshotsClient(t *testing.T) {
	repo := &fakeAccessLogRepo{}
	service := NewAccessLogService(repo, metrics.Noop{})

	client := &model.Client{ID: "id-1", Username: "acme", Name: "Acme Corp"}
	service.Record(context.Background(), client, model.ActionLogin, "10.0.0.1", "test-agent")

	if len(repo.rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(repo.rows))
	}
	row := repo.rows[0]
	if row.Username != "acme" || row.ClientName != "Acme Corp" {
		t.Errorf("snapshot not taken: username=%q name=%q", row.Username, row.ClientName)
	}
	if row.IP != "10.0.0.1" {
		t.Errorf("ip = %q, want 10.0.0.1", row.IP)
	}
}

func TestRecordSkipsAdmins(t *testing.T) {
	repo := &fakeAccessLogRepo{}
	service := NewAccessLogService(repo, metrics.Noop{})

	admin := &model.Client{ID: "id-2", Username: "root", Name: "Root", IsAdmin: true}
	service.Record(context.Background(), admin, model.ActionLogin, "10.0.0.1", "test-agent")
	service.Record(context.Background(), admin, model.ActionOpenDrive, "10.0.0.1", "test-agent")

	if len(repo.rows) != 0 {
		t.Fatalf("admin produced %d access log rows, want 0", len(repo.rows))
	}
}

func TestRecordDefaultsUnknownIP(t *testing.T) {
	repo := &fakeAccessLogRepo{}
	service := NewAccessLogService(repo, metrics.Noop{})

	client := &model.Client{ID: "id-3", Username: "acme", Name: "Acme"}
	service.Record(context.Background(), client, model.ActionOpenDrive, "", "")

	if repo.rows[0].IP != "unknown" {
		t.Errorf("ip = %q, want unknown", repo.rows[0].IP)
	}
}

// A storage failure is swallowed; recording is best-effort.
func TestRecordSwallowsStorageFailure(t *testing.T) {
	repo := &fakeAccessLogRepo{createErr: errors.New("connection refused")}
	service := NewAccessLogService(repo, metrics.Noop{})

	client := &model.Client{ID: "id-4", Username: "acme", Name: "Acme"}
	service.Record(context.Background(), client, model.ActionLogin, "10.0.0.1", "agent")
}

func TestStatsByDateRange(t *testing.T) {
	repo := &fakeAccessLogRepo{rows: []*model.AccessLog{
		{ClientName: "Acme", Action: model.ActionLogin, CreatedAt: mustTime(t, "2024-06-01T02:00:00Z")},
		{ClientName: "Acme", Action: model.ActionLogin, CreatedAt: mustTime(t, "2024-06-01T05:00:00Z")},
		{ClientName: "Acme", Action: model.ActionLogin, CreatedAt: mustTime(t, "2024-06-02T01:00:00Z")},
	}}
	service := NewAccessLogService(repo, metrics.Noop{})

	stats, err := service.StatsByDateRange(context.Background(), "2024-06-01", "2024-06-01")
	if err != nil {
		t.Fatalf("StatsByDateRange returned error: %v", err)
	}
	if stats.TotalAccesses != 2 {
		t.Fatalf("totalAccesses = %d, want 2", stats.TotalAccesses)
	}
}

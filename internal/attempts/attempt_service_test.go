package attempts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/datalume/partners-portal/model"
	"github.com/datalume/partners-portal/params"
)

type fakeAttemptRepo struct {
	rows      []*model.LoginAttempt
	createErr error
}

func (f *fakeAttemptRepo) Create(_ context.Context, attempt *model.LoginAttempt) error {
	if f.createErr != nil {
		return f.createErr
	}
	attempt.ID = uint(len(f.rows) + 1)
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now()
	}
	f.rows = append(f.rows, attempt)
	return nil
}

func (f *fakeAttemptRepo) Find(_ context.Context, onlyFailed bool, limit int) ([]*model.LoginAttempt, error) {
	var out []*model.LoginAttempt
	for i := len(f.rows) - 1; i >= 0; i-- {
		if onlyFailed && f.rows[i].Success {
			continue
		}
		out = append(out, f.rows[i])
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeAttemptRepo) CountFailedByIP(_ context.Context, ip string, since time.Time) (int64, error) {
	var count int64
	for _, row := range f.rows {
		if !row.Success && row.IP == ip && !row.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func TestRecordAttempt(t *testing.T) {
	repo := &fakeAttemptRepo{}
	service := NewAttemptService(repo)

	service.Record(context.Background(), "ghost", false, "10.0.0.1", "agent")
	service.Record(context.Background(), "acme", true, "10.0.0.1", "agent")

	if len(repo.rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(repo.rows))
	}
	if repo.rows[0].Username != "ghost" || repo.rows[0].Success {
		t.Errorf("first row = %+v", repo.rows[0])
	}
	if repo.rows[1].Username != "acme" || !repo.rows[1].Success {
		t.Errorf("second row = %+v", repo.rows[1])
	}
}

func TestRecordSwallowsStorageError(t *testing.T) {
	repo := &fakeAttemptRepo{createErr: errors.New("datastore unreachable")}
	service := NewAttemptService(repo)

	service.Record(context.Background(), "acme", true, "10.0.0.1", "agent")
	if len(repo.rows) != 0 {
		t.Error("row written despite create error")
	}
}

func TestListFailedFilterAndCap(t *testing.T) {
	repo := &fakeAttemptRepo{}
	service := NewAttemptService(repo)

	for i := 0; i < params.MaxLoginAttemptRows+10; i++ {
		service.Record(context.Background(), "acme", i%2 == 0, "10.0.0.1", "agent")
	}

	all, err := service.List(context.Background(), false)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(all) != params.MaxLoginAttemptRows {
		t.Errorf("uncapped list returned %d rows, want %d", len(all), params.MaxLoginAttemptRows)
	}

	failed, err := service.List(context.Background(), true)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	for _, row := range failed {
		if row.Success {
			t.Fatalf("failed-only list contains success row %+v", row)
		}
	}
}

func TestCountRecentFailures(t *testing.T) {
	repo := &fakeAttemptRepo{}
	service := NewAttemptService(repo)

	now := time.Now()
	repo.rows = []*model.LoginAttempt{
		{Username: "acme", Success: false, IP: "10.0.0.1", CreatedAt: now.Add(-5 * time.Minute)},
		{Username: "acme", Success: false, IP: "10.0.0.1", CreatedAt: now.Add(-30 * time.Minute)},
		{Username: "acme", Success: true, IP: "10.0.0.1", CreatedAt: now.Add(-2 * time.Minute)},
		{Username: "acme", Success: false, IP: "10.0.0.2", CreatedAt: now.Add(-1 * time.Minute)},
	}

	count, err := service.CountRecentFailures(context.Background(), "10.0.0.1", params.FailedAttemptWindow)
	if err != nil {
		t.Fatalf("CountRecentFailures returned error: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 failure inside the window for that IP", count)
	}
}

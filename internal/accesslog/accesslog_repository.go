package accesslog

import (
	"context"
	"time"

	"github.com/datalume/partners-portal/model"
	"gorm.io/gorm"
)

type AccessLogRepository interface {
	Create(ctx context.Context, log *model.AccessLog) error
	FindByTimeRange(ctx context.Context, start, end time.Time) ([]*model.AccessLog, error)
}

type accessLogRepository struct {
	db *gorm.DB
}

func (r *accessLogRepository) Create(ctx context.Context, log *model.AccessLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindByTimeRange returns rows with start <= created_at < end, newest first.
func (r *accessLogRepository) FindByTimeRange(ctx context.Context, start, end time.Time) ([]*model.AccessLog, error) {
	var rows []*model.AccessLog
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func NewAccessLogRepository(db *gorm.DB) AccessLogRepository {
	return &accessLogRepository{db}
}

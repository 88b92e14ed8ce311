package attempts

import (
	"context"
	"time"

	"github.com/datalume/partners-portal/model"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	Create(ctx context.Context, attempt *model.LoginAttempt) error
	Find(ctx context.Context, onlyFailed bool, limit int) ([]*model.LoginAttempt, error)
	CountFailedByIP(ctx context.Context, ip string, since time.Time) (int64, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func (r *attemptRepository) Create(ctx context.Context, attempt *model.LoginAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *attemptRepository) Find(ctx context.Context, onlyFailed bool, limit int) ([]*model.LoginAttempt, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if onlyFailed {
		query = query.Where("success = ?", false)
	}
	var rows []*model.LoginAttempt
	err := query.Find(&rows).Error
	return rows, err
}

func (r *attemptRepository) CountFailedByIP(ctx context.Context, ip string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.LoginAttempt{}).
		Where("ip = ? AND success = ? AND created_at >= ?", ip, false, since).
		Count(&count).Error
	return count, err
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db}
}

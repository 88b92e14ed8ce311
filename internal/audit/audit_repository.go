package audit

import (
	"context"
	"time"

	"github.com/datalume/partners-portal/model"
	"gorm.io/gorm"
)

type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditEntry) error
	Find(ctx context.Context, start, end *time.Time, limit int) ([]*model.AuditEntry, error)
}

type auditRepository struct {
	db *gorm.DB
}

func (r *auditRepository) Create(ctx context.Context, entry *model.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepository) Find(ctx context.Context, start, end *time.Time, limit int) ([]*model.AuditEntry, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if start != nil {
		query = query.Where("created_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("created_at <= ?", *end)
	}
	var rows []*model.AuditEntry
	err := query.Find(&rows).Error
	return rows, err
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db}
}

package auth

import (
	"context"
	"time"

	"github.com/datalume/partners-portal/model"
	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	FirstValidByToken(ctx context.Context, token string, now time.Time) (*model.Session, error)
	DeleteByToken(ctx context.Context, token string) (int64, error)
	DeleteByClientID(ctx context.Context, clientID string) (int64, error)
	FindActive(ctx context.Context, now time.Time) ([]*model.Session, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func (r *sessionRepository) Create(ctx context.Context, session *model.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) FirstValidByToken(ctx context.Context, token string, now time.Time) (*model.Session, error) {
	var session model.Session
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("token = ? AND expires_at > ?", token, now).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) DeleteByToken(ctx context.Context, token string) (int64, error) {
	ret := r.db.WithContext(ctx).Where("token = ?", token).Delete(&model.Session{})
	return ret.RowsAffected, ret.Error
}

func (r *sessionRepository) DeleteByClientID(ctx context.Context, clientID string) (int64, error) {
	ret := r.db.WithContext(ctx).Where("client_id = ?", clientID).Delete(&model.Session{})
	return ret.RowsAffected, ret.Error
}

func (r *sessionRepository) FindActive(ctx context.Context, now time.Time) ([]*model.Session, error) {
	var sessions []*model.Session
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("expires_at > ?", now).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ret := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&model.Session{})
	return ret.RowsAffected, ret.Error
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db}
}

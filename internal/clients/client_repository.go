package clients

import (
	"context"

	"github.com/datalume/partners-portal/model"
	"gorm.io/gorm"
)

type ClientRepository interface {
	Find(ctx context.Context) ([]*model.Client, error)
	FirstByID(ctx context.Context, id string) (*model.Client, error)
	FirstActiveByUsername(ctx context.Context, username string) (*model.Client, error)
	Create(ctx context.Context, client *model.Client) error
	Updates(ctx context.Context, id string, columns map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	NamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
}

type clientRepository struct {
	db *gorm.DB
}

func (r *clientRepository) Find(ctx context.Context) ([]*model.Client, error) {
	var rows []*model.Client
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *clientRepository) FirstByID(ctx context.Context, id string) (*model.Client, error) {
	var client model.Client
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) FirstActiveByUsername(ctx context.Context, username string) (*model.Client, error) {
	var client model.Client
	err := r.db.WithContext(ctx).
		Where("username = ? AND is_active = ?", username, true).
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *clientRepository) Updates(ctx context.Context, id string, columns map[string]interface{}) (int64, error) {
	ret := r.db.WithContext(ctx).Model(&model.Client{}).Where("id = ?", id).Updates(columns)
	return ret.RowsAffected, ret.Error
}

func (r *clientRepository) Delete(ctx context.Context, id string) (int64, error) {
	ret := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Client{})
	return ret.RowsAffected, ret.Error
}

func (r *clientRepository) NamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	var rows []*model.Client
	err := r.db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(rows))
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db}
}

package postgres

import (
	"context"
	"fmt"

	"github.com/formacode/course-service/internal/models"
	"github.com/formacode/course-service/internal/repositories"
	"gorm.io/gorm"
)

type ItemPostgreSQL struct {
	db *gorm.DB
}

func NewItemPostgreSQL(db *gorm.DB) repositories.ItemRepository {
	return &ItemPostgreSQL{db: db}
}

func (i *ItemPostgreSQL) Create(ctx context.Context, item *models.Item) error {
	if err := i.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

func (i *ItemPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	if err := i.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (i *ItemPostgreSQL) ListByModules(ctx context.Context, moduleIDs []uint) ([]*models.Item, error) {
	if len(moduleIDs) == 0 {
		return nil, nil
	}
	var items []*models.Item
	err := i.db.WithContext(ctx).
		Where("module_id IN ?", moduleIDs).
		Order("module_id ASC, position ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

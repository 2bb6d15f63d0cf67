package postgres

import (
	"context"
	"fmt"

	"github.com/formacode/course-service/internal/models"
	"github.com/formacode/course-service/internal/repositories"
	"gorm.io/gorm"
)

type ChapterPostgreSQL struct {
	db *gorm.DB
}

func NewChapterPostgreSQL(db *gorm.DB) repositories.ChapterRepository {
	return &ChapterPostgreSQL{db: db}
}

func (c *ChapterPostgreSQL) Create(ctx context.Context, chapter *models.Chapter) error {
	if err := c.db.WithContext(ctx).Create(chapter).Error; err != nil {
		return fmt.Errorf("failed to create chapter: %w", err)
	}
	return nil
}

func (c *ChapterPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Chapter, error) {
	var chapter models.Chapter
	if err := c.db.WithContext(ctx).First(&chapter, id).Error; err != nil {
		return nil, err
	}
	return &chapter, nil
}

func (c *ChapterPostgreSQL) ListByItems(ctx context.Context, itemIDs []uint) ([]*models.Chapter, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var chapters []*models.Chapter
	err := c.db.WithContext(ctx).
		Where("item_id IN ?", itemIDs).
		Order("item_id ASC, position ASC, id ASC").
		Find(&chapters).Error
	if err != nil {
		return nil, err
	}
	return chapters, nil
}

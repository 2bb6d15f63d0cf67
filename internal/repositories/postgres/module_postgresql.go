package postgres

import (
	"context"
	"fmt"

	"github.com/formacode/course-service/internal/models"
	"github.com/formacode/course-service/internal/repositories"
	"gorm.io/gorm"
)

type ModulePostgreSQL struct {
	db *gorm.DB
}

func NewModulePostgreSQL(db *gorm.DB) repositories.ModuleRepository {
	return &ModulePostgreSQL{db: db}
}

func (m *ModulePostgreSQL) Create(ctx context.Context, module *models.Module) error {
	if err := m.db.WithContext(ctx).Create(module).Error; err != nil {
		return fmt.Errorf("failed to create module: %w", err)
	}
	return nil
}

func (m *ModulePostgreSQL) ListByCourse(ctx context.Context, courseID uint) ([]*models.Module, error) {
	var modules []*models.Module
	err := m.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC, id ASC").
		Find(&modules).Error
	if err != nil {
		return nil, err
	}
	return modules, nil
}

// DeleteByCourse removes the whole subtree under a course: chapters first,
// then items, then modules, so no orphaned child rows survive on stores
// without FK cascades.
func (m *ModulePostgreSQL) DeleteByCourse(ctx context.Context, courseID uint) error {
	db := m.db.WithContext(ctx)

	moduleIDs := db.Model(&models.Module{}).Select("id").Where("course_id = ?", courseID)
	itemIDs := db.Model(&models.Item{}).Select("id").Where("module_id IN (?)", moduleIDs)

	if err := db.Where("item_id IN (?)", itemIDs).Delete(&models.Chapter{}).Error; err != nil {
		return fmt.Errorf("failed to delete chapters: %w", err)
	}
	if err := db.Where("module_id IN (?)", moduleIDs).Delete(&models.Item{}).Error; err != nil {
		return fmt.Errorf("failed to delete items: %w", err)
	}
	if err := db.Where("course_id = ?", courseID).Delete(&models.Module{}).Error; err != nil {
		return fmt.Errorf("failed to delete modules: %w", err)
	}
	return nil
}

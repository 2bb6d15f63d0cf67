package postgres

import (
	"context"
	"fmt"

	"github.com/formacode/course-service/internal/models"
	"github.com/formacode/course-service/internal/repositories"
	"gorm.io/gorm"
)

type CoursePostgreSQL struct {
	db *gorm.DB
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{db: db}
}

// Create inserts a new course row; the store assigns the ID.
func (c *CoursePostgreSQL) Create(ctx context.Context, course *models.Course) error {
	if course.Status == "" {
		course.Status = models.CourseDraft
	}
	if course.AccessType == "" {
		course.AccessType = models.AccessFree
	}
	if err := c.db.WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

// GetByID retrieves a course row without its subtree.
func (c *CoursePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	if err := c.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// Update saves the course row fields; the subtree is untouched.
func (c *CoursePostgreSQL) Update(ctx context.Context, course *models.Course) error {
	if err := c.db.WithContext(ctx).Save(course).Error; err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	return nil
}

// Delete soft deletes a course and hard deletes its subtree.
func (c *CoursePostgreSQL) Delete(ctx context.Context, id uint) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := NewModulePostgreSQL(tx).DeleteByCourse(ctx, id); err != nil {
			return err
		}
		return tx.Delete(&models.Course{}, id).Error
	})
}

// List retrieves courses with filters and pagination.
func (c *CoursePostgreSQL) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	query := c.db.WithContext(ctx).Model(&models.Course{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortOrder := filters.SortOrder
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(sortColumn(filters.SortBy) + " " + sortOrder)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var courses []*models.Course
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

// sortColumn maps the requested sort key onto a known column. Anything else
// falls back to created_at so caller input never reaches the order clause.
func sortColumn(sortBy string) string {
	switch sortBy {
	case "title", "created_at":
		return sortBy
	default:
		return "created_at"
	}
}

// Exists reports whether a course row exists.
func (c *CoursePostgreSQL) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := c.db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

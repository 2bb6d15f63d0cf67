package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/formacode/course-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type CourseFilters struct {
	Status    *models.CourseStatus `json:"status"`
	CreatedBy *string              `json:"created_by"`
	DateFrom  *time.Time           `json:"date_from"`
	DateTo    *time.Time           `json:"date_to"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"`    // "created_at", "title"
	SortOrder string               `json:"sort_order"` // "asc", "desc"
}

// ===== PER-ENTITY INTERFACES =====

// CourseRepository owns the course root rows. IDs are assigned by the store;
// callers never supply them on create.
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters CourseFilters) ([]*models.Course, int64, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

// ModuleRepository owns course-scoped module rows, ordered by position.
type ModuleRepository interface {
	Create(ctx context.Context, module *models.Module) error
	ListByCourse(ctx context.Context, courseID uint) ([]*models.Module, error)

	// DeleteByCourse removes every module of a course along with its items
	// and chapters. This is the importer's subtree-replace step.
	DeleteByCourse(ctx context.Context, courseID uint) error
}

// ItemRepository owns module-scoped item rows, ordered by position.
type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uint) (*models.Item, error)

	// ListByModules loads the items of several modules in one batched query,
	// ordered by position; the exporter groups the result by module ID.
	ListByModules(ctx context.Context, moduleIDs []uint) ([]*models.Item, error)
}

// ChapterRepository owns item-scoped chapter rows, ordered by position.
type ChapterRepository interface {
	Create(ctx context.Context, chapter *models.Chapter) error
	GetByID(ctx context.Context, id uint) (*models.Chapter, error)

	// ListByItems loads the chapters of several items in one batched query,
	// ordered by position; the exporter groups the result by item ID.
	ListByItems(ctx context.Context, itemIDs []uint) ([]*models.Chapter, error)
}

// Repository aggregates the per-entity repositories behind one handle.
type Repository interface {
	Course() CourseRepository
	Module() ModuleRepository
	Item() ItemRepository
	Chapter() ChapterRepository

	// WithTransaction runs fn against a repository bound to a single
	// transaction. fn returning an error rolls everything back; the importer
	// relies on this for its all-or-nothing subtree replace.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// IsNotFoundError checks if error represents a "not found" condition
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

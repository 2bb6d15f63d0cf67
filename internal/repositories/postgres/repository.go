package postgres

import (
	"context"

	"github.com/formacode/course-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	db      *gorm.DB
	course  repositories.CourseRepository
	module  repositories.ModuleRepository
	item    repositories.ItemRepository
	chapter repositories.ChapterRepository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:      db,
		course:  NewCoursePostgreSQL(db),
		module:  NewModulePostgreSQL(db),
		item:    NewItemPostgreSQL(db),
		chapter: NewChapterPostgreSQL(db),
	}
}

func (r *Repository) Course() repositories.CourseRepository   { return r.course }
func (r *Repository) Module() repositories.ModuleRepository   { return r.module }
func (r *Repository) Item() repositories.ItemRepository       { return r.item }
func (r *Repository) Chapter() repositories.ChapterRepository { return r.chapter }

// WithTransaction binds a fresh repository to one database transaction. Any
// error from fn rolls the whole transaction back.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

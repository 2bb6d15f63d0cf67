package services

import (
	"context"
	"errors"
	"sort"

	"gorm.io/gorm"

	"github.com/formacode/course-service/internal/models"
	"github.com/formacode/course-service/internal/repositories"
)

// fakeStore is an in-memory stand-in for the relational store. Transactions
// are modeled with a full snapshot: a failing transaction restores the
// pre-transaction state, which is exactly the visible behavior the importer
// depends on.
type fakeStore struct {
	nextID   uint
	courses  map[uint]models.Course
	modules  map[uint]models.Module
	items    map[uint]models.Item
	chapters map[uint]models.Chapter
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		courses:  make(map[uint]models.Course),
		modules:  make(map[uint]models.Module),
		items:    make(map[uint]models.Item),
		chapters: make(map[uint]models.Chapter),
	}
}

func (st *fakeStore) clone() *fakeStore {
	out := &fakeStore{
		nextID:   st.nextID,
		courses:  make(map[uint]models.Course, len(st.courses)),
		modules:  make(map[uint]models.Module, len(st.modules)),
		items:    make(map[uint]models.Item, len(st.items)),
		chapters: make(map[uint]models.Chapter, len(st.chapters)),
	}
	for k, v := range st.courses {
		out.courses[k] = v
	}
	for k, v := range st.modules {
		out.modules[k] = v
	}
	for k, v := range st.items {
		out.items[k] = v
	}
	for k, v := range st.chapters {
		out.chapters[k] = v
	}
	return out
}

func (st *fakeStore) id() uint {
	st.nextID++
	return st.nextID
}

// fakeRepo implements repositories.Repository against a fakeStore.
// failItemCreateAt injects a storage error on the Nth item create (1-based),
// for exercising rollback behavior.
type fakeRepo struct {
	store            *fakeStore
	itemCreates      int
	failItemCreateAt int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{store: newFakeStore()}
}

func (r *fakeRepo) Course() repositories.CourseRepository   { return (*fakeCourseRepo)(r) }
func (r *fakeRepo) Module() repositories.ModuleRepository   { return (*fakeModuleRepo)(r) }
func (r *fakeRepo) Item() repositories.ItemRepository       { return (*fakeItemRepo)(r) }
func (r *fakeRepo) Chapter() repositories.ChapterRepository { return (*fakeChapterRepo)(r) }

func (r *fakeRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	snapshot := r.store.clone()
	if err := fn(r); err != nil {
		r.store = snapshot
		return err
	}
	return nil
}

func (r *fakeRepo) Ping(ctx context.Context) error { return nil }
func (r *fakeRepo) Close() error                   { return nil }

// ----- courses -----

type fakeCourseRepo fakeRepo

func (r *fakeCourseRepo) Create(ctx context.Context, course *models.Course) error {
	course.ID = r.store.id()
	if course.Status == "" {
		course.Status = models.CourseDraft
	}
	if course.AccessType == "" {
		course.AccessType = models.AccessFree
	}
	r.store.courses[course.ID] = *course
	return nil
}

func (r *fakeCourseRepo) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	course, ok := r.store.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &course, nil
}

func (r *fakeCourseRepo) Update(ctx context.Context, course *models.Course) error {
	if _, ok := r.store.courses[course.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.store.courses[course.ID] = *course
	return nil
}

func (r *fakeCourseRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := r.store.courses[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	if err := ((*fakeModuleRepo)(r)).DeleteByCourse(ctx, id); err != nil {
		return err
	}
	delete(r.store.courses, id)
	return nil
}

func (r *fakeCourseRepo) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	var out []*models.Course
	for id := range r.store.courses {
		course := r.store.courses[id]
		if filters.Status != nil && course.Status != *filters.Status {
			continue
		}
		if filters.CreatedBy != nil && course.CreatedBy != *filters.CreatedBy {
			continue
		}
		out = append(out, &course)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeCourseRepo) Exists(ctx context.Context, id uint) (bool, error) {
	_, ok := r.store.courses[id]
	return ok, nil
}

// ----- modules -----

type fakeModuleRepo fakeRepo

func (r *fakeModuleRepo) Create(ctx context.Context, module *models.Module) error {
	module.ID = r.store.id()
	r.store.modules[module.ID] = *module
	return nil
}

func (r *fakeModuleRepo) ListByCourse(ctx context.Context, courseID uint) ([]*models.Module, error) {
	var out []*models.Module
	for id := range r.store.modules {
		module := r.store.modules[id]
		if module.CourseID == courseID {
			out = append(out, &module)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeModuleRepo) DeleteByCourse(ctx context.Context, courseID uint) error {
	for moduleID, module := range r.store.modules {
		if module.CourseID != courseID {
			continue
		}
		for itemID, item := range r.store.items {
			if item.ModuleID != moduleID {
				continue
			}
			for chapterID, chapter := range r.store.chapters {
				if chapter.ItemID == itemID {
					delete(r.store.chapters, chapterID)
				}
			}
			delete(r.store.items, itemID)
		}
		delete(r.store.modules, moduleID)
	}
	return nil
}

// ----- items -----

type fakeItemRepo fakeRepo

var errInjectedItemFailure = errors.New("injected item storage failure")

func (r *fakeItemRepo) Create(ctx context.Context, item *models.Item) error {
	r.itemCreates++
	if r.failItemCreateAt > 0 && r.itemCreates == r.failItemCreateAt {
		return errInjectedItemFailure
	}
	item.ID = r.store.id()
	r.store.items[item.ID] = *item
	return nil
}

func (r *fakeItemRepo) GetByID(ctx context.Context, id uint) (*models.Item, error) {
	item, ok := r.store.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &item, nil
}

func (r *fakeItemRepo) ListByModules(ctx context.Context, moduleIDs []uint) ([]*models.Item, error) {
	if len(moduleIDs) == 0 {
		return nil, nil
	}
	wanted := make(map[uint]bool, len(moduleIDs))
	for _, id := range moduleIDs {
		wanted[id] = true
	}
	var out []*models.Item
	for id := range r.store.items {
		item := r.store.items[id]
		if wanted[item.ModuleID] {
			out = append(out, &item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ModuleID != out[j].ModuleID {
			return out[i].ModuleID < out[j].ModuleID
		}
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ----- chapters -----

type fakeChapterRepo fakeRepo

func (r *fakeChapterRepo) Create(ctx context.Context, chapter *models.Chapter) error {
	chapter.ID = r.store.id()
	r.store.chapters[chapter.ID] = *chapter
	return nil
}

func (r *fakeChapterRepo) GetByID(ctx context.Context, id uint) (*models.Chapter, error) {
	chapter, ok := r.store.chapters[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &chapter, nil
}

func (r *fakeChapterRepo) ListByItems(ctx context.Context, itemIDs []uint) ([]*models.Chapter, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	wanted := make(map[uint]bool, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = true
	}
	var out []*models.Chapter
	for id := range r.store.chapters {
		chapter := r.store.chapters[id]
		if wanted[chapter.ItemID] {
			out = append(out, &chapter)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ItemID != out[j].ItemID {
			return out[i].ItemID < out[j].ItemID
		}
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

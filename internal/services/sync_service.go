package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/formacode/course-service/internal/cache"
	apperrors "github.com/formacode/course-service/internal/errors"
	"github.com/formacode/course-service/internal/events"
	"github.com/formacode/course-service/internal/games"
	"github.com/formacode/course-service/internal/models"
	"github.com/formacode/course-service/internal/repositories"
	"github.com/formacode/course-service/internal/validator"
)

// SyncService converts course trees between their relational form and the
// portable JSON document form. Both directions share one contract: the
// document's array order is authoritative for sibling ordering, stored
// positions are derived from it and never trusted on input.
type SyncService interface {
	// ImportCourse validates the whole document, then writes the tree in one
	// transaction. With existingCourseID set, the course row is updated in
	// place and its previous subtree replaced wholesale. Returns the course ID.
	ImportCourse(ctx context.Context, doc *models.CourseDocument, principalID string, existingCourseID *uint) (uint, error)

	// ExportCourse loads a stored tree and renders it as a document. The
	// result of exporting an unmodified import is stable: exporting, importing
	// and exporting again yields byte-identical JSON.
	ExportCourse(ctx context.Context, courseID uint) (*models.CourseDocument, error)

	// DeleteCourse removes a course and its whole subtree.
	DeleteCourse(ctx context.Context, courseID uint, principalID string) error

	// ListCourses returns course roots matching the filters plus the total
	// count before pagination.
	ListCourses(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error)
}

// SyncPolicy carries the deployment-tunable import defaults.
type SyncPolicy struct {
	// ChapterPublishedDefault applies when a chapter document omits the
	// published flag. Item visibility always defaults to published.
	ChapterPublishedDefault bool

	// ExportCacheTTL bounds how long a rendered export document is served
	// from cache before being rebuilt from the store.
	ExportCacheTTL time.Duration

	// AfterImport, when set, runs after a successful import commit. Deployments
	// use it for enrollment side effects. A failure is logged, not returned;
	// the import has already been persisted.
	AfterImport func(ctx context.Context, courseID uint, principalID string) error
}

func DefaultSyncPolicy() SyncPolicy {
	return SyncPolicy{
		ChapterPublishedDefault: true,
		ExportCacheTTL:          10 * time.Minute,
	}
}

type syncService struct {
	repo      repositories.Repository
	validator *validator.Validator
	registry  *games.Registry
	publisher events.EventPublisher
	cache     cache.CacheService
	policy    SyncPolicy
	logger    *slog.Logger
}

func NewSyncService(
	repo repositories.Repository,
	v *validator.Validator,
	registry *games.Registry,
	publisher events.EventPublisher,
	cacheService cache.CacheService,
	policy SyncPolicy,
	logger *slog.Logger,
) SyncService {
	return &syncService{
		repo:      repo,
		validator: v,
		registry:  registry,
		publisher: publisher,
		cache:     cacheService,
		policy:    policy,
		logger:    logger,
	}
}

func exportCacheKey(courseID uint) string {
	return fmt.Sprintf("course:export:%d", courseID)
}

// ===== IMPORT =====

func (s *syncService) ImportCourse(ctx context.Context, doc *models.CourseDocument, principalID string, existingCourseID *uint) (uint, error) {
	if doc == nil {
		return 0, fmt.Errorf("%w: document is required", ErrBadRequest)
	}

	course, verrs := s.buildTree(doc, principalID)
	if len(verrs) > 0 {
		s.logger.Warn("course document rejected",
			"principal_id", principalID,
			"error_count", len(verrs))
		return 0, verrs
	}

	replaced := existingCourseID != nil
	var courseID uint
	counts := treeCounts(course)

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if replaced {
			existing, err := txRepo.Course().GetByID(ctx, *existingCourseID)
			if err != nil {
				if repositories.IsNotFoundError(err) {
					return ErrCourseNotFound
				}
				return err
			}

			existing.Title = course.Title
			existing.Description = course.Description
			existing.Status = course.Status
			existing.AccessType = course.AccessType
			existing.PriceCents = course.PriceCents
			existing.Currency = course.Currency
			if err := txRepo.Course().Update(ctx, existing); err != nil {
				return err
			}
			if err := txRepo.Module().DeleteByCourse(ctx, existing.ID); err != nil {
				return err
			}
			courseID = existing.ID
		} else {
			row := *course
			row.Modules = nil
			if err := txRepo.Course().Create(ctx, &row); err != nil {
				return err
			}
			courseID = row.ID
		}

		return s.insertSubtree(ctx, txRepo, courseID, course.Modules)
	})
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return 0, err
		}
		return 0, NewPersistenceError("course import", courseID, true, err)
	}

	s.invalidateExport(ctx, courseID)

	if s.policy.AfterImport != nil {
		if err := s.policy.AfterImport(ctx, courseID, principalID); err != nil {
			s.logger.Warn("after-import hook failed",
				"course_id", courseID, "error", err)
		}
	}

	event := events.NewCourseImportedEvent(events.CourseImportedEvent{
		CourseID:     courseID,
		CourseTitle:  course.Title,
		PrincipalID:  principalID,
		ModuleCount:  counts.modules,
		ItemCount:    counts.items,
		ChapterCount: counts.chapters,
		Replaced:     replaced,
	})
	if err := s.publisher.PublishCourseEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish course.imported event",
			"course_id", courseID, "error", err)
	}

	s.logger.Info("course imported",
		"course_id", courseID,
		"principal_id", principalID,
		"modules", counts.modules,
		"items", counts.items,
		"chapters", counts.chapters,
		"replaced", replaced)

	return courseID, nil
}

// buildTree walks the document once, collecting every validation issue and
// building the relational rows in parallel. Positions come from array order;
// positions carried by the document are ignored.
func (s *syncService) buildTree(doc *models.CourseDocument, principalID string) (*models.Course, apperrors.ValidationErrors) {
	var verrs apperrors.ValidationErrors

	course := &models.Course{
		Title:       strings.TrimSpace(doc.Title),
		Description: doc.Description,
		PriceCents:  doc.PriceCents,
		Currency:    doc.Currency,
		CreatedBy:   principalID,
	}

	status, err := normalizeCourseStatus(doc.Status)
	if err != nil {
		verrs = append(verrs, apperrors.ValidationError{Field: "status", Message: "must be draft or published", Value: doc.Status, Rule: "closed_enum"})
	}
	course.Status = status

	access, err := normalizeAccessType(doc.AccessType)
	if err != nil {
		verrs = append(verrs, apperrors.ValidationError{Field: "access_type", Message: "must be free, paid or invite", Value: doc.AccessType, Rule: "closed_enum"})
	}
	course.AccessType = access

	row := *course
	row.Modules = nil
	verrs = append(verrs, s.structErrors(&row, "")...)

	for mi, moduleDoc := range doc.Modules {
		modulePath := fmt.Sprintf("modules[%d]", mi)
		module := models.Module{
			Title:    strings.TrimSpace(moduleDoc.Title),
			Position: mi,
		}
		verrs = append(verrs, s.structErrors(&module, modulePath)...)

		for ii, itemDoc := range moduleDoc.Items {
			itemPath := fmt.Sprintf("%s.items[%d]", modulePath, ii)
			item, itemErrs := s.buildItem(&itemDoc, itemPath, ii)
			verrs = append(verrs, itemErrs...)
			module.Items = append(module.Items, item)
		}

		course.Modules = append(course.Modules, module)
	}

	return course, verrs
}

func (s *syncService) buildItem(doc *models.ItemDocument, path string, position int) (models.Item, apperrors.ValidationErrors) {
	var verrs apperrors.ValidationErrors

	item := models.Item{
		Title:       strings.TrimSpace(doc.Title),
		AssetPath:   doc.AssetPath,
		ExternalURL: doc.ExternalURL,
		Position:    position,
		Published:   true,
	}
	if doc.Published != nil {
		item.Published = *doc.Published
	}

	itemType, err := validator.NormalizeItemType(doc.Type)
	if err != nil {
		var ite *apperrors.InvalidTypeError
		if errors.As(err, &ite) {
			verrs = append(verrs, ite.AsValidationError(path+".type"))
		} else {
			verrs = append(verrs, apperrors.ValidationError{Field: path + ".type", Message: err.Error(), Value: doc.Type})
		}
	}
	item.Type = itemType

	// The type error is already reported with the raw value; skip the tag
	// error the empty normalized type would add on top.
	skip := []string(nil)
	if err != nil {
		skip = []string{"type"}
	}
	verrs = append(verrs, s.structErrors(&item, path, skip...)...)

	content := doc.Content
	if itemType == models.ItemGame {
		unwrapped, gerrs := s.checkGamePayload(content, path+".content")
		verrs = append(verrs, gerrs...)
		content = unwrapped
	}
	if len(content) > 0 {
		raw, err := json.Marshal(content)
		if err != nil {
			verrs = append(verrs, apperrors.ValidationError{Field: path + ".content", Message: "is not serializable", Rule: "json"})
		} else {
			item.Content = datatypes.JSON(raw)
		}
	}

	for ci, chapterDoc := range doc.Chapters {
		chapterPath := fmt.Sprintf("%s.chapters[%d]", path, ci)
		chapter, chErrs := s.buildChapter(&chapterDoc, chapterPath, ci)
		verrs = append(verrs, chErrs...)
		item.Chapters = append(item.Chapters, chapter)
	}

	return item, verrs
}

func (s *syncService) buildChapter(doc *models.ChapterDocument, path string, position int) (models.Chapter, apperrors.ValidationErrors) {
	var verrs apperrors.ValidationErrors

	chapter := models.Chapter{
		Title:     strings.TrimSpace(doc.Title),
		Kind:      validator.NormalizeChapterKind(doc.Type),
		Position:  position,
		Published: s.policy.ChapterPublishedDefault,
	}
	if doc.Published != nil {
		chapter.Published = *doc.Published
	}

	verrs = append(verrs, s.structErrors(&chapter, path)...)

	// A payload the resolved kind does not select is an error, not a silent
	// drop. This also catches game_content on a chapter whose type was
	// omitted and defaulted to content.
	if chapter.Kind == models.ChapterGame {
		unwrapped, gerrs := s.checkGamePayload(doc.GameContent, path+".game_content")
		verrs = append(verrs, gerrs...)
		if len(unwrapped) > 0 {
			if raw, err := json.Marshal(unwrapped); err == nil {
				chapter.GameContent = datatypes.JSON(raw)
			}
		}
		if len(doc.Content) > 0 {
			verrs = append(verrs, apperrors.ValidationError{
				Field:   path + ".content",
				Message: "is not allowed on a game chapter",
				Rule:    "exclusive_payload",
			})
		}
	} else {
		if len(doc.Content) > 0 {
			chapter.Body = datatypes.JSON(doc.Content)
		}
		if len(doc.GameContent) > 0 {
			verrs = append(verrs, apperrors.ValidationError{
				Field:   path + ".game_content",
				Message: "requires the chapter type \"game\"",
				Rule:    "exclusive_payload",
			})
		}
	}

	return chapter, verrs
}

// structErrors runs tag validation on a built row and scopes the resulting
// field names under the node's document path.
func (s *syncService) structErrors(row interface{}, path string, skipFields ...string) apperrors.ValidationErrors {
	err := s.validator.ValidateStruct(row)
	if err == nil {
		return nil
	}

	var out apperrors.ValidationErrors
	for _, e := range apperrors.ToValidationErrors(err) {
		skipped := false
		for _, f := range skipFields {
			if e.Field == f {
				skipped = true
				break
			}
		}
		if skipped {
			continue
		}
		if path != "" {
			e.Field = path + "." + e.Field
		}
		out = append(out, e)
	}
	return out
}

// checkGamePayload validates a game config against the registry and returns
// it unwrapped. Every issue is reported under the node's document path.
func (s *syncService) checkGamePayload(config map[string]interface{}, path string) (map[string]interface{}, apperrors.ValidationErrors) {
	if err := s.registry.ValidateConfig(config); err != nil {
		return config, gameErrToValidation(err, path)
	}
	unwrapped, err := games.Unwrap(config)
	if err != nil {
		return config, gameErrToValidation(err, path)
	}
	return unwrapped, nil
}

func gameErrToValidation(err error, path string) apperrors.ValidationErrors {
	var ite *apperrors.InvalidTypeError
	if errors.As(err, &ite) {
		return apperrors.ValidationErrors{ite.AsValidationError(path + "." + models.GameTypeKey)}
	}
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		scoped := *ve
		scoped.Field = path + "." + ve.Field
		return apperrors.ValidationErrors{scoped}
	}
	return apperrors.ValidationErrors{{Field: path, Message: err.Error()}}
}

// insertSubtree writes modules, items and chapters row by row inside the
// caller's transaction so generated IDs flow down to children.
func (s *syncService) insertSubtree(ctx context.Context, txRepo repositories.Repository, courseID uint, modules []models.Module) error {
	for mi := range modules {
		module := modules[mi]
		items := module.Items
		module.Items = nil
		module.CourseID = courseID
		if err := txRepo.Module().Create(ctx, &module); err != nil {
			return err
		}

		for ii := range items {
			item := items[ii]
			chapters := item.Chapters
			item.Chapters = nil
			item.ModuleID = module.ID
			if err := txRepo.Item().Create(ctx, &item); err != nil {
				return err
			}

			for ci := range chapters {
				chapter := chapters[ci]
				chapter.ItemID = item.ID
				if err := txRepo.Chapter().Create(ctx, &chapter); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

type subtreeCounts struct {
	modules, items, chapters int
}

func treeCounts(course *models.Course) subtreeCounts {
	var c subtreeCounts
	c.modules = len(course.Modules)
	for _, m := range course.Modules {
		c.items += len(m.Items)
		for _, i := range m.Items {
			c.chapters += len(i.Chapters)
		}
	}
	return c
}

func normalizeCourseStatus(raw string) (models.CourseStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return models.CourseDraft, nil
	case string(models.CourseDraft):
		return models.CourseDraft, nil
	case string(models.CoursePublished):
		return models.CoursePublished, nil
	}
	return "", apperrors.NewInvalidTypeError(raw, []string{string(models.CourseDraft), string(models.CoursePublished)})
}

func normalizeAccessType(raw string) (models.AccessType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return models.AccessFree, nil
	case string(models.AccessFree):
		return models.AccessFree, nil
	case string(models.AccessPaid):
		return models.AccessPaid, nil
	case string(models.AccessInvite):
		return models.AccessInvite, nil
	}
	return "", apperrors.NewInvalidTypeError(raw, []string{string(models.AccessFree), string(models.AccessPaid), string(models.AccessInvite)})
}

// ===== EXPORT =====

func (s *syncService) ExportCourse(ctx context.Context, courseID uint) (*models.CourseDocument, error) {
	if s.cache != nil {
		var cached models.CourseDocument
		if err := s.cache.Get(ctx, exportCacheKey(courseID), &cached); err == nil {
			return &cached, nil
		}
	}

	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	modules, err := s.repo.Module().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	moduleIDs := make([]uint, 0, len(modules))
	for _, m := range modules {
		moduleIDs = append(moduleIDs, m.ID)
	}
	items, err := s.repo.Item().ListByModules(ctx, moduleIDs)
	if err != nil {
		return nil, err
	}

	itemIDs := make([]uint, 0, len(items))
	itemsByModule := make(map[uint][]*models.Item)
	for _, it := range items {
		itemIDs = append(itemIDs, it.ID)
		itemsByModule[it.ModuleID] = append(itemsByModule[it.ModuleID], it)
	}

	chapters, err := s.repo.Chapter().ListByItems(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	chaptersByItem := make(map[uint][]*models.Chapter)
	for _, ch := range chapters {
		chaptersByItem[ch.ItemID] = append(chaptersByItem[ch.ItemID], ch)
	}

	doc := &models.CourseDocument{
		Title:       course.Title,
		Description: course.Description,
		Status:      string(course.Status),
		AccessType:  string(course.AccessType),
		PriceCents:  course.PriceCents,
		Currency:    course.Currency,
		Modules:     make([]models.ModuleDocument, 0, len(modules)),
	}

	for mi, module := range modules {
		moduleDoc := models.ModuleDocument{
			Title:    module.Title,
			Position: mi,
		}
		for ii, item := range itemsByModule[module.ID] {
			moduleDoc.Items = append(moduleDoc.Items, exportItem(item, ii, chaptersByItem[item.ID]))
		}
		doc.Modules = append(doc.Modules, moduleDoc)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, exportCacheKey(courseID), doc, s.policy.ExportCacheTTL); err != nil {
			s.logger.Warn("failed to cache export document", "course_id", courseID, "error", err)
		}
	}

	return doc, nil
}

func exportItem(item *models.Item, position int, chapters []*models.Chapter) models.ItemDocument {
	doc := models.ItemDocument{
		Type:        string(item.Type),
		Title:       item.Title,
		Position:    position,
		AssetPath:   item.AssetPath,
		ExternalURL: item.ExternalURL,
	}
	if !item.Published {
		published := false
		doc.Published = &published
	}
	if len(item.Content) > 0 {
		var content map[string]interface{}
		if err := json.Unmarshal(item.Content, &content); err == nil {
			doc.Content = content
		}
	}

	// Items without chapters keep the field absent so exporting an import of
	// a chapterless item stays byte-identical.
	for ci, ch := range chapters {
		doc.Chapters = append(doc.Chapters, exportChapter(ch, ci))
	}
	return doc
}

func exportChapter(chapter *models.Chapter, position int) models.ChapterDocument {
	doc := models.ChapterDocument{
		Title:    chapter.Title,
		Position: position,
	}
	if !chapter.Published {
		published := false
		doc.Published = &published
	}
	if chapter.Kind == models.ChapterGame {
		doc.Type = string(models.ChapterGame)
		if len(chapter.GameContent) > 0 {
			var content map[string]interface{}
			if err := json.Unmarshal(chapter.GameContent, &content); err == nil {
				doc.GameContent = content
			}
		}
	} else if len(chapter.Body) > 0 {
		doc.Content = json.RawMessage(chapter.Body)
	}
	return doc
}

// ===== DELETE =====

func (s *syncService) DeleteCourse(ctx context.Context, courseID uint, principalID string) error {
	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return err
	}

	if err := s.repo.Course().Delete(ctx, courseID); err != nil {
		return NewPersistenceError("course delete", courseID, true, err)
	}

	s.invalidateExport(ctx, courseID)

	event := events.NewCourseDeletedEvent(events.CourseDeletedEvent{
		CourseID:    courseID,
		CourseTitle: course.Title,
		PrincipalID: principalID,
	})
	if err := s.publisher.PublishCourseEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish course.deleted event",
			"course_id", courseID, "error", err)
	}

	s.logger.Info("course deleted", "course_id", courseID, "principal_id", principalID)
	return nil
}

func (s *syncService) ListCourses(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	return s.repo.Course().List(ctx, filters)
}

func (s *syncService) invalidateExport(ctx context.Context, courseID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, exportCacheKey(courseID)); err != nil {
		s.logger.Warn("failed to invalidate export cache", "course_id", courseID, "error", err)
	}
}

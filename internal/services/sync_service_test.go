package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/formacode/course-service/internal/errors"
	"github.com/formacode/course-service/internal/events"
	"github.com/formacode/course-service/internal/games"
	"github.com/formacode/course-service/internal/models"
	"github.com/formacode/course-service/internal/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type syncFixture struct {
	repo      *fakeRepo
	publisher *events.MockEventPublisher
	service   SyncService
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	logger := testLogger()
	repo := newFakeRepo()
	publisher := events.NewMockEventPublisher(logger)
	service := NewSyncService(
		repo,
		validator.New(),
		games.NewDefaultRegistry(logger),
		publisher,
		nil,
		DefaultSyncPolicy(),
		logger,
	)
	return &syncFixture{repo: repo, publisher: publisher, service: service}
}

func parseDoc(t *testing.T, raw string) *models.CourseDocument {
	t.Helper()
	var doc models.CourseDocument
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return &doc
}

// Positions in this document are deliberately scrambled: the importer must
// derive them from array order.
const sampleDoc = `{
	"title": "Introduction aux APIs",
	"description": "Les bases des APIs REST",
	"modules": [
		{
			"title": "Fondamentaux",
			"position": 7,
			"items": [
				{
					"type": "Ressource",
					"title": "Lire la documentation",
					"position": 42,
					"content": {"url": "https://example.org/doc"}
				},
				{
					"type": "exercice",
					"title": "Premier appel",
					"position": 3,
					"published": false,
					"chapters": [
						{"title": "Consignes", "position": 9},
						{
							"title": "Quiz final",
							"position": 1,
							"type": "jeu",
							"game_content": {
								"gameType": "matching",
								"pairs": [
									{"term": "GET", "definition": "Lecture"},
									{"term": "POST", "definition": "Creation"}
								]
							}
						}
					]
				}
			]
		},
		{
			"title": "Pratique",
			"position": 0,
			"items": [
				{
					"type": "tp",
					"title": "Construire un client",
					"position": 5
				}
			]
		}
	]
}`

func TestImportCourse_BuildsTreeWithDerivedPositions(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	courseID, err := f.service.ImportCourse(ctx, parseDoc(t, sampleDoc), "user-1", nil)
	require.NoError(t, err)
	require.NotZero(t, courseID)

	course, err := f.repo.Course().GetByID(ctx, courseID)
	require.NoError(t, err)
	assert.Equal(t, "Introduction aux APIs", course.Title)
	assert.Equal(t, models.CourseDraft, course.Status)
	assert.Equal(t, models.AccessFree, course.AccessType)
	assert.Equal(t, "user-1", course.CreatedBy)

	modules, err := f.repo.Module().ListByCourse(ctx, courseID)
	require.NoError(t, err)
	require.Len(t, modules, 2)
	assert.Equal(t, "Fondamentaux", modules[0].Title)
	assert.Equal(t, 0, modules[0].Position)
	assert.Equal(t, "Pratique", modules[1].Title)
	assert.Equal(t, 1, modules[1].Position)

	items, err := f.repo.Item().ListByModules(ctx, []uint{modules[0].ID})
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Type aliases are normalized, positions come from array order.
	assert.Equal(t, models.ItemResource, items[0].Type)
	assert.Equal(t, 0, items[0].Position)
	assert.True(t, items[0].Published)
	assert.Equal(t, models.ItemExercise, items[1].Type)
	assert.Equal(t, 1, items[1].Position)
	assert.False(t, items[1].Published)

	chapters, err := f.repo.Chapter().ListByItems(ctx, []uint{items[1].ID})
	require.NoError(t, err)
	require.Len(t, chapters, 2)
	assert.Equal(t, models.ChapterContent, chapters[0].Kind)
	assert.Equal(t, 0, chapters[0].Position)
	assert.Equal(t, models.ChapterGame, chapters[1].Kind)
	assert.Equal(t, 1, chapters[1].Position)
	assert.True(t, chapters[1].Published)

	require.Len(t, f.publisher.Events, 1)
	assert.Equal(t, events.EventCourseImported, f.publisher.Events[0].Type)
}

func TestImportCourse_AggregatesAllValidationErrors(t *testing.T) {
	f := newSyncFixture(t)

	doc := parseDoc(t, `{
		"title": "  ",
		"status": "archived",
		"modules": [
			{
				"title": "",
				"items": [
					{"type": "video", "title": "Broken"},
					{"type": "game", "title": "No payload"}
				]
			}
		]
	}`)

	_, err := f.service.ImportCourse(context.Background(), doc, "user-1", nil)
	require.Error(t, err)

	var verrs apperrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	fields := make(map[string]bool)
	for _, ve := range verrs {
		fields[ve.Field] = true
	}
	assert.True(t, fields["title"])
	assert.True(t, fields["status"])
	assert.True(t, fields["modules[0].title"])
	assert.True(t, fields["modules[0].items[0].type"])
	assert.True(t, fields["modules[0].items[1].content.gameType"])

	// Nothing reaches the store and no event fires on a rejected document.
	assert.Empty(t, f.repo.store.courses)
	assert.Empty(t, f.publisher.Events)
}

func TestImportCourse_RejectsPayloadNotSelectedByChapterKind(t *testing.T) {
	f := newSyncFixture(t)

	// The first chapter omits its type, so the kind defaults to content
	// while a game payload is present. The second declares the game kind
	// but also carries a content body. Neither payload may vanish quietly.
	doc := parseDoc(t, `{
		"title": "Course",
		"modules": [{"title": "M", "items": [{
			"type": "resource",
			"title": "Lecture",
			"chapters": [
				{"title": "Quiz", "game_content": {"gameType": "matching", "pairs": [{"term": "GET", "definition": "Lecture"}]}},
				{"title": "Notes", "type": "game", "game_content": {"gameType": "matching", "pairs": [{"term": "GET", "definition": "Lecture"}]}, "content": {"text": "intro"}}
			]
		}]}]
	}`)

	_, err := f.service.ImportCourse(context.Background(), doc, "user-1", nil)

	var verrs apperrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	fields := make(map[string]string)
	for _, ve := range verrs {
		fields[ve.Field] = ve.Rule
	}
	assert.Equal(t, "exclusive_payload", fields["modules[0].items[0].chapters[0].game_content"])
	assert.Equal(t, "exclusive_payload", fields["modules[0].items[0].chapters[1].content"])

	assert.Empty(t, f.repo.store.courses)
	assert.Empty(t, f.publisher.Events)
}

func TestImportCourse_InvalidTypeCarriesAllowedSet(t *testing.T) {
	f := newSyncFixture(t)

	doc := parseDoc(t, `{
		"title": "Course",
		"modules": [{"title": "M", "items": [{"type": "video", "title": "X"}]}]
	}`)

	_, err := f.service.ImportCourse(context.Background(), doc, "user-1", nil)

	var verrs apperrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "modules[0].items[0].type", verrs[0].Field)
	assert.Equal(t, "video", verrs[0].Value)
	assert.Equal(t, "closed_enum", verrs[0].Rule)
	assert.Contains(t, verrs[0].Message, "resource, slide, exercise, tp, game")
}

func TestImportCourse_ReplacesExistingSubtree(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	courseID, err := f.service.ImportCourse(ctx, parseDoc(t, sampleDoc), "user-1", nil)
	require.NoError(t, err)

	replacement := parseDoc(t, `{
		"title": "Introduction aux APIs v2",
		"modules": [{"title": "Nouveau module", "items": [{"type": "slide", "title": "Plan"}]}]
	}`)

	newID, err := f.service.ImportCourse(ctx, replacement, "user-1", &courseID)
	require.NoError(t, err)
	assert.Equal(t, courseID, newID)

	course, err := f.repo.Course().GetByID(ctx, courseID)
	require.NoError(t, err)
	assert.Equal(t, "Introduction aux APIs v2", course.Title)

	modules, err := f.repo.Module().ListByCourse(ctx, courseID)
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, "Nouveau module", modules[0].Title)

	// The old subtree is gone wholesale.
	assert.Len(t, f.repo.store.modules, 1)
	assert.Len(t, f.repo.store.items, 1)
	assert.Empty(t, f.repo.store.chapters)
}

func TestImportCourse_UnknownExistingCourse(t *testing.T) {
	f := newSyncFixture(t)

	missing := uint(999)
	_, err := f.service.ImportCourse(context.Background(), parseDoc(t, sampleDoc), "user-1", &missing)
	assert.ErrorIs(t, err, ErrCourseNotFound)
	assert.Empty(t, f.repo.store.courses)
}

func TestImportCourse_RollsBackOnPartialFailure(t *testing.T) {
	f := newSyncFixture(t)
	f.repo.failItemCreateAt = 2

	_, err := f.service.ImportCourse(context.Background(), parseDoc(t, sampleDoc), "user-1", nil)
	require.Error(t, err)
	assert.True(t, IsPersistence(err))

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.True(t, pe.RolledBack)

	// The failed import leaves no trace: no course row, no orphaned rows.
	assert.Empty(t, f.repo.store.courses)
	assert.Empty(t, f.repo.store.modules)
	assert.Empty(t, f.repo.store.items)
	assert.Empty(t, f.repo.store.chapters)
	assert.Empty(t, f.publisher.Events)
}

func TestImportCourse_UnwrapsDoubleWrappedGamePayload(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	doc := parseDoc(t, `{
		"title": "Games",
		"modules": [{"title": "M", "items": [{
			"type": "game",
			"title": "Matching",
			"content": {"game_content": {
				"gameType": "matching",
				"pairs": [{"term": "a", "definition": "b"}]
			}}
		}]}]
	}`)

	courseID, err := f.service.ImportCourse(ctx, doc, "user-1", nil)
	require.NoError(t, err)

	modules, err := f.repo.Module().ListByCourse(ctx, courseID)
	require.NoError(t, err)
	items, err := f.repo.Item().ListByModules(ctx, []uint{modules[0].ID})
	require.NoError(t, err)
	require.Len(t, items, 1)

	var stored map[string]interface{}
	require.NoError(t, json.Unmarshal(items[0].Content, &stored))
	assert.Equal(t, "matching", stored["gameType"])
	assert.NotContains(t, stored, "game_content")
}

func TestImportCourse_RejectsDeeplyNestedGamePayload(t *testing.T) {
	f := newSyncFixture(t)

	doc := parseDoc(t, `{
		"title": "Games",
		"modules": [{"title": "M", "items": [{
			"type": "game",
			"title": "Matching",
			"content": {"game_content": {"game_content": {
				"gameType": "matching",
				"pairs": [{"term": "a", "definition": "b"}]
			}}}
		}]}]
	}`)

	_, err := f.service.ImportCourse(context.Background(), doc, "user-1", nil)

	var verrs apperrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "modules[0].items[0].content.game_content", verrs[0].Field)
}

func TestExportCourse_RoundTripIsStable(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	courseID, err := f.service.ImportCourse(ctx, parseDoc(t, sampleDoc), "user-1", nil)
	require.NoError(t, err)

	first, err := f.service.ExportCourse(ctx, courseID)
	require.NoError(t, err)
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	// Importing the export and exporting again yields byte-identical JSON.
	secondID, err := f.service.ImportCourse(ctx, parseDoc(t, string(firstJSON)), "user-1", nil)
	require.NoError(t, err)

	second, err := f.service.ExportCourse(ctx, secondID)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)

	assert.Equal(t, string(firstJSON), string(secondJSON))
}

func TestExportCourse_OmitsChaptersForChapterlessItems(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	courseID, err := f.service.ImportCourse(ctx, parseDoc(t, sampleDoc), "user-1", nil)
	require.NoError(t, err)

	doc, err := f.service.ExportCourse(ctx, courseID)
	require.NoError(t, err)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var generic map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &generic))
	modules := generic["modules"].([]interface{})
	firstItems := modules[0].(map[string]interface{})["items"].([]interface{})

	// The resource item never had chapters: the key must be absent, not [].
	assert.NotContains(t, firstItems[0].(map[string]interface{}), "chapters")
	assert.Contains(t, firstItems[1].(map[string]interface{}), "chapters")
}

func TestExportCourse_NotFound(t *testing.T) {
	f := newSyncFixture(t)

	_, err := f.service.ExportCourse(context.Background(), 404)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestImportCourse_PreservesUnknownDocumentKeys(t *testing.T) {
	doc := parseDoc(t, `{
		"title": "Course",
		"x_editor_hint": "compact",
		"modules": []
	}`)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"x_editor_hint":"compact"`)
}

func TestDeleteCourse_RemovesSubtreeAndPublishes(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	courseID, err := f.service.ImportCourse(ctx, parseDoc(t, sampleDoc), "user-1", nil)
	require.NoError(t, err)
	f.publisher.ClearEvents()

	require.NoError(t, f.service.DeleteCourse(ctx, courseID, "user-1"))

	assert.Empty(t, f.repo.store.courses)
	assert.Empty(t, f.repo.store.modules)
	assert.Empty(t, f.repo.store.items)
	assert.Empty(t, f.repo.store.chapters)

	require.Len(t, f.publisher.Events, 1)
	assert.Equal(t, events.EventCourseDeleted, f.publisher.Events[0].Type)

	err = f.service.DeleteCourse(ctx, courseID, "user-1")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestImportCourse_Idempotence(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	courseID, err := f.service.ImportCourse(ctx, parseDoc(t, sampleDoc), "user-1", nil)
	require.NoError(t, err)

	exported, err := f.service.ExportCourse(ctx, courseID)
	require.NoError(t, err)
	exportedJSON, err := json.Marshal(exported)
	require.NoError(t, err)

	// Re-importing a course's own export over itself changes nothing visible.
	_, err = f.service.ImportCourse(ctx, parseDoc(t, string(exportedJSON)), "user-1", &courseID)
	require.NoError(t, err)

	again, err := f.service.ExportCourse(ctx, courseID)
	require.NoError(t, err)
	againJSON, err := json.Marshal(again)
	require.NoError(t, err)

	assert.Equal(t, string(exportedJSON), string(againJSON))
}

func TestImportCourse_RunsAfterImportHook(t *testing.T) {
	logger := testLogger()
	repo := newFakeRepo()
	publisher := events.NewMockEventPublisher(logger)

	var hookCourseID uint
	var hookPrincipal string
	policy := DefaultSyncPolicy()
	policy.AfterImport = func(ctx context.Context, courseID uint, principalID string) error {
		hookCourseID = courseID
		hookPrincipal = principalID
		return nil
	}
	service := NewSyncService(repo, validator.New(), games.NewDefaultRegistry(logger), publisher, nil, policy, logger)

	courseID, err := service.ImportCourse(context.Background(), parseDoc(t, sampleDoc), "user-7", nil)
	require.NoError(t, err)
	assert.Equal(t, courseID, hookCourseID)
	assert.Equal(t, "user-7", hookPrincipal)
}

func TestNormalizeCourseEnums(t *testing.T) {
	status, err := normalizeCourseStatus(" Published ")
	require.NoError(t, err)
	assert.Equal(t, models.CoursePublished, status)

	_, err = normalizeCourseStatus("archived")
	var ite *apperrors.InvalidTypeError
	assert.ErrorAs(t, err, &ite)

	access, err := normalizeAccessType("")
	require.NoError(t, err)
	assert.Equal(t, models.AccessFree, access)

	_, err = normalizeAccessType("premium")
	assert.Error(t, err)
}

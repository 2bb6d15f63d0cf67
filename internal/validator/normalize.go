package validator

import (
	"strings"
	"unicode"

	apperrors "github.com/formacode/course-service/internal/errors"
	"github.com/formacode/course-service/internal/models"
	"golang.org/x/text/unicode/norm"
)

// The editor and legacy import files are loose about type spelling: mixed
// case, surrounding whitespace, French and English synonyms, accented forms.
// Normalization maps all of those onto the closed enumerations. Item types
// never default; chapter kinds default to content.

var itemTypeAliases = map[string]models.ItemType{
	"resource":          models.ItemResource,
	"resources":         models.ItemResource,
	"ressource":         models.ItemResource,
	"document":          models.ItemResource,
	"slide":             models.ItemSlide,
	"slides":            models.ItemSlide,
	"diapo":             models.ItemSlide,
	"diaporama":         models.ItemSlide,
	"exercise":          models.ItemExercise,
	"exercice":          models.ItemExercise,
	"case-study":        models.ItemExercise,
	"case study":        models.ItemExercise,
	"etude de cas":      models.ItemExercise,
	"tp":                models.ItemTP,
	"travaux pratiques": models.ItemTP,
	"lab":               models.ItemTP,
	"practical":         models.ItemTP,
	"game":              models.ItemGame,
	"games":             models.ItemGame,
	"jeu":               models.ItemGame,
	"jeux":              models.ItemGame,
	"mini-game":         models.ItemGame,
	"mini-jeu":          models.ItemGame,
}

var chapterKindAliases = map[string]models.ChapterKind{
	"content":   models.ChapterContent,
	"contenu":   models.ChapterContent,
	"game":      models.ChapterGame,
	"jeu":       models.ChapterGame,
	"jeux":      models.ChapterGame,
	"mini-game": models.ChapterGame,
	"mini-jeu":  models.ChapterGame,
}

// NormalizeItemType maps a free-form item type string to the closed
// enumeration. Unmappable input is a hard InvalidTypeError, never a default.
func NormalizeItemType(raw string) (models.ItemType, error) {
	if t, ok := itemTypeAliases[canonical(raw)]; ok {
		return t, nil
	}

	allowed := make([]string, 0, len(models.AllItemTypes()))
	for _, t := range models.AllItemTypes() {
		allowed = append(allowed, string(t))
	}
	return "", apperrors.NewInvalidTypeError(raw, allowed)
}

// NormalizeChapterKind maps a free-form chapter type string to the closed
// enumeration. Missing or unrecognized input defaults to content; chapters
// are additive and this is the one sanctioned default in the engine.
func NormalizeChapterKind(raw string) models.ChapterKind {
	if k, ok := chapterKindAliases[canonical(raw)]; ok {
		return k
	}
	return models.ChapterContent
}

// canonical lowercases, trims and strips combining marks so that
// "Étude de cas " and "etude de cas" compare equal.
func canonical(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

package validator

import (
	"reflect"
	"strings"

	"github.com/formacode/course-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps struct-tag validation with the custom tags used by the
// content models.
type Validator struct {
	structValidator *validator.Validate
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("item_type", validateItemType)
	validate.RegisterValidation("chapter_kind", validateChapterKind)
	validate.RegisterValidation("course_status", validateCourseStatus)
	validate.RegisterValidation("access_type", validateAccessType)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateItemType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, validType := range models.AllItemTypes() {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateChapterKind(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == string(models.ChapterContent) || value == string(models.ChapterGame)
}

func validateCourseStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == string(models.CourseDraft) || value == string(models.CoursePublished)
}

func validateAccessType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.AccessType(value) {
	case models.AccessFree, models.AccessPaid, models.AccessInvite:
		return true
	}
	return false
}

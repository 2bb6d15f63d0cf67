package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrors_Error(t *testing.T) {
	tests := []struct {
		name string
		errs ValidationErrors
		want string
	}{
		{
			name: "empty",
			errs: ValidationErrors{},
			want: "validation failed",
		},
		{
			name: "single error includes path",
			errs: ValidationErrors{
				{Field: "modules[0].items[1].type", Message: "must be one of: resource, slide, exercise, tp, game"},
			},
			want: "validation failed: modules[0].items[1].type must be one of: resource, slide, exercise, tp, game",
		},
		{
			name: "multiple errors are counted",
			errs: ValidationErrors{
				{Field: "title", Message: "is required"},
				{Field: "modules[2].title", Message: "is required"},
			},
			want: "validation failed: 2 field errors",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.errs.Error())
		})
	}
}

func TestInvalidTypeError(t *testing.T) {
	err := NewInvalidTypeError("bogus", []string{"resource", "game"})
	assert.EqualError(t, err, `invalid type "bogus", allowed: resource, game`)

	ve := err.AsValidationError("modules[0].items[0].type")
	assert.Equal(t, "modules[0].items[0].type", ve.Field)
	assert.Equal(t, "bogus", ve.Value)
	assert.Equal(t, "closed_enum", ve.Rule)
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Introduction aux APIs", "introduction-aux-apis"},
		{"diacritics", "Étude de cas avancée", "etude-de-cas-avancee"},
		{"punctuation", "REST & GraphQL: le duel!", "rest-graphql-le-duel"},
		{"whitespace runs", "  a   b  ", "a-b"},
		{"empty", "   ", "course"},
		{"symbols only", "///", "course"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

package games

import (
	"encoding/json"

	"github.com/formacode/course-service/internal/models"
)

// Built-in mini-game kinds shipped with the portal. External components can
// register additional kinds through Registry.Register without touching the
// importer or exporter.

const (
	TypeMatching       = "matching"
	TypeColumnMatching = "column-matching"
	TypeAPITypes       = "api-types"
	TypeFormatFiles    = "format-files"
	TypeJSONFileTypes  = "json-file-types"
)

func builtinDefinitions() []GameDefinition {
	return []GameDefinition{
		{
			GameType:       TypeMatching,
			RequiredFields: []string{"pairs"},
			Validate:       validateMatching,
		},
		{
			GameType:       TypeColumnMatching,
			RequiredFields: []string{"leftColumn", "rightColumn", "correctMatches"},
			Validate:       validateColumnMatching,
		},
		{
			GameType:       TypeAPITypes,
			RequiredFields: []string{"apiTypes", "scenarios"},
			Validate:       validateAPITypes,
		},
		{
			GameType:       TypeFormatFiles,
			RequiredFields: []string{"levels"},
			Validate:       validateFormatFiles,
		},
		{
			GameType:       TypeJSONFileTypes,
			RequiredFields: []string{"fileTypes", "examples"},
			Validate:       validateJSONFileTypes,
		},
	}
}

// decodeConfig round-trips a loose JSON map into a typed config struct.
func decodeConfig(config map[string]interface{}, dest interface{}) bool {
	raw, err := json.Marshal(config)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func validateMatching(config map[string]interface{}) bool {
	var c models.MatchingConfig
	if !decodeConfig(config, &c) {
		return false
	}
	if len(c.Pairs) == 0 {
		return false
	}
	for _, pair := range c.Pairs {
		if pair.Term == "" || pair.Definition == "" {
			return false
		}
	}
	return true
}

func validateColumnMatching(config map[string]interface{}) bool {
	var c models.ColumnMatchingConfig
	if !decodeConfig(config, &c) {
		return false
	}
	if len(c.LeftColumn) == 0 || len(c.RightColumn) == 0 || len(c.CorrectMatches) == 0 {
		return false
	}
	for _, match := range c.CorrectMatches {
		if match.Left < 0 || match.Left >= len(c.LeftColumn) {
			return false
		}
		if match.Right < 0 || match.Right >= len(c.RightColumn) {
			return false
		}
	}
	return true
}

func validateAPITypes(config map[string]interface{}) bool {
	var c models.APITypesConfig
	if !decodeConfig(config, &c) {
		return false
	}
	return len(c.APITypes) > 0 && len(c.Scenarios) > 0
}

func validateFormatFiles(config map[string]interface{}) bool {
	var c models.FormatFilesConfig
	if !decodeConfig(config, &c) {
		return false
	}
	if len(c.Levels) == 0 {
		return false
	}
	for _, level := range c.Levels {
		if len(level.Questions) == 0 {
			return false
		}
	}
	return true
}

func validateJSONFileTypes(config map[string]interface{}) bool {
	var c models.JSONFileTypesConfig
	if !decodeConfig(config, &c) {
		return false
	}
	return len(c.FileTypes) > 0 && len(c.Examples) > 0
}

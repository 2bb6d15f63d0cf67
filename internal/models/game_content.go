package models

// GameTypeKey is the discriminator field inside a game payload that selects
// which mini-game schema applies.
const GameTypeKey = "gameType"

// Typed shapes for the built-in game payloads. Field names follow the wire
// form produced by the course editor.

type MatchingPair struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

type MatchingConfig struct {
	Pairs []MatchingPair `json:"pairs"`
}

type ColumnMatch struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

type ColumnMatchingConfig struct {
	LeftColumn     []string      `json:"leftColumn"`
	RightColumn    []string      `json:"rightColumn"`
	CorrectMatches []ColumnMatch `json:"correctMatches"`
}

type APITypesConfig struct {
	APITypes  []map[string]interface{} `json:"apiTypes"`
	Scenarios []map[string]interface{} `json:"scenarios"`
}

type FormatFilesLevel struct {
	Title     string                   `json:"title"`
	Questions []map[string]interface{} `json:"questions"`
}

type FormatFilesConfig struct {
	Levels []FormatFilesLevel `json:"levels"`
}

type JSONFileTypesConfig struct {
	FileTypes []map[string]interface{} `json:"fileTypes"`
	Examples  []map[string]interface{} `json:"examples"`
}

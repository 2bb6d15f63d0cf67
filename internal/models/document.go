package models

import (
	"encoding/json"
)

// Document types are the transient JSON form of a course tree, exchanged with
// the editor UI and with import/export files. They are never persisted as-is.
//
// Unknown keys at any level are kept in Extra on unmarshal and re-emitted on
// marshal so that files written by newer tooling survive a load/save cycle.
// Import validation ignores them.

type CourseDocument struct {
	Title       string           `json:"title"`
	Description *string          `json:"description,omitempty"`
	Status      string           `json:"status,omitempty"`
	AccessType  string           `json:"access_type,omitempty"`
	PriceCents  *int             `json:"price_cents,omitempty"`
	Currency    *string          `json:"currency,omitempty"`
	Modules     []ModuleDocument `json:"modules"`

	Extra map[string]json.RawMessage `json:"-"`
}

type ModuleDocument struct {
	Title    string         `json:"title"`
	Position int            `json:"position"`
	Items    []ItemDocument `json:"items"`

	Extra map[string]json.RawMessage `json:"-"`
}

type ItemDocument struct {
	Type        string                 `json:"type"`
	Title       string                 `json:"title"`
	Position    int                    `json:"position"`
	Published   *bool                  `json:"published,omitempty"`
	Content     map[string]interface{} `json:"content,omitempty"`
	AssetPath   *string                `json:"asset_path,omitempty"`
	ExternalURL *string                `json:"external_url,omitempty"`

	// Chapters is nil for items that never had chapters; an empty slice would
	// round-trip as [] and break byte-stability for chapterless items.
	Chapters []ChapterDocument `json:"chapters,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type ChapterDocument struct {
	Title       string                 `json:"title"`
	Position    int                    `json:"position"`
	Type        string                 `json:"type,omitempty"`
	Content     json.RawMessage        `json:"content,omitempty"`
	GameContent map[string]interface{} `json:"game_content,omitempty"`
	Published   *bool                  `json:"published,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var (
	courseDocKeys  = []string{"title", "description", "status", "access_type", "price_cents", "currency", "modules"}
	moduleDocKeys  = []string{"title", "position", "items"}
	itemDocKeys    = []string{"type", "title", "position", "published", "content", "asset_path", "external_url", "chapters"}
	chapterDocKeys = []string{"title", "position", "type", "content", "game_content", "published"}
)

// extraKeys returns every top-level key of data not present in known.
func extraKeys(data []byte, known []string) map[string]json.RawMessage {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil
	}
	return all
}

// mergeExtra re-attaches preserved unknown keys to a marshaled object.
func mergeExtra(data []byte, extra map[string]json.RawMessage) ([]byte, error) {
	if len(extra) == 0 {
		return data, nil
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, taken := all[k]; !taken {
			all[k] = v
		}
	}
	return json.Marshal(all)
}

func (d *CourseDocument) UnmarshalJSON(data []byte) error {
	type alias CourseDocument
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*d = CourseDocument(a)
	d.Extra = extraKeys(data, courseDocKeys)
	return nil
}

func (d CourseDocument) MarshalJSON() ([]byte, error) {
	type alias CourseDocument
	data, err := json.Marshal(alias(d))
	if err != nil {
		return nil, err
	}
	return mergeExtra(data, d.Extra)
}

func (d *ModuleDocument) UnmarshalJSON(data []byte) error {
	type alias ModuleDocument
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*d = ModuleDocument(a)
	d.Extra = extraKeys(data, moduleDocKeys)
	return nil
}

func (d ModuleDocument) MarshalJSON() ([]byte, error) {
	type alias ModuleDocument
	data, err := json.Marshal(alias(d))
	if err != nil {
		return nil, err
	}
	return mergeExtra(data, d.Extra)
}

func (d *ItemDocument) UnmarshalJSON(data []byte) error {
	type alias ItemDocument
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*d = ItemDocument(a)
	d.Extra = extraKeys(data, itemDocKeys)
	return nil
}

func (d ItemDocument) MarshalJSON() ([]byte, error) {
	type alias ItemDocument
	data, err := json.Marshal(alias(d))
	if err != nil {
		return nil, err
	}
	return mergeExtra(data, d.Extra)
}

func (d *ChapterDocument) UnmarshalJSON(data []byte) error {
	type alias ChapterDocument
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*d = ChapterDocument(a)
	d.Extra = extraKeys(data, chapterDocKeys)
	return nil
}

func (d ChapterDocument) MarshalJSON() ([]byte, error) {
	type alias ChapterDocument
	data, err := json.Marshal(alias(d))
	if err != nil {
		return nil, err
	}
	return mergeExtra(data, d.Extra)
}

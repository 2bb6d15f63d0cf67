package models

import (
	"time"

	"gorm.io/datatypes"
)

type ChapterKind string

const (
	ChapterContent ChapterKind = "content"
	ChapterGame    ChapterKind = "game"
)

// Chapter is a leaf under an item. Exactly one of Body and GameContent is
// populated, selected by Kind.
type Chapter struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	ItemID      uint           `json:"item_id" gorm:"not null;index"`
	Title       string         `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Kind        ChapterKind    `json:"kind" gorm:"not null;size:20;default:content" validate:"required,chapter_kind"`
	Body        datatypes.JSON `json:"body" gorm:"type:jsonb"`
	GameContent datatypes.JSON `json:"game_content" gorm:"type:jsonb"`
	Position    int            `json:"position" gorm:"not null;index"`
	Published   bool           `json:"published" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Chapter) TableName() string {
	return "chapters"
}

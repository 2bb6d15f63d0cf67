package models

import (
	"time"

	"gorm.io/datatypes"
)

type ItemType string

const (
	ItemResource ItemType = "resource"
	ItemSlide    ItemType = "slide"
	ItemExercise ItemType = "exercise"
	ItemTP       ItemType = "tp"
	ItemGame     ItemType = "game"
)

// AllItemTypes lists the closed item type enumeration, in declaration order.
func AllItemTypes() []ItemType {
	return []ItemType{ItemResource, ItemSlide, ItemExercise, ItemTP, ItemGame}
}

// Item is a single piece of content inside a module. Content is a JSONB
// payload whose shape depends on Type and, for games, on the payload's
// gameType discriminator.
type Item struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	ModuleID    uint           `json:"module_id" gorm:"not null;index"`
	Type        ItemType       `json:"type" gorm:"not null;size:20" validate:"required,item_type"`
	Title       string         `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Content     datatypes.JSON `json:"content" gorm:"type:jsonb"`
	AssetPath   *string        `json:"asset_path" gorm:"size:500"`
	ExternalURL *string        `json:"external_url" gorm:"size:500" validate:"omitempty,url"`
	Position    int            `json:"position" gorm:"not null;index"`
	Published   bool           `json:"published" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Chapters []Chapter `json:"chapters" gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
}

func (Item) TableName() string {
	return "items"
}

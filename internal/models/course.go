package models

import (
	"time"

	"gorm.io/gorm"
)

type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
)

type AccessType string

const (
	AccessFree   AccessType = "free"
	AccessPaid   AccessType = "paid"
	AccessInvite AccessType = "invite"
)

// Course is the root of a content tree. Its Modules are owned rows: an import
// replaces the whole subtree, the course row itself is only updated in place.
type Course struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Title       string       `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string      `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Status      CourseStatus `json:"status" gorm:"default:draft;index" validate:"omitempty,course_status"`
	AccessType  AccessType   `json:"access_type" gorm:"default:free" validate:"omitempty,access_type"`
	PriceCents  *int         `json:"price_cents" validate:"omitempty,min=0"`
	Currency    *string      `json:"currency" gorm:"size:3" validate:"omitempty,len=3"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Modules []Module `json:"modules" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
}

func (Course) TableName() string {
	return "courses"
}

package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the domain events published by the content service.
type EventType string

const (
	// Course tree events
	EventCourseImported EventType = "course.imported"
	EventCourseDeleted  EventType = "course.deleted"

	// Gameplay events
	EventGameScored EventType = "game.scored"
)

// CourseEvent is the base event structure for all published events.
type CourseEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type CourseImportedEvent struct {
	CourseID     uint   `json:"course_id"`
	CourseTitle  string `json:"course_title"`
	PrincipalID  string `json:"principal_id"`
	ModuleCount  int    `json:"module_count"`
	ItemCount    int    `json:"item_count"`
	ChapterCount int    `json:"chapter_count"`
	Replaced     bool   `json:"replaced"`
}

type CourseDeletedEvent struct {
	CourseID    uint   `json:"course_id"`
	CourseTitle string `json:"course_title"`
	PrincipalID string `json:"principal_id"`
}

type GameScoredEvent struct {
	SessionID      string    `json:"session_id"`
	GameType       string    `json:"game_type"`
	PrincipalID    string    `json:"principal_id"`
	Score          int       `json:"score"`
	Attempts       int       `json:"attempts"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	FinishedAt     time.Time `json:"finished_at"`
}

// Event factory functions

func NewCourseImportedEvent(data CourseImportedEvent) *CourseEvent {
	return newEvent(EventCourseImported, data)
}

func NewCourseDeletedEvent(data CourseDeletedEvent) *CourseEvent {
	return newEvent(EventCourseDeleted, data)
}

func NewGameScoredEvent(data GameScoredEvent) *CourseEvent {
	return newEvent(EventGameScored, data)
}

func newEvent(eventType EventType, data interface{}) *CourseEvent {
	return &CourseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "course-service",
		Version:   "1.0",
		Data:      data,
	}
}

package games

import (
	"fmt"
	"time"

	"github.com/formacode/course-service/internal/models"
)

// ColumnMatchingSession drives the column-matching mini-game: two fixed
// columns, the learner pairs a left entry with a right entry. Evaluation is
// index based, not value based, so identical labels at different indices are
// distinct entries.
//
// An incorrect pair stays highlighted until the caller acknowledges the
// feedback delay with ClearFeedback; selections are rejected in between.
type ColumnMatchingSession struct {
	state         SessionState
	cfg           models.ColumnMatchingConfig
	required      int
	selectedLeft  int
	selectedRight int
	matchedLeft   map[int]bool
	matchedRight  map[int]bool
	matchedPairs  []models.ColumnMatch
	attempts      int
	pendingClear  bool
	startedAt     time.Time
	onScore       ScoreFunc
	scored        bool
}

// NewColumnMatchingSession builds a session from a validated config.
func NewColumnMatchingSession(cfg models.ColumnMatchingConfig, onScore ScoreFunc) (*ColumnMatchingSession, error) {
	if len(cfg.LeftColumn) == 0 || len(cfg.RightColumn) == 0 || len(cfg.CorrectMatches) == 0 {
		return nil, fmt.Errorf("column matching config is incomplete")
	}
	return &ColumnMatchingSession{
		state:         SessionNotStarted,
		cfg:           cfg,
		required:      len(cfg.CorrectMatches),
		selectedLeft:  -1,
		selectedRight: -1,
		matchedLeft:   make(map[int]bool),
		matchedRight:  make(map[int]bool),
		onScore:       onScore,
	}, nil
}

// Start begins the session, resetting all counters and the clock.
func (s *ColumnMatchingSession) Start(now time.Time) {
	if s.state == SessionFinished {
		return
	}
	s.state = SessionInProgress
	s.selectedLeft = -1
	s.selectedRight = -1
	s.matchedLeft = make(map[int]bool)
	s.matchedRight = make(map[int]bool)
	s.matchedPairs = nil
	s.attempts = 0
	s.pendingClear = false
	s.startedAt = now
}

// SelectLeft selects or deselects an entry in the left column.
func (s *ColumnMatchingSession) SelectLeft(index int, now time.Time) error {
	return s.selectSide(index, now, true)
}

// SelectRight selects or deselects an entry in the right column.
func (s *ColumnMatchingSession) SelectRight(index int, now time.Time) error {
	return s.selectSide(index, now, false)
}

func (s *ColumnMatchingSession) selectSide(index int, now time.Time, left bool) error {
	if s.state != SessionInProgress {
		return fmt.Errorf("session is %s", s.state)
	}
	if s.pendingClear {
		return fmt.Errorf("awaiting feedback clear")
	}

	column, matched, selected := s.cfg.RightColumn, s.matchedRight, &s.selectedRight
	if left {
		column, matched, selected = s.cfg.LeftColumn, s.matchedLeft, &s.selectedLeft
	}

	if index < 0 || index >= len(column) {
		return fmt.Errorf("index %d out of range", index)
	}
	if matched[index] {
		return fmt.Errorf("entry %d is already matched", index)
	}

	// Re-clicking the selected entry toggles it off.
	if *selected == index {
		*selected = -1
		return nil
	}
	*selected = index

	if s.selectedLeft >= 0 && s.selectedRight >= 0 {
		s.evaluate(now)
	}
	return nil
}

// evaluate runs once a full pair is selected. Every completed evaluation
// counts as an attempt, correct or not.
func (s *ColumnMatchingSession) evaluate(now time.Time) {
	s.attempts++

	correct := false
	for _, match := range s.cfg.CorrectMatches {
		if match.Left == s.selectedLeft && match.Right == s.selectedRight {
			correct = true
			break
		}
	}

	if !correct {
		s.pendingClear = true
		return
	}

	s.matchedLeft[s.selectedLeft] = true
	s.matchedRight[s.selectedRight] = true
	s.matchedPairs = append(s.matchedPairs, models.ColumnMatch{Left: s.selectedLeft, Right: s.selectedRight})
	s.selectedLeft = -1
	s.selectedRight = -1

	if len(s.matchedPairs) == s.required {
		s.finish(now)
	}
}

// ClearFeedback clears an incorrect pair after the feedback delay.
func (s *ColumnMatchingSession) ClearFeedback() {
	if !s.pendingClear {
		return
	}
	s.selectedLeft = -1
	s.selectedRight = -1
	s.pendingClear = false
}

// Reset discards the in-flight session without emitting a score.
func (s *ColumnMatchingSession) Reset() {
	s.state = SessionNotStarted
	s.selectedLeft = -1
	s.selectedRight = -1
	s.matchedLeft = make(map[int]bool)
	s.matchedRight = make(map[int]bool)
	s.matchedPairs = nil
	s.attempts = 0
	s.pendingClear = false
	s.startedAt = time.Time{}
}

func (s *ColumnMatchingSession) finish(now time.Time) {
	s.state = SessionFinished
	if s.scored {
		return
	}
	s.scored = true

	elapsed := int(now.Sub(s.startedAt).Seconds())
	score := clampScore(1000-5*elapsed) + clampScore(1000-100*(s.attempts-s.required))
	if s.onScore != nil {
		s.onScore(score, ScoreMetadata{
			GameType:       TypeColumnMatching,
			ElapsedSeconds: elapsed,
			Attempts:       s.attempts,
			MatchedPairs:   len(s.matchedPairs),
			FinishedAt:     now,
		})
	}
}

func (s *ColumnMatchingSession) State() SessionState { return s.state }
func (s *ColumnMatchingSession) Attempts() int       { return s.attempts }
func (s *ColumnMatchingSession) PendingClear() bool  { return s.pendingClear }

// MatchedPairs returns the pairs matched so far, in match order.
func (s *ColumnMatchingSession) MatchedPairs() []models.ColumnMatch {
	out := make([]models.ColumnMatch, len(s.matchedPairs))
	copy(out, s.matchedPairs)
	return out
}

// Selection returns the current left/right selection, -1 for none.
func (s *ColumnMatchingSession) Selection() (left, right int) {
	return s.selectedLeft, s.selectedRight
}

func (s *ColumnMatchingSession) LeftColumn() []string  { return s.cfg.LeftColumn }
func (s *ColumnMatchingSession) RightColumn() []string { return s.cfg.RightColumn }

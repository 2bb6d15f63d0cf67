package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/formacode/course-service/internal/events"
	"github.com/formacode/course-service/internal/games"
	"github.com/formacode/course-service/internal/models"
	"github.com/formacode/course-service/internal/repositories"
)

// PlayAction is one input applied to a running game session.
type PlayAction struct {
	// Kind is one of: reveal, flip_back, select_left, select_right,
	// clear_feedback, reset.
	Kind string `json:"kind" validate:"required"`

	// CardID accompanies reveal actions.
	CardID string `json:"card_id,omitempty"`

	// Index accompanies select_left and select_right actions.
	Index int `json:"index"`
}

// SessionView is the render snapshot returned after every session call.
type SessionView struct {
	SessionID    string               `json:"session_id"`
	GameType     string               `json:"game_type"`
	State        games.SessionState   `json:"state"`
	Attempts     int                  `json:"attempts"`
	Score        *int                 `json:"score,omitempty"`
	Cards        []games.Card         `json:"cards,omitempty"`
	LeftColumn   []string             `json:"left_column,omitempty"`
	RightColumn  []string             `json:"right_column,omitempty"`
	Matched      []models.ColumnMatch `json:"matched,omitempty"`
	PendingClear bool                 `json:"pending_clear,omitempty"`
}

// PlayService hosts in-memory sessions for the interactive mini-games. A
// session is created from stored game content, driven by PlayActions and
// emits its score exactly once, at the transition to finished.
type PlayService interface {
	// CreateSessionForItem builds a session from a game item's stored content.
	CreateSessionForItem(ctx context.Context, itemID uint, principalID string) (*SessionView, error)

	// CreateSessionForChapter builds a session from a game chapter's content.
	CreateSessionForChapter(ctx context.Context, chapterID uint, principalID string) (*SessionView, error)

	StartSession(ctx context.Context, sessionID string, principalID string) (*SessionView, error)
	ApplyAction(ctx context.Context, sessionID string, principalID string, action PlayAction) (*SessionView, error)
	GetSession(ctx context.Context, sessionID string, principalID string) (*SessionView, error)
}

// sessionIdleTTL bounds how long an untouched session is kept. Finished
// sessions stop being touched and age out the same way.
const sessionIdleTTL = 30 * time.Minute

type playSession struct {
	mu          sync.Mutex
	id          string
	gameType    string
	principalID string
	card        *games.CardMatchingSession
	column      *games.ColumnMatchingSession
	score       *int
	scored      *scoredResult
	lastTouched time.Time
}

// scoredResult carries a finish transition's score out of the session lock so
// the event publish can run unlocked, on the request context.
type scoredResult struct {
	score int
	meta  games.ScoreMetadata
}

type playService struct {
	repo      repositories.Repository
	registry  *games.Registry
	publisher events.EventPublisher
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*playSession
}

func NewPlayService(
	repo repositories.Repository,
	registry *games.Registry,
	publisher events.EventPublisher,
	logger *slog.Logger,
) PlayService {
	return &playService{
		repo:      repo,
		registry:  registry,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		sessions:  make(map[string]*playSession),
	}
}

func (s *playService) CreateSessionForItem(ctx context.Context, itemID uint, principalID string) (*SessionView, error) {
	item, err := s.repo.Item().GetByID(ctx, itemID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if item.Type != models.ItemGame {
		return nil, ErrItemNotPlayable
	}
	return s.createSession(item.Content, principalID)
}

func (s *playService) CreateSessionForChapter(ctx context.Context, chapterID uint, principalID string) (*SessionView, error) {
	chapter, err := s.repo.Chapter().GetByID(ctx, chapterID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrChapterNotFound
		}
		return nil, err
	}
	if chapter.Kind != models.ChapterGame {
		return nil, ErrItemNotPlayable
	}
	return s.createSession(chapter.GameContent, principalID)
}

// createSession decodes and re-validates stored game content. Stored content
// that no longer validates, for example after a registry change, degrades to
// ErrGameUnavailable instead of failing hard.
func (s *playService) createSession(raw []byte, principalID string) (*SessionView, error) {
	if len(raw) == 0 {
		return nil, ErrGameUnavailable
	}

	var config map[string]interface{}
	if err := json.Unmarshal(raw, &config); err != nil {
		s.logger.Warn("stored game content is not valid JSON", "error", err)
		return nil, ErrGameUnavailable
	}

	if err := s.registry.ValidateConfig(config); err != nil {
		s.logger.Warn("stored game content failed validation", "error", err)
		return nil, ErrGameUnavailable
	}

	config, err := games.Unwrap(config)
	if err != nil {
		return nil, ErrGameUnavailable
	}
	gameType, _ := config[models.GameTypeKey].(string)

	session := &playSession{
		id:          uuid.NewString(),
		gameType:    gameType,
		principalID: principalID,
		lastTouched: s.now(),
	}
	onScore := s.scoreCallback(session)

	switch gameType {
	case games.TypeMatching:
		var cfg models.MatchingConfig
		if !decodeInto(config, &cfg) {
			return nil, ErrGameUnavailable
		}
		engine, err := games.NewCardMatchingSession(cfg, onScore)
		if err != nil {
			return nil, ErrGameUnavailable
		}
		session.card = engine

	case games.TypeColumnMatching:
		var cfg models.ColumnMatchingConfig
		if !decodeInto(config, &cfg) {
			return nil, ErrGameUnavailable
		}
		engine, err := games.NewColumnMatchingSession(cfg, onScore)
		if err != nil {
			return nil, ErrGameUnavailable
		}
		session.column = engine

	default:
		// The remaining game kinds are rendered entirely client side.
		return nil, ErrItemNotPlayable
	}

	s.mu.Lock()
	s.evictStaleLocked()
	s.sessions[session.id] = session
	s.mu.Unlock()

	s.logger.Info("game session created",
		"session_id", session.id,
		"game_type", gameType,
		"principal_id", principalID)

	return session.view(), nil
}

func (s *playService) StartSession(ctx context.Context, sessionID string, principalID string) (*SessionView, error) {
	session, err := s.lookup(sessionID, principalID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	now := s.now()
	session.lastTouched = now
	if session.card != nil {
		session.card.Start(now)
	} else {
		session.column.Start(now)
	}
	return session.viewLocked(), nil
}

func (s *playService) ApplyAction(ctx context.Context, sessionID string, principalID string, action PlayAction) (*SessionView, error) {
	session, err := s.lookup(sessionID, principalID)
	if err != nil {
		return nil, err
	}

	view, scored, err := s.applyLocked(session, action)
	if err != nil {
		return nil, err
	}
	if scored != nil {
		s.publishScore(ctx, session, scored)
	}
	return view, nil
}

// applyLocked runs one action under the session lock and hands back any score
// produced by a finish transition for the caller to publish unlocked.
func (s *playService) applyLocked(session *playSession, action PlayAction) (*SessionView, *scoredResult, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	now := s.now()
	session.lastTouched = now
	switch action.Kind {
	case "reveal":
		if session.card == nil {
			return nil, nil, fmt.Errorf("%w: reveal applies to card matching only", ErrBadRequest)
		}
		if err := session.card.Reveal(action.CardID, now); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}

	case "flip_back":
		if session.card == nil {
			return nil, nil, fmt.Errorf("%w: flip_back applies to card matching only", ErrBadRequest)
		}
		session.card.FlipBack()

	case "select_left", "select_right":
		if session.column == nil {
			return nil, nil, fmt.Errorf("%w: selections apply to column matching only", ErrBadRequest)
		}
		var aerr error
		if action.Kind == "select_left" {
			aerr = session.column.SelectLeft(action.Index, now)
		} else {
			aerr = session.column.SelectRight(action.Index, now)
		}
		if aerr != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrBadRequest, aerr)
		}

	case "clear_feedback":
		if session.column == nil {
			return nil, nil, fmt.Errorf("%w: clear_feedback applies to column matching only", ErrBadRequest)
		}
		session.column.ClearFeedback()

	case "reset":
		if session.card != nil {
			session.card.Reset()
		} else {
			session.column.Reset()
		}
		session.score = nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown action %q", ErrBadRequest, action.Kind)
	}

	scored := session.scored
	session.scored = nil
	return session.viewLocked(), scored, nil
}

func (s *playService) GetSession(ctx context.Context, sessionID string, principalID string) (*SessionView, error) {
	session, err := s.lookup(sessionID, principalID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	session.lastTouched = s.now()
	return session.viewLocked(), nil
}

func (s *playService) lookup(sessionID, principalID string) (*playSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.principalID != principalID {
		return nil, ErrSessionAccessDenied
	}
	return session, nil
}

// evictStaleLocked sweeps sessions idle past sessionIdleTTL. The caller holds
// the service lock; session locks nest inside it everywhere.
func (s *playService) evictStaleLocked() {
	cutoff := s.now().Add(-sessionIdleTTL)
	for id, session := range s.sessions {
		session.mu.Lock()
		stale := session.lastTouched.Before(cutoff)
		session.mu.Unlock()
		if stale {
			delete(s.sessions, id)
		}
	}
}

// scoreCallback records the session's single score emission. The engines
// guarantee it fires at most once per session lifetime, always inside an
// action call, so ApplyAction picks the result up and publishes it.
func (s *playService) scoreCallback(session *playSession) games.ScoreFunc {
	return func(score int, meta games.ScoreMetadata) {
		session.score = &score
		session.scored = &scoredResult{score: score, meta: meta}

		s.logger.Info("game session scored",
			"session_id", session.id,
			"game_type", meta.GameType,
			"score", score,
			"attempts", meta.Attempts,
			"elapsed_seconds", meta.ElapsedSeconds)
	}
}

func (s *playService) publishScore(ctx context.Context, session *playSession, scored *scoredResult) {
	event := events.NewGameScoredEvent(events.GameScoredEvent{
		SessionID:      session.id,
		GameType:       scored.meta.GameType,
		PrincipalID:    session.principalID,
		Score:          scored.score,
		Attempts:       scored.meta.Attempts,
		ElapsedSeconds: scored.meta.ElapsedSeconds,
		FinishedAt:     scored.meta.FinishedAt,
	})
	if err := s.publisher.PublishCourseEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish game.scored event",
			"session_id", session.id, "error", err)
	}
}

func decodeInto(config map[string]interface{}, dest interface{}) bool {
	raw, err := json.Marshal(config)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (p *playSession) view() *SessionView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked()
}

func (p *playSession) viewLocked() *SessionView {
	view := &SessionView{
		SessionID: p.id,
		GameType:  p.gameType,
		Score:     p.score,
	}
	if p.card != nil {
		view.State = p.card.State()
		view.Attempts = p.card.Attempts()
		view.Cards = p.card.Cards()
	} else {
		view.State = p.column.State()
		view.Attempts = p.column.Attempts()
		view.LeftColumn = p.column.LeftColumn()
		view.RightColumn = p.column.RightColumn()
		view.Matched = p.column.MatchedPairs()
		view.PendingClear = p.column.PendingClear()
	}
	return view
}

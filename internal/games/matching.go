package games

import (
	"fmt"
	"time"

	"github.com/formacode/course-service/internal/models"
)

// Card is one face of a term/definition pair on the board.
type Card struct {
	ID      string `json:"id"`
	PairID  int    `json:"-"`
	Label   string `json:"label"`
	FaceUp  bool   `json:"face_up"`
	Matched bool   `json:"matched"`
}

// CardMatchingSession drives the card-matching mini-game. It is event
// driven: the caller supplies the wall-clock time with every input, which
// keeps scoring deterministic and testable.
//
// Mismatch handling is a two-step protocol. When the second revealed card
// does not match, both cards stay face up and the board is locked until the
// caller acknowledges the display delay with FlipBack. Reveals arriving in
// between are rejected, which closes the race on rapid input.
type CardMatchingSession struct {
	state      SessionState
	cards      []Card
	totalPairs int
	attempts   int
	matched    int
	faceUp     []int // indices of unmatched face-up cards, at most two
	startedAt  time.Time
	onScore    ScoreFunc
	scored     bool
}

// NewCardMatchingSession builds a session from a validated matching config.
// Each pair contributes a term card ("t<i>") and a definition card ("d<i>").
func NewCardMatchingSession(cfg models.MatchingConfig, onScore ScoreFunc) (*CardMatchingSession, error) {
	if len(cfg.Pairs) == 0 {
		return nil, fmt.Errorf("matching config has no pairs")
	}

	cards := make([]Card, 0, len(cfg.Pairs)*2)
	for i, pair := range cfg.Pairs {
		cards = append(cards,
			Card{ID: fmt.Sprintf("t%d", i), PairID: i, Label: pair.Term},
			Card{ID: fmt.Sprintf("d%d", i), PairID: i, Label: pair.Definition},
		)
	}

	return &CardMatchingSession{
		state:      SessionNotStarted,
		cards:      cards,
		totalPairs: len(cfg.Pairs),
		onScore:    onScore,
	}, nil
}

// Start begins the session, resetting all counters and the clock.
func (s *CardMatchingSession) Start(now time.Time) {
	if s.state == SessionFinished {
		return
	}
	s.state = SessionInProgress
	s.attempts = 0
	s.matched = 0
	s.faceUp = nil
	s.startedAt = now
	for i := range s.cards {
		s.cards[i].FaceUp = false
		s.cards[i].Matched = false
	}
}

// Reveal turns one card face up. Revealing a second card evaluates the pair:
// a match locks both cards as matched, a mismatch counts an attempt and
// locks the board until FlipBack.
func (s *CardMatchingSession) Reveal(cardID string, now time.Time) error {
	if s.state != SessionInProgress {
		return fmt.Errorf("session is %s", s.state)
	}
	if len(s.faceUp) == 2 {
		return fmt.Errorf("board locked awaiting flip back")
	}

	idx := -1
	for i := range s.cards {
		if s.cards[i].ID == cardID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("unknown card %q", cardID)
	}
	if s.cards[idx].Matched || s.cards[idx].FaceUp {
		return fmt.Errorf("card %q is already revealed", cardID)
	}

	s.cards[idx].FaceUp = true
	s.faceUp = append(s.faceUp, idx)
	if len(s.faceUp) < 2 {
		return nil
	}

	first, second := &s.cards[s.faceUp[0]], &s.cards[s.faceUp[1]]
	if first.PairID == second.PairID {
		first.Matched = true
		second.Matched = true
		s.faceUp = nil
		s.matched++
		if s.matched == s.totalPairs {
			s.finish(now)
		}
		return nil
	}

	// Mismatch: keep both visible for the display delay, see FlipBack.
	s.attempts++
	return nil
}

// FlipBack turns a mismatched pair face down again. The caller invokes it
// once the display delay has elapsed.
func (s *CardMatchingSession) FlipBack() {
	if len(s.faceUp) != 2 {
		return
	}
	for _, idx := range s.faceUp {
		s.cards[idx].FaceUp = false
	}
	s.faceUp = nil
}

// Reset discards the in-flight session without emitting a score.
func (s *CardMatchingSession) Reset() {
	s.state = SessionNotStarted
	s.attempts = 0
	s.matched = 0
	s.faceUp = nil
	s.startedAt = time.Time{}
	for i := range s.cards {
		s.cards[i].FaceUp = false
		s.cards[i].Matched = false
	}
}

func (s *CardMatchingSession) finish(now time.Time) {
	s.state = SessionFinished
	if s.scored {
		return
	}
	s.scored = true

	elapsed := int(now.Sub(s.startedAt).Seconds())
	score := clampScore(1000-10*elapsed) + clampScore(1000-50*s.attempts)
	if s.onScore != nil {
		s.onScore(score, ScoreMetadata{
			GameType:       TypeMatching,
			ElapsedSeconds: elapsed,
			Attempts:       s.attempts,
			MatchedPairs:   s.matched,
			FinishedAt:     now,
		})
	}
}

func (s *CardMatchingSession) State() SessionState { return s.state }
func (s *CardMatchingSession) Attempts() int       { return s.attempts }
func (s *CardMatchingSession) MatchedPairs() int   { return s.matched }
func (s *CardMatchingSession) TotalPairs() int     { return s.totalPairs }

// Cards returns a snapshot of the board for rendering.
func (s *CardMatchingSession) Cards() []Card {
	out := make([]Card, len(s.cards))
	copy(out, s.cards)
	return out
}

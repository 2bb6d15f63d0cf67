package games

import "time"

// SessionState is the lifecycle of one game session. Transitions only move
// forward: NotStarted -> InProgress -> Finished. Reset returns a session to
// NotStarted without emitting a score.
type SessionState string

const (
	SessionNotStarted SessionState = "not_started"
	SessionInProgress SessionState = "in_progress"
	SessionFinished   SessionState = "finished"
)

// ScoreMetadata accompanies the single score emission of a session.
type ScoreMetadata struct {
	GameType       string    `json:"game_type"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	Attempts       int       `json:"attempts"`
	MatchedPairs   int       `json:"matched_pairs"`
	FinishedAt     time.Time `json:"finished_at"`
}

// ScoreFunc receives the final score exactly once, at the transition to
// Finished. It is never called again for the same session, even after Reset.
type ScoreFunc func(score int, metadata ScoreMetadata)

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

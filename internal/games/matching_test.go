package games

import (
	"testing"
	"time"

	"github.com/formacode/course-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threePairs() models.MatchingConfig {
	return models.MatchingConfig{Pairs: []models.MatchingPair{
		{Term: "GET", Definition: "Read"},
		{Term: "POST", Definition: "Create"},
		{Term: "DELETE", Definition: "Remove"},
	}}
}

func TestCardMatchingSession_PerfectRun(t *testing.T) {
	var gotScore int
	var gotMeta ScoreMetadata
	calls := 0

	session, err := NewCardMatchingSession(threePairs(), func(score int, meta ScoreMetadata) {
		gotScore = score
		gotMeta = meta
		calls++
	})
	require.NoError(t, err)
	assert.Equal(t, SessionNotStarted, session.State())

	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	session.Start(start)
	assert.Equal(t, SessionInProgress, session.State())

	// Match all three pairs with no mistakes, finishing 5 seconds in.
	require.NoError(t, session.Reveal("t0", start.Add(1*time.Second)))
	require.NoError(t, session.Reveal("d0", start.Add(2*time.Second)))
	require.NoError(t, session.Reveal("t1", start.Add(3*time.Second)))
	require.NoError(t, session.Reveal("d1", start.Add(4*time.Second)))
	require.NoError(t, session.Reveal("t2", start.Add(4*time.Second)))
	require.NoError(t, session.Reveal("d2", start.Add(5*time.Second)))

	assert.Equal(t, SessionFinished, session.State())
	assert.Equal(t, 1, calls)
	// max(0, 1000-10*5) + max(0, 1000-50*0) = 950 + 1000
	assert.Equal(t, 1950, gotScore)
	assert.Equal(t, 0, gotMeta.Attempts)
	assert.Equal(t, 5, gotMeta.ElapsedSeconds)
	assert.Equal(t, 3, gotMeta.MatchedPairs)
	assert.Equal(t, TypeMatching, gotMeta.GameType)
}

func TestCardMatchingSession_MismatchLocksBoard(t *testing.T) {
	session, err := NewCardMatchingSession(threePairs(), nil)
	require.NoError(t, err)

	now := time.Now()
	session.Start(now)

	require.NoError(t, session.Reveal("t0", now))
	require.NoError(t, session.Reveal("d1", now)) // mismatch
	assert.Equal(t, 1, session.Attempts())

	// No move is accepted while both mismatched cards are face up.
	err = session.Reveal("t2", now)
	assert.Error(t, err)

	session.FlipBack()
	require.NoError(t, session.Reveal("t2", now))
}

func TestCardMatchingSession_RejectsDoubleReveal(t *testing.T) {
	session, err := NewCardMatchingSession(threePairs(), nil)
	require.NoError(t, err)

	now := time.Now()
	session.Start(now)

	require.NoError(t, session.Reveal("t0", now))
	assert.Error(t, session.Reveal("t0", now), "same card twice")
	assert.Error(t, session.Reveal("nope", now), "unknown card")
}

func TestCardMatchingSession_ScoreFloorsAtZero(t *testing.T) {
	var gotScore int
	session, err := NewCardMatchingSession(models.MatchingConfig{Pairs: []models.MatchingPair{
		{Term: "GET", Definition: "Read"},
	}}, func(score int, _ ScoreMetadata) { gotScore = score })
	require.NoError(t, err)

	start := time.Now()
	session.Start(start)

	// Finish after 200 seconds so the time component bottoms out.
	require.NoError(t, session.Reveal("t0", start.Add(199*time.Second)))
	require.NoError(t, session.Reveal("d0", start.Add(200*time.Second)))

	assert.Equal(t, SessionFinished, session.State())
	assert.Equal(t, 1000, gotScore) // max(0, 1000-2000) + max(0, 1000-0)
}

func TestCardMatchingSession_ResetDiscardsWithoutScore(t *testing.T) {
	calls := 0
	session, err := NewCardMatchingSession(threePairs(), func(int, ScoreMetadata) { calls++ })
	require.NoError(t, err)

	now := time.Now()
	session.Start(now)
	require.NoError(t, session.Reveal("t0", now))
	require.NoError(t, session.Reveal("d1", now))

	session.Reset()
	assert.Equal(t, SessionNotStarted, session.State())
	assert.Equal(t, 0, session.Attempts())
	assert.Equal(t, 0, calls)

	// A fresh run still emits its score.
	session.Start(now)
	for i := 0; i < 3; i++ {
		require.NoError(t, session.Reveal(cardID("t", i), now))
		require.NoError(t, session.Reveal(cardID("d", i), now))
	}
	assert.Equal(t, 1, calls)
}

func TestCardMatchingSession_RejectsMovesBeforeStart(t *testing.T) {
	session, err := NewCardMatchingSession(threePairs(), nil)
	require.NoError(t, err)
	assert.Error(t, session.Reveal("t0", time.Now()))
}

func cardID(prefix string, i int) string {
	return prefix + string(rune('0'+i))
}

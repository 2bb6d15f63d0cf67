package games

import (
	"testing"
	"time"

	"github.com/formacode/course-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func httpColumns() models.ColumnMatchingConfig {
	return models.ColumnMatchingConfig{
		LeftColumn:  []string{"GET", "POST"},
		RightColumn: []string{"Read", "Create"},
		CorrectMatches: []models.ColumnMatch{
			{Left: 0, Right: 0},
			{Left: 1, Right: 1},
		},
	}
}

func TestColumnMatchingSession_IndexBasedEvaluation(t *testing.T) {
	session, err := NewColumnMatchingSession(httpColumns(), nil)
	require.NoError(t, err)

	now := time.Now()
	session.Start(now)

	// left=0 with right=1 must not register as a match.
	require.NoError(t, session.SelectLeft(0, now))
	require.NoError(t, session.SelectRight(1, now))
	assert.Empty(t, session.MatchedPairs())
	assert.True(t, session.PendingClear())
	assert.Equal(t, 1, session.Attempts())

	session.ClearFeedback()

	// left=0 with right=0 must register and move both into the matched set.
	require.NoError(t, session.SelectLeft(0, now))
	require.NoError(t, session.SelectRight(0, now))
	require.Len(t, session.MatchedPairs(), 1)
	assert.Equal(t, models.ColumnMatch{Left: 0, Right: 0}, session.MatchedPairs()[0])
	assert.Equal(t, 2, session.Attempts())
}

func TestColumnMatchingSession_ToggleSelection(t *testing.T) {
	session, err := NewColumnMatchingSession(httpColumns(), nil)
	require.NoError(t, err)

	now := time.Now()
	session.Start(now)

	require.NoError(t, session.SelectLeft(1, now))
	left, right := session.Selection()
	assert.Equal(t, 1, left)
	assert.Equal(t, -1, right)

	// Re-clicking the same entry deselects it; no evaluation happens.
	require.NoError(t, session.SelectLeft(1, now))
	left, _ = session.Selection()
	assert.Equal(t, -1, left)
	assert.Equal(t, 0, session.Attempts())
}

func TestColumnMatchingSession_MatchedEntriesUnselectable(t *testing.T) {
	session, err := NewColumnMatchingSession(httpColumns(), nil)
	require.NoError(t, err)

	now := time.Now()
	session.Start(now)

	require.NoError(t, session.SelectLeft(0, now))
	require.NoError(t, session.SelectRight(0, now))
	require.Len(t, session.MatchedPairs(), 1)

	assert.Error(t, session.SelectLeft(0, now))
	assert.Error(t, session.SelectRight(0, now))
}

func TestColumnMatchingSession_BlocksInputDuringFeedback(t *testing.T) {
	session, err := NewColumnMatchingSession(httpColumns(), nil)
	require.NoError(t, err)

	now := time.Now()
	session.Start(now)

	require.NoError(t, session.SelectLeft(0, now))
	require.NoError(t, session.SelectRight(1, now))
	require.True(t, session.PendingClear())

	assert.Error(t, session.SelectLeft(1, now))
	session.ClearFeedback()
	assert.NoError(t, session.SelectLeft(1, now))
}

func TestColumnMatchingSession_ScoreOnCompletion(t *testing.T) {
	var gotScore int
	var gotMeta ScoreMetadata
	calls := 0

	session, err := NewColumnMatchingSession(httpColumns(), func(score int, meta ScoreMetadata) {
		gotScore = score
		gotMeta = meta
		calls++
	})
	require.NoError(t, err)

	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	session.Start(start)

	// One wrong evaluation, then both correct ones; finish at 10 seconds.
	require.NoError(t, session.SelectLeft(0, start.Add(1*time.Second)))
	require.NoError(t, session.SelectRight(1, start.Add(2*time.Second)))
	session.ClearFeedback()
	require.NoError(t, session.SelectLeft(0, start.Add(3*time.Second)))
	require.NoError(t, session.SelectRight(0, start.Add(4*time.Second)))
	require.NoError(t, session.SelectLeft(1, start.Add(5*time.Second)))
	require.NoError(t, session.SelectRight(1, start.Add(10*time.Second)))

	assert.Equal(t, SessionFinished, session.State())
	assert.Equal(t, 1, calls)
	// max(0, 1000-5*10) + max(0, 1000-100*(3-2)) = 950 + 900
	assert.Equal(t, 1850, gotScore)
	assert.Equal(t, 3, gotMeta.Attempts)
	assert.Equal(t, 10, gotMeta.ElapsedSeconds)
	assert.Equal(t, TypeColumnMatching, gotMeta.GameType)
}

func TestColumnMatchingSession_ResetDiscardsWithoutScore(t *testing.T) {
	calls := 0
	session, err := NewColumnMatchingSession(httpColumns(), func(int, ScoreMetadata) { calls++ })
	require.NoError(t, err)

	now := time.Now()
	session.Start(now)
	require.NoError(t, session.SelectLeft(0, now))
	require.NoError(t, session.SelectRight(0, now))

	session.Reset()
	assert.Equal(t, SessionNotStarted, session.State())
	assert.Empty(t, session.MatchedPairs())
	assert.Equal(t, 0, calls)
}

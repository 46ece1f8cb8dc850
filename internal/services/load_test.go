package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"example.com/metagame/services/importer/internal/metrics"
	"example.com/metagame/services/importer/internal/models"
	"example.com/metagame/services/importer/internal/tracing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Shared-cache memory DB named after the test so the pooled
	// connections all see the same database.
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.SetupModels(db))

	now := time.Now()
	require.NoError(t, db.Create(&models.ValidDeck{
		DeckID:       99,
		Format:       "VINTAGE",
		Archetype:    models.FallbackArchetype,
		Subarchetype: models.FallbackSubarchetype,
		ProcessedAt:  now,
	}).Error)
	require.NoError(t, db.Create(&models.ValidEventType{
		EventTypeID: 42,
		Format:      "VINTAGE",
		EventType:   models.FallbackEventType,
		ProcessedAt: now,
	}).Error)
	require.NoError(t, db.Create(&models.ValidEventType{
		EventTypeID: 10,
		Format:      "VINTAGE",
		EventType:   "LEAGUE",
		ProcessedAt: now,
	}).Error)

	return db
}

func reloadTestBatch(eventDate time.Time) *importBatch {
	eventID := models.EventIDBase
	matchID := models.MatchIDBase

	return &importBatch{
		Rows: []*ResultRow{
			{
				Player1: "ALICE", Player2: "BOB",
				P1Wins: 2, P2Wins: 1, Winner: models.WinnerP1,
				P1DeckID: 1, P2DeckID: 2,
				EventDate: eventDate, EventID: eventID, MatchID: matchID,
			},
			{
				Player1: "BOB", Player2: "ALICE",
				P1Wins: 1, P2Wins: 2, Winner: models.WinnerP2,
				P1DeckID: 2, P2DeckID: 1,
				EventDate: eventDate, EventID: eventID, MatchID: matchID,
			},
		},
		Events: []models.Event{
			{EventID: eventID, EventDate: eventDate, EventTypeID: 10},
		},
		Standings: []models.EventStanding{
			{EventID: eventID, EventRank: 1, Player: "ALICE"},
			{EventID: eventID, EventRank: 2, Player: "BOB"},
		},
		StandingRowsPerEvent: map[int64]int{eventID: 2},
		UnpairedMatchIDs:     map[int64]bool{},
	}
}

// Reloading an unchanged window must replace the events and skip every
// match and standing as a duplicate: the purge deletes only events, so
// the children survive and their conflict keys catch the re-inserts.
func TestLoadUnchangedWindowReloadSkipsDuplicates(t *testing.T) {
	db := setupTestDB(t)
	s := NewImportService(db, nil, nil, nil, nil, &tracing.NewRelicTracer{}, metrics.NewMetrics(), "VINTAGE")

	windowStart := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := windowStart.AddDate(0, 0, 7)
	eventDate := windowStart.AddDate(0, 0, 1)
	ctx := context.Background()

	first, err := s.load(ctx, uuid.New(), reloadTestBatch(eventDate), windowStart, windowEnd)
	require.NoError(t, err)
	require.Equal(t, 0, first.EventsDeleted)
	require.Equal(t, 1, first.EventsInserted)
	require.Equal(t, 2, first.MatchesInserted)
	require.Equal(t, 0, first.MatchesSkipped)
	require.Equal(t, 2, first.StandingsInserted)
	require.Empty(t, first.MatchRejections)

	second, err := s.load(ctx, uuid.New(), reloadTestBatch(eventDate), windowStart, windowEnd)
	require.NoError(t, err)
	require.Equal(t, 1, second.EventsDeleted)
	require.Equal(t, 2, second.MatchesDeleted)
	require.Equal(t, 2, second.StandingsDeleted)
	require.Equal(t, 1, second.EventsInserted)
	require.Equal(t, 0, second.MatchesInserted)
	require.Equal(t, 2, second.MatchesSkipped)
	require.Equal(t, 0, second.StandingsInserted)
	require.Equal(t, 2, second.StandingsSkipped)

	require.Len(t, second.MatchRejections, 2)
	for _, rej := range second.MatchRejections {
		require.Equal(t, "Duplicate", rej.Reason)
		require.Equal(t, models.SeverityExclude, rej.Severity)
	}
	require.Len(t, second.StandingRejections, 2)
	for _, rej := range second.StandingRejections {
		require.Equal(t, "Duplicate", rej.Reason)
	}

	var matches int64
	require.NoError(t, db.Model(&models.Match{}).Count(&matches).Error)
	require.Equal(t, int64(2), matches)
}

package services

import (
	"testing"
	"time"

	"example.com/metagame/services/importer/internal/models"

	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 9, d, 0, 0, 0, 0, time.UTC)
}

func TestSegmentStandingsSplitsAtRankOne(t *testing.T) {
	rows := []models.RawStandingRow{
		{Player: "ALICE", Rank: 1, EventDate: day(1), EventType: "League"},
		{Player: "BOB", Rank: 2, EventDate: day(1)},
		{Player: "CARA", Rank: 1, EventDate: day(2), EventType: "Challenge"},
		{Player: "DAN", Rank: 2, EventDate: day(2)},
		{Player: "EVE", Rank: 3, EventDate: day(2)},
	}

	segments := segmentStandings(rows)

	require.Len(t, segments, 2)
	require.Len(t, segments[0].Rows, 2)
	require.Len(t, segments[1].Rows, 3)
	require.Equal(t, "LEAGUE", segments[0].EventType)
	require.Equal(t, "CHALLENGE", segments[1].EventType)
	require.Equal(t, day(1), segments[0].Date)
	require.Equal(t, day(2), segments[1].Date)
}

func TestSegmentStandingsEmptyInput(t *testing.T) {
	require.Empty(t, segmentStandings(nil))
}

func TestTopPlayersByMatches(t *testing.T) {
	rows := make([]models.RawStandingRow, 0, 10)
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}
	for i, name := range names {
		rows = append(rows, models.RawStandingRow{Player: name, Wins: 10 - i, Losses: 0, Rank: i + 1})
	}

	top := topPlayersByMatches(rows)

	require.Len(t, top, 8)
	require.True(t, top["A"])
	require.True(t, top["H"])
	require.False(t, top["I"])
	require.False(t, top["J"])
}

func TestEventTop8CountsPerspectiveRows(t *testing.T) {
	var rows []*ResultRow
	// ALICE plays five matches in event 1, the rest play one each.
	for i := 0; i < 5; i++ {
		rows = append(rows, &ResultRow{Player1: "ALICE", EventID: 1})
	}
	for _, name := range []string{"B", "C", "D", "E", "F", "G", "H", "I"} {
		rows = append(rows, &ResultRow{Player1: name, EventID: 1})
	}
	rows = append(rows, &ResultRow{Player1: "OTHER", EventID: 2})

	top := eventTop8(rows, 1)

	require.Len(t, top, 8)
	require.True(t, top["ALICE"])
	require.False(t, top["OTHER"])
	require.False(t, top["I"]) // ties keep first-seen order
}

func TestMatchSegmentRequiresDateAndOverlap(t *testing.T) {
	seg := standingSegment{
		Date:      day(5),
		EventType: "LEAGUE",
		Top8:      map[string]bool{"A": true, "B": true, "C": true, "D": true, "E": true, "F": true, "G": true, "H": true},
	}
	segments := []standingSegment{seg}

	top8 := map[string]bool{"A": true, "B": true, "C": true, "D": true, "E": true, "F": true, "X": true, "Y": true}
	got := matchSegment(segments, day(5), top8)
	require.NotNil(t, got)
	require.Equal(t, "LEAGUE", got.EventType)

	// Same overlap on a different day does not match.
	require.Nil(t, matchSegment(segments, day(6), top8))

	// Five shared players is below the threshold.
	weak := map[string]bool{"A": true, "B": true, "C": true, "D": true, "E": true, "X": true, "Y": true, "Z": true}
	require.Nil(t, matchSegment(segments, day(5), weak))
}

func TestMatchSegmentFirstMatchWins(t *testing.T) {
	top8 := map[string]bool{"A": true, "B": true, "C": true, "D": true, "E": true, "F": true, "G": true, "H": true}
	segments := []standingSegment{
		{Date: day(5), EventType: "FIRST", Top8: top8},
		{Date: day(5), EventType: "SECOND", Top8: top8},
	}

	got := matchSegment(segments, day(5), top8)
	require.NotNil(t, got)
	require.Equal(t, "FIRST", got.EventType)
}

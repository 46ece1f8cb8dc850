package services

import (
	"testing"

	"example.com/metagame/services/importer/internal/models"

	"github.com/stretchr/testify/require"
)

const testFallbackDeckID = int64(99)

func validRow() *ResultRow {
	return &ResultRow{
		Player1:  "ALICE",
		Player2:  "BOB",
		P1Wins:   2,
		P2Wins:   1,
		Winner:   models.WinnerP1,
		P1DeckID: 1,
		P2DeckID: 2,
		MatchID:  11000000000,
	}
}

func TestMatchRulesAcceptValidRow(t *testing.T) {
	rules := matchRules(testFallbackDeckID, map[int64]bool{}, map[int64]bool{})

	_, ok := firstViolation(rules, validRow())
	require.False(t, ok)
}

func TestMatchRulesWinsOutOfRange(t *testing.T) {
	rules := matchRules(testFallbackDeckID, map[int64]bool{}, map[int64]bool{})

	row := validRow()
	row.P1Wins = 3
	violation, ok := firstViolation(rules, row)
	require.True(t, ok)
	require.Equal(t, "P1_WINS out of range.", violation.message)
	require.Equal(t, models.SeverityExclude, violation.severity)

	row = validRow()
	row.P2Wins = -1
	violation, ok = firstViolation(rules, row)
	require.True(t, ok)
	require.Equal(t, "P2_WINS out of range.", violation.message)
}

func TestMatchRulesWinnerContradiction(t *testing.T) {
	rules := matchRules(testFallbackDeckID, map[int64]bool{}, map[int64]bool{})

	row := validRow()
	row.Winner = models.WinnerP2
	violation, ok := firstViolation(rules, row)
	require.True(t, ok)
	require.Equal(t, "P1_WINS = 2, but MATCH_WINNER = P2", violation.message)
	require.Equal(t, models.SeverityExclude, violation.severity)

	row = validRow()
	row.P1Wins, row.P2Wins = 1, 2
	row.Winner = models.WinnerP1
	violation, ok = firstViolation(rules, row)
	require.True(t, ok)
	require.Equal(t, "P2_WINS = 2, but MATCH_WINNER = P1", violation.message)
}

func TestMatchRulesShortCircuit(t *testing.T) {
	// A row violating both a reject rule and a warn rule records only
	// the first match.
	rules := matchRules(testFallbackDeckID, map[int64]bool{}, map[int64]bool{})

	row := validRow()
	row.P1Wins = 5
	row.P1DeckID = testFallbackDeckID
	violation, ok := firstViolation(rules, row)
	require.True(t, ok)
	require.Equal(t, "P1_WINS out of range.", violation.message)
	require.Equal(t, models.SeverityExclude, violation.severity)
}

func TestMatchRulesOwnViolationBeatsPropagation(t *testing.T) {
	// A row whose own data is bad keeps its own message even when its
	// match ID is in the rejected set.
	row := validRow()
	row.P2Wins = 7
	rules := matchRules(testFallbackDeckID, map[int64]bool{row.MatchID: true}, map[int64]bool{})

	violation, ok := firstViolation(rules, row)
	require.True(t, ok)
	require.Equal(t, "P2_WINS out of range.", violation.message)
}

func TestMatchRulesPropagatedRejection(t *testing.T) {
	row := validRow()
	rules := matchRules(testFallbackDeckID, map[int64]bool{row.MatchID: true}, map[int64]bool{})

	violation, ok := firstViolation(rules, row)
	require.True(t, ok)
	require.Equal(t, "Inverted match record was rejected.", violation.message)
	require.Equal(t, models.SeverityExclude, violation.severity)
}

func TestMatchRulesUnpairedRowWarns(t *testing.T) {
	row := validRow()
	rules := matchRules(testFallbackDeckID, map[int64]bool{}, map[int64]bool{row.MatchID: true})

	violation, ok := firstViolation(rules, row)
	require.True(t, ok)
	require.Equal(t, "Match has no inverted perspective row.", violation.message)
	require.Equal(t, models.SeverityWarn, violation.severity)
}

func TestMatchRulesFallbackDeckWarns(t *testing.T) {
	rules := matchRules(testFallbackDeckID, map[int64]bool{}, map[int64]bool{})

	row := validRow()
	row.P2DeckID = testFallbackDeckID
	violation, ok := firstViolation(rules, row)
	require.True(t, ok)
	require.Equal(t, "P2_DECK_ID not found in classification table.", violation.message)
	require.Equal(t, models.SeverityWarn, violation.severity)
}

func TestEventRulesFallbackTypeWarns(t *testing.T) {
	rules := eventRules(42)

	violation, ok := firstViolation(rules, &models.Event{EventTypeID: 42})
	require.True(t, ok)
	require.Equal(t, "EVENT_TYPE_ID not found in classification table.", violation.message)
	require.Equal(t, models.SeverityWarn, violation.severity)

	_, ok = firstViolation(rules, &models.Event{EventTypeID: 7})
	require.False(t, ok)
}

func TestStandingRulesRankBounds(t *testing.T) {
	rules := standingRules(map[int64]int{1: 8})

	violation, ok := firstViolation(rules, &models.EventStanding{EventID: 1, EventRank: 0, Player: "ALICE"})
	require.True(t, ok)
	require.Equal(t, "EVENT_RANK out of range.", violation.message)
	require.Equal(t, models.SeverityExclude, violation.severity)

	violation, ok = firstViolation(rules, &models.EventStanding{EventID: 1, EventRank: 9, Player: "ALICE"})
	require.True(t, ok)
	require.Equal(t, "EVENT_RANK out of range.", violation.message)

	_, ok = firstViolation(rules, &models.EventStanding{EventID: 1, EventRank: 8, Player: "ALICE"})
	require.False(t, ok)
}

func TestStandingRulesLongNameWarns(t *testing.T) {
	rules := standingRules(map[int64]int{1: 8})

	long := "A_VERY_LONG_PLAYER_NAME_OVER_THIRTY_CHARS"
	violation, ok := firstViolation(rules, &models.EventStanding{EventID: 1, EventRank: 3, Player: long})
	require.True(t, ok)
	require.Equal(t, "P1 value greater than 30 characters.", violation.message)
	require.Equal(t, models.SeverityWarn, violation.severity)
}

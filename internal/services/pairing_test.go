package services

import (
	"math/rand"
	"testing"
	"time"

	"example.com/metagame/services/importer/internal/models"

	"github.com/stretchr/testify/require"
)

func TestNextID(t *testing.T) {
	require.Equal(t, models.EventIDBase, nextID(nil, models.EventIDBase))

	max := int64(12000000041)
	require.Equal(t, int64(12000000042), nextID(&max, models.EventIDBase))
}

func TestAssignEventIDs(t *testing.T) {
	// A label marks the first row of its event: rows 2-3 are the
	// league, row 4 is the challenge, and rows 0-1 above the first
	// label form their own unlabeled block.
	rows := []models.RawResultRow{
		{EventType: ""},
		{EventType: ""},
		{EventType: "LEAGUE"},
		{EventType: ""},
		{EventType: "CHALLENGE"},
	}

	ids := assignEventIDs(rows, 100)

	require.Equal(t, []int64{102, 102, 101, 101, 100}, ids)
}

func TestAssignEventIDsTrailingUnlabeledRows(t *testing.T) {
	// Unlabeled rows after a label stay in the labeled row's event.
	rows := []models.RawResultRow{
		{EventType: "LEAGUE"},
		{EventType: ""},
		{EventType: ""},
	}

	ids := assignEventIDs(rows, 500)

	require.Equal(t, []int64{500, 500, 500}, ids)
}

func TestAssignMatchIDsPairsPerspectiveRows(t *testing.T) {
	rows := []*ResultRow{
		{Player1: "ALICE", Player2: "BOB", EventID: 1},
		{Player1: "CARA", Player2: "DAN", EventID: 1},
		{Player1: "BOB", Player2: "ALICE", EventID: 1},
		{Player1: "DAN", Player2: "CARA", EventID: 1},
	}

	unpaired := assignMatchIDs(rows, 1000)

	require.Empty(t, unpaired)
	require.Equal(t, rows[0].MatchID, rows[2].MatchID)
	require.Equal(t, rows[1].MatchID, rows[3].MatchID)
	require.NotEqual(t, rows[0].MatchID, rows[1].MatchID)
	for _, r := range rows {
		require.GreaterOrEqual(t, r.MatchID, int64(1000))
		require.Less(t, r.MatchID, int64(1002))
	}
}

func TestAssignMatchIDsRematchSplitsPairs(t *testing.T) {
	// The same two players meet twice in one event: four rows, two
	// matches, paired in row order.
	rows := []*ResultRow{
		{Player1: "ALICE", Player2: "BOB", EventID: 1},
		{Player1: "BOB", Player2: "ALICE", EventID: 1},
		{Player1: "ALICE", Player2: "BOB", EventID: 1},
		{Player1: "BOB", Player2: "ALICE", EventID: 1},
	}

	unpaired := assignMatchIDs(rows, 2000)

	require.Empty(t, unpaired)
	require.Equal(t, rows[0].MatchID, rows[1].MatchID)
	require.Equal(t, rows[2].MatchID, rows[3].MatchID)
	require.NotEqual(t, rows[0].MatchID, rows[2].MatchID)
}

func TestAssignMatchIDsSamePlayersDifferentEvents(t *testing.T) {
	rows := []*ResultRow{
		{Player1: "ALICE", Player2: "BOB", EventID: 1},
		{Player1: "BOB", Player2: "ALICE", EventID: 2},
	}

	unpaired := assignMatchIDs(rows, 3000)

	require.NotEqual(t, rows[0].MatchID, rows[1].MatchID)
	require.Len(t, unpaired, 2)
}

func TestAssignMatchIDsFlagsOddGroup(t *testing.T) {
	rows := []*ResultRow{
		{Player1: "ALICE", Player2: "BOB", EventID: 1},
		{Player1: "BOB", Player2: "ALICE", EventID: 1},
		{Player1: "EVE", Player2: "MALLORY", EventID: 1},
	}

	unpaired := assignMatchIDs(rows, 4000)

	require.Len(t, unpaired, 1)
	require.True(t, unpaired[rows[2].MatchID])
	require.False(t, unpaired[rows[0].MatchID])
}

func TestAssignMatchIDsDeterministicUnderRowOrder(t *testing.T) {
	build := func() []*ResultRow {
		return []*ResultRow{
			{Player1: "ALICE", Player2: "BOB", EventID: 1},
			{Player1: "CARA", Player2: "DAN", EventID: 1},
			{Player1: "BOB", Player2: "ALICE", EventID: 1},
			{Player1: "DAN", Player2: "CARA", EventID: 1},
			{Player1: "EVE", Player2: "FAY", EventID: 2},
			{Player1: "FAY", Player2: "EVE", EventID: 2},
		}
	}

	first := build()
	assignMatchIDs(first, 9000)

	// Shuffle the input, assign, then read the IDs back through the
	// original ordering: every logical row must receive the same ID,
	// because group numbering follows sorted key order, not input order.
	second := build()
	shuffled := make([]*ResultRow, len(second))
	copy(shuffled, second)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rng.Shuffle(len(shuffled), func(a, b int) {
		shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
	})
	assignMatchIDs(shuffled, 9000)

	for i := range first {
		require.Equal(t, first[i].MatchID, second[i].MatchID)
	}
}

func TestPairingKeyUnordered(t *testing.T) {
	a := &ResultRow{Player1: "ALICE", Player2: "BOB", EventID: 7}
	b := &ResultRow{Player1: "BOB", Player2: "ALICE", EventID: 7}
	c := &ResultRow{Player1: "ALICE", Player2: "BOB", EventID: 8}

	require.Equal(t, pairingKey(a), pairingKey(b))
	require.NotEqual(t, pairingKey(a), pairingKey(c))
}

package services

import (
	"testing"
	"time"

	"example.com/metagame/services/importer/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestDeriveWinner(t *testing.T) {
	require.Equal(t, models.WinnerP1, deriveWinner(intp(1), intp(0)))
	require.Equal(t, models.WinnerP2, deriveWinner(intp(0), intp(1)))
	require.Equal(t, models.WinnerNA, deriveWinner(intp(1), intp(1)))
	require.Equal(t, models.WinnerNA, deriveWinner(intp(0), intp(0)))
	require.Equal(t, models.WinnerNA, deriveWinner(nil, intp(1)))
	require.Equal(t, models.WinnerNA, deriveWinner(nil, nil))
}

func TestCleanLabel(t *testing.T) {
	require.Equal(t, "COMBO", cleanLabel("  combo "))
	require.Equal(t, "NA", cleanLabel(""))
	require.Equal(t, "NA", cleanLabel("   "))
	require.Equal(t, "NO SHOW", cleanLabel("No Show"))
}

func TestFillEventTypes(t *testing.T) {
	rows := []models.RawResultRow{
		{EventType: ""},
		{EventType: "league "},
		{EventType: ""},
		{EventType: "Challenge"},
		{EventType: ""},
	}

	labels := fillEventTypes(rows)

	// Rows before the first label stay empty; blanks after a label
	// inherit it, including the trailing fragment.
	require.Equal(t, []string{"", "LEAGUE", "LEAGUE", "CHALLENGE", "CHALLENGE"}, labels)
}

func TestMatchRejectionCarriesRowPayload(t *testing.T) {
	row := validRow()
	row.P1Note = "NA"
	row.EventID = 12000000005

	runID := uuid.New()
	rej := matchRejection(runID, row, rule[*ResultRow]{
		message:  "P1_WINS out of range.",
		severity: models.SeverityExclude,
	}, time.Now())

	require.Equal(t, row.MatchID, rej.MatchID)
	require.Equal(t, "ALICE", rej.Player1)
	require.Equal(t, "BOB", rej.Player2)
	require.Equal(t, row.EventID, rej.EventID)
	require.Equal(t, models.SeverityExclude, rej.Severity)
	require.Equal(t, "P1_WINS out of range.", rej.Reason)
	require.Equal(t, runID, rej.LoadReportID)
	require.NotEqual(t, rej.ID, rej.LoadReportID)
}

package services

import (
	"example.com/metagame/services/importer/internal/models"
)

// rule is one ordered business check. Rules are evaluated first-match-
// wins: the first rule whose check passes supplies the recorded message
// and severity, and no later rule is consulted.
type rule[T any] struct {
	check    func(T) bool
	message  string
	severity models.Severity
}

// firstViolation returns the first matching rule for an entity.
func firstViolation[T any](rules []rule[T], entity T) (rule[T], bool) {
	for _, r := range rules {
		if r.check(entity) {
			return r, true
		}
	}
	return rule[T]{}, false
}

// matchRules builds the ordered match rule list for one run. The
// rejected set propagates E-rejections to the paired perspective row;
// the unpaired set flags rows whose pairing group had an odd size.
func matchRules(fallbackDeckID int64, rejected map[int64]bool, unpaired map[int64]bool) []rule[*ResultRow] {
	return []rule[*ResultRow]{
		{
			check:    func(r *ResultRow) bool { return r.P1Wins > 2 || r.P1Wins < 0 },
			message:  "P1_WINS out of range.",
			severity: models.SeverityExclude,
		},
		{
			check:    func(r *ResultRow) bool { return r.P2Wins > 2 || r.P2Wins < 0 },
			message:  "P2_WINS out of range.",
			severity: models.SeverityExclude,
		},
		{
			check:    func(r *ResultRow) bool { return r.P1Wins == 2 && r.Winner == models.WinnerP2 },
			message:  "P1_WINS = 2, but MATCH_WINNER = P2",
			severity: models.SeverityExclude,
		},
		{
			check:    func(r *ResultRow) bool { return r.P2Wins == 2 && r.Winner == models.WinnerP1 },
			message:  "P2_WINS = 2, but MATCH_WINNER = P1",
			severity: models.SeverityExclude,
		},
		{
			check:    func(r *ResultRow) bool { return rejected[r.MatchID] },
			message:  "Inverted match record was rejected.",
			severity: models.SeverityExclude,
		},
		{
			check:    func(r *ResultRow) bool { return unpaired[r.MatchID] },
			message:  "Match has no inverted perspective row.",
			severity: models.SeverityWarn,
		},
		{
			check:    func(r *ResultRow) bool { return r.P1DeckID == fallbackDeckID },
			message:  "P1_DECK_ID not found in classification table.",
			severity: models.SeverityWarn,
		},
		{
			check:    func(r *ResultRow) bool { return r.P2DeckID == fallbackDeckID },
			message:  "P2_DECK_ID not found in classification table.",
			severity: models.SeverityWarn,
		},
	}
}

// eventRules builds the ordered event rule list for one run.
func eventRules(fallbackEventTypeID int64) []rule[*models.Event] {
	return []rule[*models.Event]{
		{
			check:    func(e *models.Event) bool { return e.EventTypeID == fallbackEventTypeID },
			message:  "EVENT_TYPE_ID not found in classification table.",
			severity: models.SeverityWarn,
		},
	}
}

// standingRules builds the ordered standings rule list. The rank upper
// bound is the number of standings rows recorded for that row's event.
func standingRules(rowsPerEvent map[int64]int) []rule[*models.EventStanding] {
	return []rule[*models.EventStanding]{
		{
			check:    func(s *models.EventStanding) bool { return s.EventRank < 1 },
			message:  "EVENT_RANK out of range.",
			severity: models.SeverityExclude,
		},
		{
			check:    func(s *models.EventStanding) bool { return s.EventRank > rowsPerEvent[s.EventID] },
			message:  "EVENT_RANK out of range.",
			severity: models.SeverityExclude,
		},
		{
			check:    func(s *models.EventStanding) bool { return len(s.Player) > models.MaxPlayerNameLen },
			message:  "P1 value greater than 30 characters.",
			severity: models.SeverityWarn,
		},
	}
}

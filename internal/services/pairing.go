package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"example.com/metagame/services/importer/internal/models"
)

// ResultRow is a cleaned perspective row flowing through the pipeline,
// carrying its assigned surrogate identifiers.
type ResultRow struct {
	Player1        string
	Player2        string
	P1Wins         int
	P2Wins         int
	Winner         string
	P1Archetype    string
	P2Archetype    string
	P1Subarchetype string
	P2Subarchetype string
	P1Note         string
	P2Note         string
	EventDate      time.Time
	EventType      string
	EventID        int64
	MatchID        int64
	P1DeckID       int64
	P2DeckID       int64
}

// nextID returns the first surrogate ID of the next allocation block:
// the base constant on an empty store, otherwise one past the persisted
// maximum.
func nextID(max *int64, base int64) int64 {
	if max == nil {
		return base
	}
	return *max + 1
}

// assignEventIDs walks the raw batch in reverse and assigns each row
// the current counter value, advancing the counter after rows carrying
// a non-empty event-type label. In forward order a label marks the
// first row of its event and the unlabeled rows below it inherit the
// same ID until the next label; rows above the first label form their
// own unlabeled block. Identical input yields identical assignments, so
// a re-run after a window purge reproduces its IDs.
func assignEventIDs(rows []models.RawResultRow, start int64) []int64 {
	ids := make([]int64, len(rows))
	count := start
	for i := len(rows) - 1; i >= 0; i-- {
		ids[i] = count
		if strings.TrimSpace(rows[i].EventType) != "" {
			count++
		}
	}
	return ids
}

// pairingKey identifies the unordered {player1, player2} set within an
// event. Both perspective rows of a match produce the same key.
func pairingKey(r *ResultRow) string {
	p1, p2 := r.Player1, r.Player2
	if p2 < p1 {
		p1, p2 = p2, p1
	}
	return fmt.Sprintf("%s|%s|%d", p1, p2, r.EventID)
}

// assignMatchIDs groups perspective rows into matches. Rows are stable-
// sorted by (pairing key, original index); consecutive pairs within a
// key group share a match ID, numbered sequentially in sorted order from
// the start offset; original row order is untouched because only the
// MatchID field is written. Returns the set of match IDs whose group had
// an odd row count: those rows have no partner perspective.
func assignMatchIDs(rows []*ResultRow, start int64) map[int64]bool {
	type keyedIndex struct {
		key string
		idx int
	}

	order := make([]keyedIndex, len(rows))
	for i, r := range rows {
		order[i] = keyedIndex{key: pairingKey(r), idx: i}
	}
	sort.SliceStable(order, func(a, b int) bool {
		if order[a].key != order[b].key {
			return order[a].key < order[b].key
		}
		return order[a].idx < order[b].idx
	})

	group := int64(-1)
	prevKey := ""
	posInKey := 0
	for _, k := range order {
		if k.key != prevKey {
			prevKey = k.key
			posInKey = 0
		}
		if posInKey%2 == 0 {
			group++
		}
		rows[k.idx].MatchID = start + group
		posInKey++
	}

	perMatch := make(map[int64]int)
	for _, r := range rows {
		perMatch[r.MatchID]++
	}
	unpaired := make(map[int64]bool)
	for id, n := range perMatch {
		if n == 1 {
			unpaired[id] = true
		}
	}
	return unpaired
}

package services

import (
	"sort"
	"strings"
	"time"

	"example.com/metagame/services/importer/internal/models"
)

// topOverlapThreshold is the number of shared top-8 players required to
// attach a standings segment to a computed event.
const topOverlapThreshold = 6

// standingSegment is one event's worth of rows from the standings grid,
// delimited by Rank==1 boundaries.
type standingSegment struct {
	Date      time.Time
	EventType string
	Top8      map[string]bool
	Rows      []models.RawStandingRow
}

// segmentStandings splits the standings grid into per-event segments. A
// new segment starts at every Rank==1 row; the segment date is the
// latest date among its rows and the label is the first non-empty one.
func segmentStandings(rows []models.RawStandingRow) []standingSegment {
	var segments []standingSegment
	var current []models.RawStandingRow

	flush := func() {
		if len(current) == 0 {
			return
		}
		segments = append(segments, buildSegment(current))
		current = nil
	}

	for _, row := range rows {
		if row.Rank == 1 {
			flush()
		}
		current = append(current, row)
	}
	flush()

	return segments
}

func buildSegment(rows []models.RawStandingRow) standingSegment {
	seg := standingSegment{Rows: rows}
	for _, row := range rows {
		if row.EventDate.After(seg.Date) {
			seg.Date = row.EventDate
		}
		if seg.EventType == "" && strings.TrimSpace(row.EventType) != "" {
			seg.EventType = strings.ToUpper(strings.TrimSpace(row.EventType))
		}
	}
	seg.Top8 = topPlayersByMatches(rows)
	return seg
}

// topPlayersByMatches returns the segment's top 8 players ranked by
// total matches played (wins plus losses), stable on sheet order.
func topPlayersByMatches(rows []models.RawStandingRow) map[string]bool {
	sorted := make([]models.RawStandingRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Wins+sorted[a].Losses > sorted[b].Wins+sorted[b].Losses
	})

	top := make(map[string]bool, 8)
	for i := 0; i < len(sorted) && i < 8; i++ {
		top[sorted[i].Player] = true
	}
	return top
}

// eventTop8 returns an event's 8 most active players measured by
// perspective-row count in the cleaned batch.
func eventTop8(rows []*ResultRow, eventID int64) map[string]bool {
	counts := make(map[string]int)
	var order []string
	for _, r := range rows {
		if r.EventID != eventID {
			continue
		}
		if _, seen := counts[r.Player1]; !seen {
			order = append(order, r.Player1)
		}
		counts[r.Player1]++
	}

	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})

	top := make(map[string]bool, 8)
	for i := 0; i < len(order) && i < 8; i++ {
		top[order[i]] = true
	}
	return top
}

// matchSegment finds the standings segment for an event: same date and
// at least topOverlapThreshold shared top-8 players. The first matching
// segment wins.
func matchSegment(segments []standingSegment, eventDate time.Time, top8 map[string]bool) *standingSegment {
	for i := range segments {
		seg := &segments[i]
		if !sameDay(seg.Date, eventDate) {
			continue
		}
		overlap := 0
		for player := range seg.Top8 {
			if top8[player] {
				overlap++
			}
		}
		if overlap >= topOverlapThreshold {
			return seg
		}
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

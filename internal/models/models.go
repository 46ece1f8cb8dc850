package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Surrogate ID base constants. New IDs are always allocated above the
// current persisted maximum, starting at these bases on an empty store.
const (
	MatchIDBase int64 = 11000000000
	EventIDBase int64 = 12000000000
)

// Match winner markers derived from the per-perspective winner flags.
const (
	WinnerP1 = "P1"
	WinnerP2 = "P2"
	WinnerNA = "NA"
)

// Designated fallback reference rows, one per format. Every free-text
// label resolves to some code because these rows are guaranteed to exist.
const (
	FallbackArchetype    = "NA"
	FallbackSubarchetype = "INVALID_NAME"
	FallbackEventType    = "INVALID_TYPE"
)

// Severity classifies a rejection record: E excludes the entity from the
// load, W loads it but keeps an audit record.
type Severity string

const (
	SeverityExclude Severity = "E"
	SeverityWarn    Severity = "W"
)

// MaxPlayerNameLen is the column width for standing player names. Longer
// names are truncated and recorded with a W rejection.
const MaxPlayerNameLen = 30

// RawResultRow is one player-perspective record from the source sheet.
// It is never persisted directly; the pipeline derives all entities
// from it.
type RawResultRow struct {
	Player1        string
	Player2        string
	P1Wins         *int
	P2Wins         *int
	Winner1        *int
	Winner2        *int
	P1Archetype    string
	P2Archetype    string
	P1Subarchetype string
	P2Subarchetype string
	P1Note         string
	P2Note         string
	EventDate      time.Time
	EventType      string // optional label; empty means no event boundary
}

// RawStandingRow is one row of the standings sheet.
type RawStandingRow struct {
	Player    string
	Wins      int
	Losses    int
	Byes      int
	Rank      int
	EventDate time.Time
	EventType string
}

// ValidDeck is a classification reference entry mapping a free-text
// archetype/subarchetype pair to a canonical deck code.
type ValidDeck struct {
	DeckID       int64     `gorm:"column:deck_id;primaryKey;autoIncrement" json:"deck_id"`
	Format       string    `gorm:"not null;uniqueIndex:idx_valid_decks_key,priority:1" json:"format"`
	Archetype    string    `gorm:"not null;uniqueIndex:idx_valid_decks_key,priority:2" json:"archetype"`
	Subarchetype string    `gorm:"not null;uniqueIndex:idx_valid_decks_key,priority:3" json:"subarchetype"`
	ProcessedAt  time.Time `gorm:"not null" json:"processed_at"`
}

// ValidEventType maps a free-text event-type label to a canonical code.
type ValidEventType struct {
	EventTypeID int64     `gorm:"column:event_type_id;primaryKey;autoIncrement" json:"event_type_id"`
	Format      string    `gorm:"not null;uniqueIndex:idx_valid_event_types_key,priority:1" json:"format"`
	EventType   string    `gorm:"not null;uniqueIndex:idx_valid_event_types_key,priority:2" json:"event_type"`
	ProcessedAt time.Time `gorm:"not null" json:"processed_at"`
}

// Event is one detected tournament event. Matches and standings carry
// its id without an enforced constraint: the window purge deletes only
// events, and on the reload the children's conflict keys skip the rows
// already present as duplicates.
type Event struct {
	EventID     int64     `gorm:"primaryKey;autoIncrement:false" json:"event_id"`
	EventDate   time.Time `gorm:"not null;index" json:"event_date"`
	EventTypeID int64     `gorm:"not null" json:"event_type_id"`
	ProcessedAt time.Time `gorm:"not null" json:"processed_at"`
}

// Match is one perspective of a played match. The two perspective rows
// of a pairing share a MatchID; the natural key is (match_id, player1).
type Match struct {
	MatchID     int64     `gorm:"primaryKey;autoIncrement:false" json:"match_id"`
	Player1     string    `gorm:"primaryKey" json:"player1"`
	Player2     string    `gorm:"not null" json:"player2"`
	P1Wins      int       `gorm:"not null" json:"p1_wins"`
	P2Wins      int       `gorm:"not null" json:"p2_wins"`
	Winner      string    `gorm:"not null" json:"winner"`
	P1DeckID    int64     `gorm:"not null" json:"p1_deck_id"`
	P2DeckID    int64     `gorm:"not null" json:"p2_deck_id"`
	P1Note      string    `json:"p1_note"`
	P2Note      string    `json:"p2_note"`
	EventID     int64     `gorm:"not null;index" json:"event_id"`
	ProcessedAt time.Time `gorm:"not null" json:"processed_at"`
}

// EventStanding is one final-standings row for an event; the natural key
// is (event_id, event_rank).
type EventStanding struct {
	EventID     int64     `gorm:"primaryKey;autoIncrement:false" json:"event_id"`
	EventRank   int       `gorm:"column:event_rank;primaryKey" json:"event_rank"`
	Player      string    `gorm:"size:30;not null" json:"player"`
	Byes        int       `gorm:"not null;default:0" json:"byes"`
	ProcessedAt time.Time `gorm:"not null" json:"processed_at"`
}

// LoadReport is the audit record for one import run. Every run produces
// exactly one, even when it aborts before touching the store.
type LoadReport struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WindowStart        time.Time `gorm:"not null" json:"window_start"`
	WindowEnd          time.Time `gorm:"not null" json:"window_end"`
	RecordsFullDataset int       `gorm:"not null;default:0" json:"records_full_dataset"`
	RecordsInWindow    int       `gorm:"not null;default:0" json:"records_in_window"`
	EventsIgnored      int       `gorm:"not null;default:0" json:"events_ignored"`
	RecordsProcessed   int       `gorm:"not null;default:0" json:"records_processed"`
	EventsDeleted      int       `gorm:"not null;default:0" json:"events_deleted"`
	EventsInserted     int       `gorm:"not null;default:0" json:"events_inserted"`
	EventsSkipped      int       `gorm:"not null;default:0" json:"events_skipped"`
	MatchesDeleted     int       `gorm:"not null;default:0" json:"matches_deleted"`
	MatchesInserted    int       `gorm:"not null;default:0" json:"matches_inserted"`
	MatchesSkipped     int       `gorm:"not null;default:0" json:"matches_skipped"`
	StandingsDeleted   int       `gorm:"not null;default:0" json:"standings_deleted"`
	StandingsInserted  int       `gorm:"not null;default:0" json:"standings_inserted"`
	StandingsSkipped   int       `gorm:"not null;default:0" json:"standings_skipped"`
	ErrorText          *string   `json:"error_text"`
	ProcessedAt        time.Time `gorm:"not null" json:"processed_at"`
}

// EventRejection is an audit record for an event that was excluded (E)
// or loaded with a warning (W).
type EventRejection struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LoadReportID uuid.UUID `gorm:"type:uuid;not null;index" json:"load_report_id"`
	EventID      int64     `gorm:"not null" json:"event_id"`
	EventDate    time.Time `json:"event_date"`
	EventTypeID  *int64    `json:"event_type_id"`
	Severity     Severity  `gorm:"size:1;not null" json:"severity"`
	Reason       string    `gorm:"not null" json:"reason"`
	ProcessedAt  time.Time `gorm:"not null" json:"processed_at"`
}

// MatchRejection carries the full match payload so rejected rows can be
// inspected without the source sheet.
type MatchRejection struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LoadReportID uuid.UUID `gorm:"type:uuid;not null;index" json:"load_report_id"`
	MatchID      int64     `gorm:"not null" json:"match_id"`
	Player1      string    `json:"player1"`
	Player2      string    `json:"player2"`
	P1Wins       int       `json:"p1_wins"`
	P2Wins       int       `json:"p2_wins"`
	Winner       string    `json:"winner"`
	P1DeckID     int64     `json:"p1_deck_id"`
	P2DeckID     int64     `json:"p2_deck_id"`
	P1Note       string    `json:"p1_note"`
	P2Note       string    `json:"p2_note"`
	EventID      int64     `json:"event_id"`
	Severity     Severity  `gorm:"size:1;not null" json:"severity"`
	Reason       string    `gorm:"not null" json:"reason"`
	ProcessedAt  time.Time `gorm:"not null" json:"processed_at"`
}

// StandingRejection is the audit record for a rejected or warned
// standings row.
type StandingRejection struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LoadReportID uuid.UUID `gorm:"type:uuid;not null;index" json:"load_report_id"`
	EventID      int64     `gorm:"not null" json:"event_id"`
	Player       string    `json:"player"`
	Byes         int       `json:"byes"`
	EventRank    int       `json:"event_rank"`
	Severity     Severity  `gorm:"size:1;not null" json:"severity"`
	Reason       string    `gorm:"not null" json:"reason"`
	ProcessedAt  time.Time `gorm:"not null" json:"processed_at"`
}

// SetupModels configures GORM models and runs migrations
func SetupModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&ValidDeck{},
		&ValidEventType{},
		&Event{},
		&Match{},
		&EventStanding{},
		&LoadReport{},
		&EventRejection{},
		&MatchRejection{},
		&StandingRejection{},
	)

	if err != nil {
		return errors.Wrap(err, "failed to run auto migrations")
	}

	return nil
}

package repositories

import (
	"context"

	"example.com/metagame/services/importer/internal/models"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrFallbackMissing indicates a reference table has no designated
// fallback row. That is a configuration-integrity failure: the tables
// were never seeded.
var ErrFallbackMissing = errors.New("fallback classification row missing")

// ReferenceRepository provides access to the classification and
// event-type reference tables.
type ReferenceRepository struct {
	db *gorm.DB
}

// NewReferenceRepository creates a new reference repository
func NewReferenceRepository(db *gorm.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// ListDecks returns all deck classification entries for a format.
func (r *ReferenceRepository) ListDecks(ctx context.Context, format string) ([]models.ValidDeck, error) {
	var decks []models.ValidDeck
	err := r.db.WithContext(ctx).Where("format = ?", format).Find(&decks).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list valid decks")
	}
	return decks, nil
}

// ListEventTypes returns all event-type entries for a format.
func (r *ReferenceRepository) ListEventTypes(ctx context.Context, format string) ([]models.ValidEventType, error) {
	var types []models.ValidEventType
	err := r.db.WithContext(ctx).Where("format = ?", format).Find(&types).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list valid event types")
	}
	return types, nil
}

// FallbackDeckID returns the designated "unrecognized classification"
// deck code for a format.
func (r *ReferenceRepository) FallbackDeckID(ctx context.Context, format string) (int64, error) {
	var deck models.ValidDeck
	err := r.db.WithContext(ctx).
		Where("format = ? AND archetype = ? AND subarchetype = ?",
			format, models.FallbackArchetype, models.FallbackSubarchetype).
		First(&deck).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, errors.Wrapf(ErrFallbackMissing, "no fallback deck for format %s", format)
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to resolve fallback deck code")
	}
	return deck.DeckID, nil
}

// FallbackEventTypeID returns the designated "unrecognized type" code
// for a format.
func (r *ReferenceRepository) FallbackEventTypeID(ctx context.Context, format string) (int64, error) {
	var et models.ValidEventType
	err := r.db.WithContext(ctx).
		Where("format = ? AND event_type = ?", format, models.FallbackEventType).
		First(&et).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, errors.Wrapf(ErrFallbackMissing, "no fallback event type for format %s", format)
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to resolve fallback event type code")
	}
	return et.EventTypeID, nil
}

// UpsertDecks inserts deck classification entries, silently skipping
// rows already present under the (format, archetype, subarchetype) key.
func (r *ReferenceRepository) UpsertDecks(ctx context.Context, decks []models.ValidDeck) (int, error) {
	inserted := 0
	for i := range decks {
		result := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "format"}, {Name: "archetype"}, {Name: "subarchetype"}},
				DoNothing: true,
			}).
			Create(&decks[i])
		if result.Error != nil {
			log.Error().Err(result.Error).
				Str("archetype", decks[i].Archetype).
				Str("subarchetype", decks[i].Subarchetype).
				Msg("Failed to insert valid deck, skipping row")
			continue
		}
		inserted += int(result.RowsAffected)
	}
	return inserted, nil
}

// UpsertEventTypes inserts event-type entries, skipping duplicates on
// the (format, event_type) key.
func (r *ReferenceRepository) UpsertEventTypes(ctx context.Context, types []models.ValidEventType) (int, error) {
	inserted := 0
	for i := range types {
		result := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "format"}, {Name: "event_type"}},
				DoNothing: true,
			}).
			Create(&types[i])
		if result.Error != nil {
			log.Error().Err(result.Error).
				Str("event_type", types[i].EventType).
				Msg("Failed to insert valid event type, skipping row")
			continue
		}
		inserted += int(result.RowsAffected)
	}
	return inserted, nil
}

// EventRepository provides read access to persisted events and the
// window bookkeeping queries the load step needs.
type EventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// MaxEventID returns the highest persisted event ID, or nil when no
// events exist yet.
func (r *EventRepository) MaxEventID(ctx context.Context) (*int64, error) {
	var max *int64
	err := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Select("MAX(event_id)").
		Scan(&max).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to read max event id")
	}
	return max, nil
}

// MatchRepository provides read access to persisted matches.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// MaxMatchID returns the highest persisted match ID, or nil when no
// matches exist yet.
func (r *MatchRepository) MaxMatchID(ctx context.Context) (*int64, error) {
	var max *int64
	err := r.db.WithContext(ctx).
		Model(&models.Match{}).
		Select("MAX(match_id)").
		Scan(&max).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to read max match id")
	}
	return max, nil
}

// LoadReportRepository persists run audit records.
type LoadReportRepository struct {
	db *gorm.DB
}

// NewLoadReportRepository creates a new load report repository
func NewLoadReportRepository(db *gorm.DB) *LoadReportRepository {
	return &LoadReportRepository{db: db}
}

// CreateReport persists the load report for a run.
func (r *LoadReportRepository) CreateReport(ctx context.Context, report *models.LoadReport) error {
	return errors.Wrap(
		r.db.WithContext(ctx).Create(report).Error,
		"failed to insert load report")
}

// GetReport fetches one load report by its run identifier.
func (r *LoadReportRepository) GetReport(ctx context.Context, id string) (*models.LoadReport, error) {
	var report models.LoadReport
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to get load report")
	}
	return &report, nil
}

// AddEventRejections persists event rejection rows. Individual insert
// failures are logged and skipped; they never abort the remaining rows.
func (r *LoadReportRepository) AddEventRejections(ctx context.Context, rejections []models.EventRejection) int {
	inserted := 0
	for i := range rejections {
		if err := r.db.WithContext(ctx).Create(&rejections[i]).Error; err != nil {
			log.Error().Err(err).
				Int64("event_id", rejections[i].EventID).
				Msg("Failed to insert event rejection, skipping row")
			continue
		}
		inserted++
	}
	return inserted
}

// AddMatchRejections persists match rejection rows with the same
// skip-on-failure behavior.
func (r *LoadReportRepository) AddMatchRejections(ctx context.Context, rejections []models.MatchRejection) int {
	inserted := 0
	for i := range rejections {
		if err := r.db.WithContext(ctx).Create(&rejections[i]).Error; err != nil {
			log.Error().Err(err).
				Int64("match_id", rejections[i].MatchID).
				Msg("Failed to insert match rejection, skipping row")
			continue
		}
		inserted++
	}
	return inserted
}

// AddStandingRejections persists standing rejection rows with the same
// skip-on-failure behavior.
func (r *LoadReportRepository) AddStandingRejections(ctx context.Context, rejections []models.StandingRejection) int {
	inserted := 0
	for i := range rejections {
		if err := r.db.WithContext(ctx).Create(&rejections[i]).Error; err != nil {
			log.Error().Err(err).
				Int64("event_id", rejections[i].EventID).
				Int("event_rank", rejections[i].EventRank).
				Msg("Failed to insert standing rejection, skipping row")
			continue
		}
		inserted++
	}
	return inserted
}

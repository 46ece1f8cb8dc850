package services

import (
	"context"
	"strings"
	"time"

	"example.com/metagame/services/importer/internal/cache"
	"example.com/metagame/services/importer/internal/messaging"
	"example.com/metagame/services/importer/internal/metrics"
	"example.com/metagame/services/importer/internal/models"
	"example.com/metagame/services/importer/internal/repositories"
	"example.com/metagame/services/importer/internal/search"
	"example.com/metagame/services/importer/internal/source"
	"example.com/metagame/services/importer/internal/tracing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ImportService runs the windowed reconciliation pipeline: fetch the
// source grids, derive events/matches/standings, replace the target
// window in the store and persist the audit trail.
type ImportService struct {
	db             *gorm.DB
	eventRepo      *repositories.EventRepository
	matchRepo      *repositories.MatchRepository
	reportRepo     *repositories.LoadReportRepository
	classification *ClassificationService
	source         *source.Client
	cache          *cache.RedisCache
	elasticClient  *search.ElasticClient
	busClient      messaging.ServiceBusClient
	tracer         tracing.Tracer
	metrics        *metrics.Metrics
	format         string
}

// NewImportService creates a new import service
func NewImportService(
	db *gorm.DB,
	redisCache *cache.RedisCache,
	sourceClient *source.Client,
	elasticClient *search.ElasticClient,
	busClient messaging.ServiceBusClient,
	tracer tracing.Tracer,
	m *metrics.Metrics,
	format string,
) *ImportService {
	return &ImportService{
		db:             db,
		eventRepo:      repositories.NewEventRepository(db),
		matchRepo:      repositories.NewMatchRepository(db),
		reportRepo:     repositories.NewLoadReportRepository(db),
		classification: NewClassificationService(db, redisCache, format),
		source:         sourceClient,
		cache:          redisCache,
		elasticClient:  elasticClient,
		busClient:      busClient,
		tracer:         tracer,
		metrics:        m,
		format:         format,
	}
}

// importBatch is the fully derived input of the load step, plus the
// stage counts the load report needs.
type importBatch struct {
	Rows                 []*ResultRow
	Events               []models.Event
	Standings            []models.EventStanding
	StandingRowsPerEvent map[int64]int
	UnpairedMatchIDs     map[int64]bool
	EventRejections      []models.EventRejection

	RecordsFullDataset int
	RecordsInWindow    int
	EventsIgnored      int
	RecordsProcessed   int
	StandingsSkipped   int
}

// loadResult carries the per-table tallies and rejection rows out of
// the load transaction.
type loadResult struct {
	EventsDeleted     int
	EventsInserted    int
	EventsSkipped     int
	MatchesDeleted    int
	MatchesInserted   int
	MatchesSkipped    int
	StandingsDeleted  int
	StandingsInserted int
	StandingsSkipped  int

	EventRejections    []models.EventRejection
	MatchRejections    []models.MatchRejection
	StandingRejections []models.StandingRejection

	InsertedMatches []models.Match
}

// Run executes one import for the window [windowStart, windowEnd). It
// always returns a load report: on a fatal failure the report carries
// zero counts and the error text, and the returned error is non-nil.
func (s *ImportService) Run(ctx context.Context, windowStart, windowEnd time.Time) (*models.LoadReport, error) {
	txn := s.tracer.StartTransaction("import-run")
	defer s.tracer.EndTransaction(txn)
	s.tracer.AddAttribute(txn, "window_start", windowStart.Format("2006-01-02"))
	s.tracer.AddAttribute(txn, "window_end", windowEnd.Format("2006-01-02"))

	runID := uuid.New()
	startedAt := time.Now()

	log.Info().
		Str("run_id", runID.String()).
		Time("window_start", windowStart).
		Time("window_end", windowEnd).
		Str("format", s.format).
		Msg("Starting import run")

	prepSpan := s.tracer.StartSpan("prepare-batch", txn)
	batch, err := s.prepare(ctx, runID, windowStart, windowEnd)
	prepSpan.End()
	if err != nil {
		s.tracer.RecordError(txn, err)
		return s.failRun(ctx, runID, windowStart, windowEnd, err)
	}

	loadSpan := s.tracer.StartSpan("load-window", txn)
	res, err := s.load(ctx, runID, batch, windowStart, windowEnd)
	loadSpan.End()
	if err != nil {
		s.tracer.RecordError(txn, err)
		return s.failRun(ctx, runID, windowStart, windowEnd, err)
	}

	report := &models.LoadReport{
		ID:                 runID,
		WindowStart:        windowStart,
		WindowEnd:          windowEnd,
		RecordsFullDataset: batch.RecordsFullDataset,
		RecordsInWindow:    batch.RecordsInWindow,
		EventsIgnored:      batch.EventsIgnored,
		RecordsProcessed:   batch.RecordsProcessed,
		EventsDeleted:      res.EventsDeleted,
		EventsInserted:     res.EventsInserted,
		EventsSkipped:      res.EventsSkipped,
		MatchesDeleted:     res.MatchesDeleted,
		MatchesInserted:    res.MatchesInserted,
		MatchesSkipped:     res.MatchesSkipped,
		StandingsDeleted:   res.StandingsDeleted,
		StandingsInserted:  res.StandingsInserted,
		StandingsSkipped:   batch.StandingsSkipped + res.StandingsSkipped,
		ProcessedAt:        time.Now(),
	}

	if err := s.reportRepo.CreateReport(ctx, report); err != nil {
		return report, err
	}

	eventRejections := append(batch.EventRejections, res.EventRejections...)
	rejections := s.reportRepo.AddEventRejections(ctx, eventRejections)
	rejections += s.reportRepo.AddMatchRejections(ctx, res.MatchRejections)
	rejections += s.reportRepo.AddStandingRejections(ctx, res.StandingRejections)

	s.indexMatches(ctx, batch, res)
	s.notifyRun(ctx, report, false)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.LoadReportCacheKey(runID), report, time.Hour); err != nil {
			log.Debug().Err(err).Msg("Failed to cache load report")
		}
	}

	s.metrics.IncrementCounter(metrics.CounterRunsCompleted)
	s.metrics.IncrementCounterBy(metrics.CounterEventsInserted, int64(res.EventsInserted))
	s.metrics.IncrementCounterBy(metrics.CounterMatchesInserted, int64(res.MatchesInserted))
	s.metrics.IncrementCounterBy(metrics.CounterMatchesSkipped, int64(res.MatchesSkipped))
	s.metrics.IncrementCounterBy(metrics.CounterStandingsInserted, int64(res.StandingsInserted))
	s.metrics.IncrementCounterBy(metrics.CounterRejections, int64(rejections))
	s.metrics.SetGauge(metrics.GaugeLastRunMatches, int64(res.MatchesInserted))
	s.metrics.SetGauge(metrics.GaugeLastRunEvents, int64(res.EventsInserted))
	s.metrics.RecordTimer(metrics.TimerImportRun, time.Since(startedAt).Milliseconds())

	log.Info().
		Str("run_id", runID.String()).
		Int("events_inserted", res.EventsInserted).
		Int("matches_inserted", res.MatchesInserted).
		Int("matches_skipped", res.MatchesSkipped).
		Int("standings_inserted", res.StandingsInserted).
		Int("rejections", rejections).
		Dur("elapsed", time.Since(startedAt)).
		Msg("Import run completed")

	return report, nil
}

// failRun records the degenerate report for a run that aborted before
// or during the load transaction.
func (s *ImportService) failRun(ctx context.Context, runID uuid.UUID, windowStart, windowEnd time.Time, runErr error) (*models.LoadReport, error) {
	errText := runErr.Error()
	report := &models.LoadReport{
		ID:          runID,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		ErrorText:   &errText,
		ProcessedAt: time.Now(),
	}

	if err := s.reportRepo.CreateReport(ctx, report); err != nil {
		log.Error().Err(err).Str("run_id", runID.String()).Msg("Failed to persist load report for failed run")
	}

	s.notifyRun(ctx, report, true)
	s.metrics.IncrementCounter(metrics.CounterRunsFailed)

	log.Error().Err(runErr).Str("run_id", runID.String()).Msg("Import run failed")
	return report, runErr
}

// GetLoadReport fetches one run's report, preferring the cache.
func (s *ImportService) GetLoadReport(ctx context.Context, id uuid.UUID) (*models.LoadReport, error) {
	var report models.LoadReport
	if s.cache != nil && s.cache.Get(ctx, cache.LoadReportCacheKey(id), &report) == nil {
		return &report, nil
	}
	return s.reportRepo.GetReport(ctx, id.String())
}

// prepare fetches the source grids and derives the batch: window
// filtering, identity assignment, cleaning, pairing, classification and
// standings enrichment.
func (s *ImportService) prepare(ctx context.Context, runID uuid.UUID, windowStart, windowEnd time.Time) (*importBatch, error) {
	rawRows, err := s.source.FetchMatchRows(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch match grid")
	}

	batch := &importBatch{
		StandingRowsPerEvent: make(map[int64]int),
		RecordsFullDataset:   len(rawRows),
	}

	var rows []models.RawResultRow
	for _, r := range rawRows {
		if !r.EventDate.Before(windowStart) && r.EventDate.Before(windowEnd) {
			rows = append(rows, r)
		}
	}
	batch.RecordsInWindow = len(rows)

	maxEventID, err := s.eventRepo.MaxEventID(ctx)
	if err != nil {
		return nil, err
	}
	maxMatchID, err := s.matchRepo.MaxMatchID(ctx)
	if err != nil {
		return nil, err
	}

	eventIDs := assignEventIDs(rows, nextID(maxEventID, models.EventIDBase))
	labels := fillEventTypes(rows)

	// Events with any row missing win data are dropped whole.
	now := time.Now()
	ignored := make(map[int64]bool)
	ignoredDate := make(map[int64]time.Time)
	for i, r := range rows {
		if r.P1Wins == nil {
			ignored[eventIDs[i]] = true
		}
		ignoredDate[eventIDs[i]] = r.EventDate
	}
	for id := range ignored {
		batch.EventRejections = append(batch.EventRejections, models.EventRejection{
			ID:           uuid.New(),
			LoadReportID: runID,
			EventID:      id,
			EventDate:    ignoredDate[id],
			Severity:     models.SeverityExclude,
			Reason:       "Event contains incomplete match data.",
			ProcessedAt:  now,
		})
	}
	batch.EventsIgnored = len(ignored)

	eventDate := make(map[int64]time.Time)
	eventLabel := make(map[int64]string)
	var eventOrder []int64
	for i, r := range rows {
		id := eventIDs[i]
		if ignored[id] {
			continue
		}
		p1 := strings.TrimSpace(r.Player1)
		p2 := strings.TrimSpace(r.Player2)
		if strings.EqualFold(p1, "BYE") || strings.EqualFold(p2, "BYE") {
			continue
		}

		if _, seen := eventDate[id]; !seen {
			eventOrder = append(eventOrder, id)
		}
		eventDate[id] = r.EventDate
		eventLabel[id] = labels[i]

		batch.Rows = append(batch.Rows, &ResultRow{
			Player1:        p1,
			Player2:        p2,
			P1Wins:         intOrZero(r.P1Wins),
			P2Wins:         intOrZero(r.P2Wins),
			Winner:         deriveWinner(r.Winner1, r.Winner2),
			P1Archetype:    cleanLabel(r.P1Archetype),
			P2Archetype:    cleanLabel(r.P2Archetype),
			P1Subarchetype: cleanLabel(r.P1Subarchetype),
			P2Subarchetype: cleanLabel(r.P2Subarchetype),
			P1Note:         cleanLabel(r.P1Note),
			P2Note:         cleanLabel(r.P2Note),
			EventDate:      r.EventDate,
			EventType:      labels[i],
			EventID:        id,
		})
	}

	batch.UnpairedMatchIDs = assignMatchIDs(batch.Rows, nextID(maxMatchID, models.MatchIDBase))
	batch.RecordsProcessed = len(batch.Rows)

	deckResolver, err := s.classification.DeckCodes(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range batch.Rows {
		row.P1DeckID, row.P1Note = deckResolver.Resolve(row.P1Archetype, row.P1Subarchetype, row.P1Note)
		row.P2DeckID, row.P2Note = deckResolver.Resolve(row.P2Archetype, row.P2Subarchetype, row.P2Note)
	}

	typeResolver, err := s.classification.EventTypeCodes(ctx)
	if err != nil {
		return nil, err
	}

	standingRows, err := s.source.FetchStandingRows(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch standings grid")
	}
	segments := segmentStandings(standingRows)
	attached := make(map[*standingSegment]bool)

	for _, id := range eventOrder {
		label := eventLabel[id]
		if seg := matchSegment(segments, eventDate[id], eventTop8(batch.Rows, id)); seg != nil && !attached[seg] {
			attached[seg] = true
			label = seg.EventType
			for _, sr := range seg.Rows {
				batch.Standings = append(batch.Standings, models.EventStanding{
					EventID:   id,
					EventRank: sr.Rank,
					Player:    sr.Player,
					Byes:      sr.Byes,
				})
				batch.StandingRowsPerEvent[id]++
			}
			log.Debug().Int64("event_id", id).Str("event_type", label).Msg("Standings segment attached to event")
		}
		batch.Events = append(batch.Events, models.Event{
			EventID:     id,
			EventDate:   eventDate[id],
			EventTypeID: typeResolver.Resolve(label),
		})
	}

	// Segments dated inside the window that matched no event are counted
	// as skipped standings rows.
	for i := range segments {
		seg := &segments[i]
		if attached[seg] {
			continue
		}
		if !seg.Date.Before(windowStart) && seg.Date.Before(windowEnd) {
			batch.StandingsSkipped += len(seg.Rows)
		}
	}

	return batch, nil
}

// load replaces the window inside one database transaction. A failure
// before the row loop aborts the whole load; individual row failures
// are isolated with savepoints and recorded as rejections.
func (s *ImportService) load(ctx context.Context, runID uuid.UUID, batch *importBatch, windowStart, windowEnd time.Time) (*loadResult, error) {
	res := &loadResult{}
	now := time.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub := tx.Model(&models.Event{}).
			Select("event_id").
			Where("event_date >= ? AND event_date < ?", windowStart, windowEnd)

		var matchesDeleted, standingsDeleted int64
		if err := tx.Model(&models.Match{}).Where("event_id IN (?)", sub).Count(&matchesDeleted).Error; err != nil {
			return errors.Wrap(err, "failed to count matches in window")
		}
		if err := tx.Model(&models.EventStanding{}).Where("event_id IN (?)", sub).Count(&standingsDeleted).Error; err != nil {
			return errors.Wrap(err, "failed to count standings in window")
		}
		res.MatchesDeleted = int(matchesDeleted)
		res.StandingsDeleted = int(standingsDeleted)

		var deleted []models.Event
		if err := tx.Clauses(clause.Returning{Columns: []clause.Column{{Name: "event_id"}}}).
			Where("event_date >= ? AND event_date < ?", windowStart, windowEnd).
			Delete(&deleted).Error; err != nil {
			return errors.Wrap(err, "failed to delete events in window")
		}
		res.EventsDeleted = len(deleted)

		// Re-resolve the fallback codes inside the transaction; a missing
		// fallback row aborts the load.
		refRepo := repositories.NewReferenceRepository(tx)
		fallbackDeckID, err := refRepo.FallbackDeckID(ctx, s.format)
		if err != nil {
			return err
		}
		fallbackTypeID, err := refRepo.FallbackEventTypeID(ctx, s.format)
		if err != nil {
			return err
		}

		s.loadEvents(tx, runID, batch, fallbackTypeID, now, res)
		s.loadMatches(tx, runID, batch, fallbackDeckID, now, res)
		s.loadStandings(tx, runID, batch, now, res)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (s *ImportService) loadEvents(tx *gorm.DB, runID uuid.UUID, batch *importBatch, fallbackTypeID int64, now time.Time, res *loadResult) {
	rules := eventRules(fallbackTypeID)

	for i := range batch.Events {
		event := &batch.Events[i]
		event.ProcessedAt = now

		if violation, ok := firstViolation(rules, event); ok {
			res.EventRejections = append(res.EventRejections, eventRejection(runID, event, violation, now))
			if violation.severity == models.SeverityExclude {
				continue
			}
		}

		tx.SavePoint("event_insert")
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).Create(event)

		switch {
		case result.Error != nil:
			tx.RollbackTo("event_insert")
			log.Error().Err(result.Error).Int64("event_id", event.EventID).Msg("Failed to insert event, skipping row")
			res.EventsSkipped++
			res.EventRejections = append(res.EventRejections,
				eventRejection(runID, event, rule[*models.Event]{message: result.Error.Error(), severity: models.SeverityExclude}, now))
		case result.RowsAffected == 0:
			res.EventsSkipped++
			res.EventRejections = append(res.EventRejections,
				eventRejection(runID, event, rule[*models.Event]{message: "Duplicate", severity: models.SeverityExclude}, now))
		default:
			res.EventsInserted++
		}
	}
}

func (s *ImportService) loadMatches(tx *gorm.DB, runID uuid.UUID, batch *importBatch, fallbackDeckID int64, now time.Time, res *loadResult) {
	// First pass flags every match whose own data violates an excluding
	// rule, so the paired perspective row is rejected no matter which of
	// the two rows appears first.
	none := map[int64]bool{}
	preRules := matchRules(fallbackDeckID, none, none)
	rejected := make(map[int64]bool)
	for _, row := range batch.Rows {
		if violation, ok := firstViolation(preRules, row); ok && violation.severity == models.SeverityExclude {
			rejected[row.MatchID] = true
		}
	}

	rules := matchRules(fallbackDeckID, rejected, batch.UnpairedMatchIDs)
	for _, row := range batch.Rows {
		if violation, ok := firstViolation(rules, row); ok {
			res.MatchRejections = append(res.MatchRejections, matchRejection(runID, row, violation, now))
			if violation.severity == models.SeverityExclude {
				continue
			}
		}

		match := models.Match{
			MatchID:     row.MatchID,
			Player1:     row.Player1,
			Player2:     row.Player2,
			P1Wins:      row.P1Wins,
			P2Wins:      row.P2Wins,
			Winner:      row.Winner,
			P1DeckID:    row.P1DeckID,
			P2DeckID:    row.P2DeckID,
			P1Note:      row.P1Note,
			P2Note:      row.P2Note,
			EventID:     row.EventID,
			ProcessedAt: now,
		}

		tx.SavePoint("match_insert")
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "match_id"}, {Name: "player1"}},
			DoNothing: true,
		}).Create(&match)

		switch {
		case result.Error != nil:
			tx.RollbackTo("match_insert")
			log.Error().Err(result.Error).Int64("match_id", match.MatchID).Msg("Failed to insert match, skipping row")
			res.MatchesSkipped++
			res.MatchRejections = append(res.MatchRejections,
				matchRejection(runID, row, rule[*ResultRow]{message: result.Error.Error(), severity: models.SeverityExclude}, now))
		case result.RowsAffected == 0:
			res.MatchesSkipped++
			res.MatchRejections = append(res.MatchRejections,
				matchRejection(runID, row, rule[*ResultRow]{message: "Duplicate", severity: models.SeverityExclude}, now))
		default:
			res.MatchesInserted++
			res.InsertedMatches = append(res.InsertedMatches, match)
		}
	}
}

func (s *ImportService) loadStandings(tx *gorm.DB, runID uuid.UUID, batch *importBatch, now time.Time, res *loadResult) {
	rules := standingRules(batch.StandingRowsPerEvent)

	for i := range batch.Standings {
		standing := &batch.Standings[i]
		standing.ProcessedAt = now

		if violation, ok := firstViolation(rules, standing); ok {
			if violation.severity == models.SeverityWarn {
				standing.Player = standing.Player[:models.MaxPlayerNameLen]
			}
			res.StandingRejections = append(res.StandingRejections, standingRejection(runID, standing, violation, now))
			if violation.severity == models.SeverityExclude {
				continue
			}
		}

		tx.SavePoint("standing_insert")
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "event_rank"}},
			DoNothing: true,
		}).Create(standing)

		switch {
		case result.Error != nil:
			tx.RollbackTo("standing_insert")
			log.Error().Err(result.Error).
				Int64("event_id", standing.EventID).
				Int("event_rank", standing.EventRank).
				Msg("Failed to insert standing, skipping row")
			res.StandingsSkipped++
			res.StandingRejections = append(res.StandingRejections,
				standingRejection(runID, standing, rule[*models.EventStanding]{message: result.Error.Error(), severity: models.SeverityExclude}, now))
		case result.RowsAffected == 0:
			res.StandingsSkipped++
			res.StandingRejections = append(res.StandingRejections,
				standingRejection(runID, standing, rule[*models.EventStanding]{message: "Duplicate", severity: models.SeverityExclude}, now))
		default:
			res.StandingsInserted++
		}
	}
}

// indexMatches pushes the inserted matches into Elasticsearch after the
// transaction commits. Indexing failures are logged, never fatal.
func (s *ImportService) indexMatches(ctx context.Context, batch *importBatch, res *loadResult) {
	if s.elasticClient == nil || len(res.InsertedMatches) == 0 {
		return
	}

	eventByID := make(map[int64]*models.Event, len(batch.Events))
	for i := range batch.Events {
		eventByID[batch.Events[i].EventID] = &batch.Events[i]
	}

	indexed := 0
	for i := range res.InsertedMatches {
		match := &res.InsertedMatches[i]
		event, ok := eventByID[match.EventID]
		if !ok {
			continue
		}
		if err := s.elasticClient.IndexMatch(ctx, match, event); err != nil {
			log.Warn().Err(err).Int64("match_id", match.MatchID).Msg("Failed to index match")
			continue
		}
		indexed++
	}

	log.Info().Int("indexed", indexed).Int("total", len(res.InsertedMatches)).Msg("Match indexing finished")
}

// notifyRun publishes the run outcome on the service bus when a client
// is configured. Best effort only.
func (s *ImportService) notifyRun(ctx context.Context, report *models.LoadReport, failed bool) {
	if s.busClient == nil {
		return
	}

	notification := messaging.RunNotification{
		RunID:           report.ID.String(),
		Format:          s.format,
		WindowStart:     report.WindowStart,
		WindowEnd:       report.WindowEnd,
		MatchesInserted: report.MatchesInserted,
		EventsInserted:  report.EventsInserted,
		Failed:          failed,
	}
	if err := s.busClient.SendMessage(ctx, notification); err != nil {
		log.Warn().Err(err).Str("run_id", notification.RunID).Msg("Failed to publish run notification")
	}
}

// fillEventTypes normalizes the event-type labels and forward-fills the
// blanks, so every row of a labeled event carries its label and a
// trailing unlabeled fragment inherits the previous one. Rows before
// the first label stay empty and resolve to the fallback type.
func fillEventTypes(rows []models.RawResultRow) []string {
	labels := make([]string, len(rows))
	prev := ""
	for i := range rows {
		label := strings.ToUpper(strings.TrimSpace(rows[i].EventType))
		if label == "" {
			label = prev
		} else {
			prev = label
		}
		labels[i] = label
	}
	return labels
}

// deriveWinner collapses the two winner flags into one marker. Anything
// other than a clean (1,0) or (0,1) is undetermined.
func deriveWinner(winner1, winner2 *int) string {
	if winner1 == nil || winner2 == nil {
		return models.WinnerNA
	}
	switch {
	case *winner1 == 1 && *winner2 == 0:
		return models.WinnerP1
	case *winner1 == 0 && *winner2 == 1:
		return models.WinnerP2
	default:
		return models.WinnerNA
	}
}

// cleanLabel normalizes a free-text label; blank cells become "NA" to
// match the reference table's fallback keying.
func cleanLabel(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return "NA"
	}
	return value
}

func intOrZero(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}

func eventRejection(runID uuid.UUID, event *models.Event, violation rule[*models.Event], now time.Time) models.EventRejection {
	typeID := event.EventTypeID
	return models.EventRejection{
		ID:           uuid.New(),
		LoadReportID: runID,
		EventID:      event.EventID,
		EventDate:    event.EventDate,
		EventTypeID:  &typeID,
		Severity:     violation.severity,
		Reason:       violation.message,
		ProcessedAt:  now,
	}
}

func matchRejection(runID uuid.UUID, row *ResultRow, violation rule[*ResultRow], now time.Time) models.MatchRejection {
	return models.MatchRejection{
		ID:           uuid.New(),
		LoadReportID: runID,
		MatchID:      row.MatchID,
		Player1:      row.Player1,
		Player2:      row.Player2,
		P1Wins:       row.P1Wins,
		P2Wins:       row.P2Wins,
		Winner:       row.Winner,
		P1DeckID:     row.P1DeckID,
		P2DeckID:     row.P2DeckID,
		P1Note:       row.P1Note,
		P2Note:       row.P2Note,
		EventID:      row.EventID,
		Severity:     violation.severity,
		Reason:       violation.message,
		ProcessedAt:  now,
	}
}

func standingRejection(runID uuid.UUID, standing *models.EventStanding, violation rule[*models.EventStanding], now time.Time) models.StandingRejection {
	return models.StandingRejection{
		ID:           uuid.New(),
		LoadReportID: runID,
		EventID:      standing.EventID,
		Player:       standing.Player,
		Byes:         standing.Byes,
		EventRank:    standing.EventRank,
		Severity:     violation.severity,
		Reason:       violation.message,
		ProcessedAt:  now,
	}
}

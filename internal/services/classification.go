package services

import (
	"context"
	"fmt"
	"time"

	"example.com/metagame/services/importer/internal/cache"
	"example.com/metagame/services/importer/internal/models"
	"example.com/metagame/services/importer/internal/repositories"
	"example.com/metagame/services/importer/internal/source"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const referenceCacheTTL = 10 * time.Minute

// ClassificationService resolves free-text archetype and event-type
// labels to canonical codes and keeps the reference tables in sync with
// the deck grid of the source sheet.
type ClassificationService struct {
	refRepo *repositories.ReferenceRepository
	cache   *cache.RedisCache
	format  string
}

// NewClassificationService creates a new classification service
func NewClassificationService(db *gorm.DB, redisCache *cache.RedisCache, format string) *ClassificationService {
	return &ClassificationService{
		refRepo: repositories.NewReferenceRepository(db),
		cache:   redisCache,
		format:  format,
	}
}

// DeckResolver resolves archetype/subarchetype pairs against one
// format's classification table snapshot.
type DeckResolver struct {
	codes      map[string]int64
	fallbackID int64
}

// Resolve returns the deck code for a label pair. Unrecognized pairs
// resolve to the fallback code and annotate the note so the original
// label is not lost.
func (r *DeckResolver) Resolve(archetype, subarchetype, note string) (int64, string) {
	if id, ok := r.codes[deckKey(archetype, subarchetype)]; ok {
		return id, note
	}
	return r.fallbackID, fmt.Sprintf("%s-%s: %s", archetype, subarchetype, note)
}

// FallbackID returns the format's "unrecognized classification" code.
func (r *DeckResolver) FallbackID() int64 {
	return r.fallbackID
}

// EventTypeResolver resolves event-type labels against one format's
// reference table snapshot.
type EventTypeResolver struct {
	codes      map[string]int64
	fallbackID int64
}

// Resolve returns the code for an event-type label; empty or unknown
// labels resolve to the fallback code.
func (r *EventTypeResolver) Resolve(label string) int64 {
	if id, ok := r.codes[label]; ok {
		return id
	}
	return r.fallbackID
}

// FallbackID returns the format's "unrecognized type" code.
func (r *EventTypeResolver) FallbackID() int64 {
	return r.fallbackID
}

// DeckCodes loads the deck classification table for the service's
// format. A missing fallback row is a configuration-integrity error.
func (s *ClassificationService) DeckCodes(ctx context.Context) (*DeckResolver, error) {
	var decks []models.ValidDeck

	cacheKey := cache.ValidDecksCacheKey(s.format)
	if s.cache != nil && s.cache.Get(ctx, cacheKey, &decks) == nil && len(decks) > 0 {
		return buildDeckResolver(decks)
	}

	decks, err := s.refRepo.ListDecks(ctx, s.format)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(decks) > 0 {
		if err := s.cache.Set(ctx, cacheKey, decks, referenceCacheTTL); err != nil {
			log.Debug().Err(err).Msg("Failed to cache valid decks")
		}
	}

	return buildDeckResolver(decks)
}

func buildDeckResolver(decks []models.ValidDeck) (*DeckResolver, error) {
	resolver := &DeckResolver{codes: make(map[string]int64, len(decks))}
	found := false
	for _, deck := range decks {
		resolver.codes[deckKey(deck.Archetype, deck.Subarchetype)] = deck.DeckID
		if deck.Archetype == models.FallbackArchetype && deck.Subarchetype == models.FallbackSubarchetype {
			resolver.fallbackID = deck.DeckID
			found = true
		}
	}
	if !found {
		return nil, errors.Wrap(repositories.ErrFallbackMissing, "deck classification table")
	}
	return resolver, nil
}

// EventTypeCodes loads the event-type table for the service's format.
func (s *ClassificationService) EventTypeCodes(ctx context.Context) (*EventTypeResolver, error) {
	var types []models.ValidEventType

	cacheKey := cache.ValidEventTypesCacheKey(s.format)
	if s.cache != nil && s.cache.Get(ctx, cacheKey, &types) == nil && len(types) > 0 {
		return buildEventTypeResolver(types)
	}

	types, err := s.refRepo.ListEventTypes(ctx, s.format)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(types) > 0 {
		if err := s.cache.Set(ctx, cacheKey, types, referenceCacheTTL); err != nil {
			log.Debug().Err(err).Msg("Failed to cache valid event types")
		}
	}

	return buildEventTypeResolver(types)
}

func buildEventTypeResolver(types []models.ValidEventType) (*EventTypeResolver, error) {
	resolver := &EventTypeResolver{codes: make(map[string]int64, len(types))}
	found := false
	for _, et := range types {
		resolver.codes[et.EventType] = et.EventTypeID
		if et.EventType == models.FallbackEventType {
			resolver.fallbackID = et.EventTypeID
			found = true
		}
	}
	if !found {
		return nil, errors.Wrap(repositories.ErrFallbackMissing, "event type table")
	}
	return resolver, nil
}

// SyncFromSheet refreshes the reference tables from the deck grid. The
// fallback rows are always appended so every format keeps its designated
// "unrecognized" entries.
func (s *ClassificationService) SyncFromSheet(ctx context.Context, src *source.Client) (int, int, error) {
	classifications, err := src.FetchClassifications(ctx)
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to fetch classification grid")
	}

	now := time.Now()

	decks := make([]models.ValidDeck, 0, len(classifications.Decks)+3)
	for _, pair := range classifications.Decks {
		decks = append(decks, models.ValidDeck{
			Format:       s.format,
			Archetype:    pair[0],
			Subarchetype: pair[1],
			ProcessedAt:  now,
		})
	}
	for _, sub := range []string{models.FallbackArchetype, "NO SHOW", models.FallbackSubarchetype} {
		decks = append(decks, models.ValidDeck{
			Format:       s.format,
			Archetype:    models.FallbackArchetype,
			Subarchetype: sub,
			ProcessedAt:  now,
		})
	}

	types := make([]models.ValidEventType, 0, len(classifications.EventTypes)+1)
	for _, label := range classifications.EventTypes {
		types = append(types, models.ValidEventType{
			Format:      s.format,
			EventType:   label,
			ProcessedAt: now,
		})
	}
	types = append(types, models.ValidEventType{
		Format:      s.format,
		EventType:   models.FallbackEventType,
		ProcessedAt: now,
	})

	decksInserted, err := s.refRepo.UpsertDecks(ctx, decks)
	if err != nil {
		return 0, 0, err
	}
	typesInserted, err := s.refRepo.UpsertEventTypes(ctx, types)
	if err != nil {
		return decksInserted, 0, err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cache.ValidDecksCacheKey(s.format), cache.ValidEventTypesCacheKey(s.format)); err != nil {
			log.Debug().Err(err).Msg("Failed to invalidate reference cache")
		}
	}

	log.Info().
		Int("decks_inserted", decksInserted).
		Int("event_types_inserted", typesInserted).
		Msg("Classification sync completed")

	return decksInserted, typesInserted, nil
}

func deckKey(archetype, subarchetype string) string {
	return archetype + "|" + subarchetype
}

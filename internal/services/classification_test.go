package services

import (
	"testing"

	"example.com/metagame/services/importer/internal/models"
	"example.com/metagame/services/importer/internal/repositories"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func testDecks() []models.ValidDeck {
	return []models.ValidDeck{
		{DeckID: 1, Format: "VINTAGE", Archetype: "COMBO", Subarchetype: "OOPS ALL SPELLS"},
		{DeckID: 2, Format: "VINTAGE", Archetype: "AGGRO", Subarchetype: "HOLLOWVINE"},
		{DeckID: 99, Format: "VINTAGE", Archetype: models.FallbackArchetype, Subarchetype: models.FallbackSubarchetype},
	}
}

func TestDeckResolverKnownPair(t *testing.T) {
	resolver, err := buildDeckResolver(testDecks())
	require.NoError(t, err)

	id, note := resolver.Resolve("COMBO", "OOPS ALL SPELLS", "NA")
	require.Equal(t, int64(1), id)
	require.Equal(t, "NA", note)
}

func TestDeckResolverFallbackAnnotatesNote(t *testing.T) {
	resolver, err := buildDeckResolver(testDecks())
	require.NoError(t, err)

	id, note := resolver.Resolve("COMBO", "UNKNOWN BREW", "TURN 1 WIN")
	require.Equal(t, int64(99), id)
	require.Equal(t, "COMBO-UNKNOWN BREW: TURN 1 WIN", note)
	require.Equal(t, int64(99), resolver.FallbackID())
}

func TestDeckResolverMissingFallbackRow(t *testing.T) {
	_, err := buildDeckResolver(testDecks()[:2])
	require.Error(t, err)
	require.True(t, errors.Is(err, repositories.ErrFallbackMissing))
}

func TestEventTypeResolver(t *testing.T) {
	resolver, err := buildEventTypeResolver([]models.ValidEventType{
		{EventTypeID: 10, Format: "VINTAGE", EventType: "LEAGUE"},
		{EventTypeID: 11, Format: "VINTAGE", EventType: "CHALLENGE"},
		{EventTypeID: 42, Format: "VINTAGE", EventType: models.FallbackEventType},
	})
	require.NoError(t, err)

	require.Equal(t, int64(10), resolver.Resolve("LEAGUE"))
	require.Equal(t, int64(42), resolver.Resolve("SOMETHING ELSE"))
	require.Equal(t, int64(42), resolver.Resolve(""))
	require.Equal(t, int64(42), resolver.FallbackID())
}

func TestEventTypeResolverMissingFallbackRow(t *testing.T) {
	_, err := buildEventTypeResolver([]models.ValidEventType{
		{EventTypeID: 10, Format: "VINTAGE", EventType: "LEAGUE"},
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, repositories.ErrFallbackMissing))
}

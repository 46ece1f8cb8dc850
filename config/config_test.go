package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, "0.0.0.0:8080", cfg.HTTPServerAddress)
	require.Equal(t, "VINTAGE", cfg.Import.Format)
	require.Equal(t, 14, cfg.Import.LagDays)
	require.Equal(t, 7, cfg.Import.WindowDays)
	require.Equal(t, 24*time.Hour, cfg.Import.Interval)
	require.True(t, cfg.Redis.Enabled)
	require.False(t, cfg.Elastic.Enabled)
	require.False(t, cfg.ServiceBus.Enabled)
	require.Equal(t, 50, cfg.DB.MaxOpenConns)
}

func TestFormatIndex(t *testing.T) {
	cfg := ElasticConfig{Prefix: "metagame", Index: "matches"}
	require.Equal(t, "metagame-matches", FormatIndex(cfg, cfg.Index))
}

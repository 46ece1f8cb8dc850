package cmd

import (
	"os"
	"time"

	"example.com/metagame/services/importer/config"
	"example.com/metagame/services/importer/internal/cache"
	"example.com/metagame/services/importer/internal/database"
	"example.com/metagame/services/importer/internal/messaging"
	"example.com/metagame/services/importer/internal/metrics"
	"example.com/metagame/services/importer/internal/search"
	"example.com/metagame/services/importer/internal/services"
	"example.com/metagame/services/importer/internal/source"
	"example.com/metagame/services/importer/internal/tracing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// dependencies bundles the wired application stack shared by the
// commands.
type dependencies struct {
	cfg            config.Config
	db             database.DB
	redisCache     *cache.RedisCache
	busClient      messaging.ServiceBusClient
	tracer         tracing.Tracer
	metrics        *metrics.Metrics
	sourceClient   *source.Client
	importService  *services.ImportService
	classification *services.ClassificationService
}

func setup() (*dependencies, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, err
	}

	// Configure logging
	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	db, err := database.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, errors.Wrap(err, "failed to run migrations")
	}
	gormDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
		redisCache = nil
	}

	tracer, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		tracer = &tracing.NewRelicTracer{}
	}

	var elasticClient *search.ElasticClient
	if cfg.Elastic.Enabled {
		elasticClient, err = search.NewElasticClient(cfg.Elastic)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without search functionality")
			elasticClient = nil
		}
	}

	var busClient messaging.ServiceBusClient
	if cfg.ServiceBus.Enabled {
		busClient, err = messaging.NewServiceBusClient(cfg.ServiceBus, "importer")
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize Service Bus client, continuing without run notifications")
			busClient = nil
		}
	}

	metricsCollector := metrics.NewMetrics()
	sourceClient := source.NewClient(cfg.Source)

	importService := services.NewImportService(
		gormDB,
		redisCache,
		sourceClient,
		elasticClient,
		busClient,
		tracer,
		metricsCollector,
		cfg.Import.Format,
	)
	classification := services.NewClassificationService(gormDB, redisCache, cfg.Import.Format)

	return &dependencies{
		cfg:            cfg,
		db:             db,
		redisCache:     redisCache,
		busClient:      busClient,
		tracer:         tracer,
		metrics:        metricsCollector,
		sourceClient:   sourceClient,
		importService:  importService,
		classification: classification,
	}, nil
}

// Close releases all external connections.
func (d *dependencies) Close() {
	if d.busClient != nil {
		if err := d.busClient.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Service Bus client")
		}
	}
	if d.redisCache != nil {
		if err := d.redisCache.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Redis connection")
		}
	}
	d.tracer.Close()
	if err := d.db.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close database connection")
	}
}

// defaultWindow computes the lagged import window [start, end) from the
// configuration: the window trails today by the lag so late corrections
// land in the sheet before their range is reconciled.
func defaultWindow(cfg config.ImportConfig) (time.Time, time.Time) {
	today := time.Now().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -cfg.LagDays)
	return start, start.AddDate(0, 0, cfg.WindowDays)
}

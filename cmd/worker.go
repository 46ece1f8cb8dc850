package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"example.com/metagame/services/importer/internal/api"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background worker",
	Long: `Start the background worker that imports the lagged date window on a
schedule and serves the operational HTTP endpoints.`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	deps, err := setup()
	if err != nil {
		return err
	}
	defer deps.Close()

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	deps.metrics.SetHealth("worker", true)

	server := api.NewServer(deps.cfg, deps.importService, deps.metrics, deps.tracer)
	g.Go(func() error {
		return server.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		return server.Shutdown(context.Background())
	})

	g.Go(func() error {
		log.Info().Dur("interval", deps.cfg.Import.Interval).Msg("Starting scheduled import job")

		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return err
		}

		_, err = scheduler.NewJob(
			gocron.DurationJob(deps.cfg.Import.Interval),
			gocron.NewTask(func() {
				start, end := defaultWindow(deps.cfg.Import)
				if _, err := deps.importService.Run(ctx, start, end); err != nil {
					log.Error().Err(err).Msg("Scheduled import run failed")
					deps.metrics.SetHealth("import", false)
					return
				}
				deps.metrics.SetHealth("import", true)
			}),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			return err
		}

		scheduler.Start()

		<-ctx.Done()

		return scheduler.Shutdown()
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker error")
		return err
	}

	log.Info().Msg("Worker shutting down gracefully")
	return nil
}

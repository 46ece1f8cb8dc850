package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var syncClassesCmd = &cobra.Command{
	Use:   "sync-classes",
	Short: "Sync the classification tables from the deck grid",
	Long: `Fetch the deck grid and insert any new archetype pairs and event-type
labels into the reference tables. Existing entries keep their codes.`,
	RunE: runSyncClasses,
}

func init() {
	rootCmd.AddCommand(syncClassesCmd)
}

func runSyncClasses(cmd *cobra.Command, args []string) error {
	deps, err := setup()
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	decks, types, err := deps.classification.SyncFromSheet(ctx, deps.sourceClient)
	if err != nil {
		return err
	}

	log.Info().
		Int("decks_inserted", decks).
		Int("event_types_inserted", types).
		Msg("Classification sync finished")
	return nil
}

package cli

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"

	"rfp-backend/internal/ingestion"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fetchOpts ingestion.Options

var fetchCmd = &cobra.Command{
	Use:   "fetch-emails",
	Short: "Scan the mailbox for unseen vendor replies",
	Long: `Scan unseen messages, match each to a vendor and an RFP, and optionally
turn the reply into a proposal. Prints the run report as JSON.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return withApp(ctx, func(ctx context.Context, a *app) error {
			report, runErr := a.ingestion.Run(ctx, fetchOpts)
			if report != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
				a.logger.Info("ingestion finished",
					zap.String("run_id", report.RunID),
					zap.Int("processed", report.Processed),
					zap.Int("created", report.Created),
				)
			}
			return runErr
		})
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().BoolVar(&fetchOpts.CreateProposals, "create-proposals", false, "extract and store a proposal for every matched reply")
	fetchCmd.Flags().IntVarP(&fetchOpts.Limit, "limit", "n", 0, "maximum messages to process (default INGEST_LIMIT)")
	fetchCmd.Flags().BoolVar(&fetchOpts.KeepUnseen, "keep-unseen", false, "peek at messages without marking them seen")
	fetchCmd.MarkFlagsMutuallyExclusive("create-proposals", "keep-unseen")
}

package cmd

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"eventraffle/internal/bootstrap"
	"eventraffle/internal/bootstrap/logging"
	"eventraffle/internal/errs"
	"eventraffle/internal/usecase/raffle"
)

var prizesCmd = &cobra.Command{
	Use:   "prizes",
	Short: "Prize stock maintenance",
}

var prizesFixStockCmd = &cobra.Command{
	Use:   "fix-stock",
	Short: "Restore aborted prizes and report overstock",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *raffle.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		eventID, _ := cmd.Flags().GetUint64("event")
		prizeID, _ := cmd.Flags().GetUint64("prize")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		report, err := svc.FixStock(ctx, raffle.FixStockInput{EventID: eventID, PrizeID: prizeID, DryRun: dryRun})
		if err != nil {
			logging.Error(ctx, "fix stock failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "fix stock")
		}

		if _, err := fmt.Fprintf(
			cmd.OutOrStdout(),
			"checked=%d restored=%d warnings=%d dry_run=%t\n",
			report.Checked,
			report.Restored,
			report.Warnings,
			report.DryRun,
		); err != nil {
			return errs.Wrap(err, "write fix-stock summary")
		}
		if len(report.Items) == 0 {
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(w, "prize\tname\tstock\twinners\taction\tapplied"); err != nil {
			return errs.Wrap(err, "write fix-stock header")
		}
		for _, item := range report.Items {
			if _, err := fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\t%t\n", item.PrizeID, item.Name, item.Stock, item.Winners, item.Action, item.Applied); err != nil {
				return errs.Wrap(err, "write fix-stock row")
			}
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "flush fix-stock")
		}
		return nil
	}),
}

var prizesRestoreStockCmd = &cobra.Command{
	Use:   "restore-stock",
	Short: "Reset a prize with no stock and no winner back to one unit",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *raffle.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		prizeID, _ := cmd.Flags().GetUint64("prize")
		restored, err := svc.RestoreStock(ctx, prizeID)
		if err != nil {
			logging.Error(ctx, "restore stock failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "restore stock")
		}

		msg := "prize %d needed no restore\n"
		if restored {
			msg = "prize %d restored to one unit\n"
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), msg, prizeID); err != nil {
			return errs.Wrap(err, "write restore-stock output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(prizesCmd)
	prizesCmd.AddCommand(prizesFixStockCmd)
	prizesCmd.AddCommand(prizesRestoreStockCmd)

	prizesFixStockCmd.Flags().Uint64("event", 0, "Limit to one event")
	prizesFixStockCmd.Flags().Uint64("prize", 0, "Limit to one prize")
	prizesFixStockCmd.Flags().Bool("dry-run", false, "Report without changing stock")

	prizesRestoreStockCmd.Flags().Uint64("prize", 0, "Prize id")
	_ = prizesRestoreStockCmd.MarkFlagRequired("prize")
}

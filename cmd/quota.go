package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"eventraffle/internal/bootstrap"
	"eventraffle/internal/bootstrap/logging"
	"eventraffle/internal/errs"
	"eventraffle/internal/usecase/raffle"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Manage the protected subgroup quota",
}

var quotaAssignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Designate the prize that guarantees the subgroup a public win",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *raffle.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		eventID, _ := cmd.Flags().GetUint64("event")
		prizeID, _ := cmd.Flags().GetUint64("prize")

		result, err := svc.AssignQuota(ctx, raffle.AssignQuotaInput{EventID: eventID, PrizeID: prizeID})
		if err != nil {
			logging.Error(ctx, "assign quota failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "assign quota")
		}

		state := "already assigned"
		if result.Created {
			state = "assigned"
		}
		if _, err := fmt.Fprintf(
			cmd.OutOrStdout(),
			"quota %s: event %d prize %d at %s\n",
			state,
			result.Assignment.EventID,
			result.Assignment.PrizeID,
			result.Assignment.AssignedAt,
		); err != nil {
			return errs.Wrap(err, "write quota output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(quotaCmd)
	quotaCmd.AddCommand(quotaAssignCmd)

	quotaAssignCmd.Flags().Uint64("event", 0, "Event id")
	quotaAssignCmd.Flags().Uint64("prize", 0, "Prize id, 0 picks an eligible prize at random")
	_ = quotaAssignCmd.MarkFlagRequired("event")
}

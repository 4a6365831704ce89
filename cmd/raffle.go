package cmd

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"eventraffle/internal/bootstrap"
	"eventraffle/internal/bootstrap/logging"
	domainraffle "eventraffle/internal/domain/raffle"
	"eventraffle/internal/errs"
	"eventraffle/internal/ports"
	"eventraffle/internal/usecase/raffle"
)

var raffleCmd = &cobra.Command{
	Use:   "raffle",
	Short: "Create entries, draw winners and inspect results",
}

var raffleEntriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "Enter every eligible guest into a prize",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *raffle.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		prizeID, _ := cmd.Flags().GetUint64("prize")
		rawType, _ := cmd.Flags().GetString("type")
		rawOrigin, _ := cmd.Flags().GetString("origin")
		typ, origin, err := parseTypeAndOrigin(rawType, rawOrigin)
		if err != nil {
			return err
		}

		report, err := svc.CreateEntries(ctx, raffle.CreateEntriesInput{PrizeID: prizeID, Type: typ, Origin: origin})
		if err != nil {
			logging.Error(ctx, "create entries failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "create entries")
		}
		return writeEntryReport(cmd.OutOrStdout(), report)
	}),
}

var raffleGeneralEntriesCmd = &cobra.Command{
	Use:   "general-entries",
	Short: "Enter every general-eligible guest into the event's general raffle",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *raffle.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		eventID, _ := cmd.Flags().GetUint64("event")
		rawOrigin, _ := cmd.Flags().GetString("origin")
		origin, err := domainraffle.ParseOrigin(rawOrigin)
		if err != nil {
			return err
		}

		report, err := svc.CreateGeneralEntries(ctx, raffle.CreateGeneralEntriesInput{EventID: eventID, Origin: origin})
		if err != nil {
			logging.Error(ctx, "create general entries failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "create general entries")
		}
		return writeEntryReport(cmd.OutOrStdout(), report)
	}),
}

func newRaffleDrawCmd(run func(cmd *cobra.Command, args []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Draw winners for a prize",
		RunE:  run,
	}
	cmd.Flags().Uint64("prize", 0, "Prize id")
	cmd.Flags().Int("count", 1, "Winners requested, clamped to stock and entries")
	cmd.Flags().String("type", "", "Raffle type (public|general), defaults to the prize's own")
	cmd.Flags().Bool("notify", false, "Send winner notices after commit")
	_ = cmd.MarkFlagRequired("prize")
	return cmd
}

var raffleDrawCmd = newRaffleDrawCmd(withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *raffle.Service) error {
	ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

	prizeID, _ := cmd.Flags().GetUint64("prize")
	count, _ := cmd.Flags().GetInt("count")
	rawType, _ := cmd.Flags().GetString("type")
	notify, _ := cmd.Flags().GetBool("notify")

	typ, _, err := parseTypeAndOrigin(rawType, "")
	if err != nil {
		return err
	}

	result, err := svc.Draw(ctx, raffle.DrawInput{PrizeID: prizeID, Count: count, Type: typ, Notify: notify})
	if err != nil {
		logging.Error(ctx, "draw failed", slog.Any("err", errs.Loggable(err)))
		return errs.Wrap(err, "draw")
	}
	return writeDrawResult(cmd.OutOrStdout(), result)
}))

var raffleGeneralDrawCmd = &cobra.Command{
	Use:   "general-draw",
	Short: "Draw winners for the event's general raffle",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *raffle.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		eventID, _ := cmd.Flags().GetUint64("event")
		count, _ := cmd.Flags().GetInt("count")
		notify, _ := cmd.Flags().GetBool("notify")

		result, err := svc.DrawGeneral(ctx, raffle.DrawGeneralInput{EventID: eventID, Count: count, Notify: notify})
		if err != nil {
			logging.Error(ctx, "general draw failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "general draw")
		}
		return writeDrawResult(cmd.OutOrStdout(), result)
	}),
}

var raffleSelectCmd = &cobra.Command{
	Use:   "select",
	Short: "Preview one winner without committing it",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *raffle.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		prizeID, _ := cmd.Flags().GetUint64("prize")
		selection, err := svc.SelectCandidate(ctx, raffle.SelectInput{PrizeID: prizeID})
		if err != nil {
			logging.Error(ctx, "select candidate failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "select candidate")
		}

		if _, err := fmt.Fprintf(
			cmd.OutOrStdout(),
			"selected entry %d: guest %d %s (%s) out of %d, token=%s\n",
			selection.EntryID,
			selection.GuestID,
			selection.FullName,
			selection.Employer,
			selection.Participants,
			selection.Token,
		); err != nil {
			return errs.Wrap(err, "write select output")
		}
		return nil
	}),
}

var raffleConfirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Commit the previewed winner",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *raffle.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		prizeID, _ := cmd.Flags().GetUint64("prize")
		entryID, _ := cmd.Flags().GetUint64("entry")
		token, _ := cmd.Flags().GetString("token")
		notify, _ := cmd.Flags().GetBool("notify")

		result, err := svc.ConfirmCandidate(ctx, raffle.ConfirmInput{
			PrizeID: prizeID,
			EntryID: entryID,
			Token:   token,
			Notify:  notify,
		})
		if err != nil {
			logging.Error(ctx, "confirm candidate failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "confirm candidate")
		}
		return writeDrawResult(cmd.OutOrStdout(), result)
	}),
}

var raffleDiscardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Drop the previewed winner of a prize",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *raffle.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		prizeID, _ := cmd.Flags().GetUint64("prize")
		if err := svc.DiscardCandidate(ctx, prizeID); err != nil {
			logging.Error(ctx, "discard candidate failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "discard candidate")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "selection discarded for prize %d\n", prizeID); err != nil {
			return errs.Wrap(err, "write discard output")
		}
		return nil
	}),
}

var raffleReplaceGeneralCmd = &cobra.Command{
	Use:   "replace-general",
	Short: "Withdraw one general raffle winner and draw a replacement",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *raffle.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		eventID, _ := cmd.Flags().GetUint64("event")
		guestID, _ := cmd.Flags().GetUint64("guest")
		notify, _ := cmd.Flags().GetBool("notify")

		result, err := svc.ReplaceGeneralWinner(ctx, raffle.ReplaceInput{EventID: eventID, GuestID: guestID, Notify: notify})
		if err != nil {
			logging.Error(ctx, "replace general winner failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "replace general winner")
		}
		return writeDrawResult(cmd.OutOrStdout(), result)
	}),
}

var raffleLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List raffle audit logs",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *raffle.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		eventID, _ := cmd.Flags().GetUint64("event")
		prizeID, _ := cmd.Flags().GetUint64("prize")
		guestID, _ := cmd.Flags().GetUint64("guest")
		confirmed, _ := cmd.Flags().GetBool("confirmed")
		limit, _ := cmd.Flags().GetInt("limit")

		logs, err := svc.ListLogs(ctx, ports.LogFilter{
			EventID:       eventID,
			PrizeID:       prizeID,
			GuestID:       guestID,
			ConfirmedOnly: confirmed,
			Limit:         limit,
		})
		if err != nil {
			logging.Error(ctx, "list raffle logs failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list raffle logs")
		}

		if len(logs) == 0 {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "no logs"); err != nil {
				return errs.Wrap(err, "write logs output")
			}
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(w, "log\tprize\tguest\ttype\tconfirmed\tcreated_at"); err != nil {
			return errs.Wrap(err, "write logs header")
		}
		for _, l := range logs {
			if _, err := fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%t\t%s\n", l.ID, l.PrizeID, l.GuestID, l.Type, l.Confirmed, l.CreatedAt); err != nil {
				return errs.Wrap(err, "write log row")
			}
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "flush logs")
		}
		return nil
	}),
}

var raffleWinnersCmd = &cobra.Command{
	Use:   "winners",
	Short: "List every winner of an event",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *raffle.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		eventID, _ := cmd.Flags().GetUint64("event")
		rows, err := svc.ListWinners(ctx, eventID)
		if err != nil {
			logging.Error(ctx, "list winners failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list winners")
		}
		return writeWinnerRows(cmd.OutOrStdout(), rows)
	}),
}

var raffleStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show raffle statistics for an event",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *raffle.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		eventID, _ := cmd.Flags().GetUint64("event")
		stats, err := svc.Statistics(ctx, eventID)
		if err != nil {
			logging.Error(ctx, "raffle statistics failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "raffle statistics")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		rows := []struct {
			metric string
			value  any
		}{
			{"total_prizes", stats.TotalPrizes},
			{"active_prizes", stats.ActivePrizes},
			{"drawn_prizes", stats.DrawnPrizes},
			{"total_stock", stats.TotalStock},
			{"pending_entries", stats.Pending},
			{"won_entries", stats.Won},
			{"lost_entries", stats.Lost},
			{"completion_rate", fmt.Sprintf("%.2f%%", stats.CompletionRate)},
			{"eligible_attendees", stats.EligibleAttendees},
		}
		if _, err := fmt.Fprintln(w, "metric\tvalue"); err != nil {
			return errs.Wrap(err, "write stats header")
		}
		for _, row := range rows {
			if _, err := fmt.Fprintf(w, "%s\t%v\n", row.metric, row.value); err != nil {
				return errs.Wrap(err, "write stats row")
			}
		}

		if len(stats.Categories) > 0 {
			if _, err := fmt.Fprintln(w, "\ncategory\tprizes\tstock"); err != nil {
				return errs.Wrap(err, "write category header")
			}
			for _, c := range stats.Categories {
				if _, err := fmt.Fprintf(w, "%s\t%d\t%d\n", dashIfEmpty(c.Category), c.Prizes, c.TotalStock); err != nil {
					return errs.Wrap(err, "write category row")
				}
			}
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "flush stats")
		}
		return nil
	}),
}

var raffleResultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show the results of one prize",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *raffle.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		prizeID, _ := cmd.Flags().GetUint64("prize")
		results, err := svc.PrizeResults(ctx, prizeID)
		if err != nil {
			logging.Error(ctx, "prize results failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "prize results")
		}

		if _, err := fmt.Fprintf(
			cmd.OutOrStdout(),
			"prize %d (%s): entries=%d pending=%d won=%d lost=%d stock=%d complete=%t\n",
			results.Prize.ID,
			results.Prize.Name,
			results.TotalEntries,
			results.Pending,
			results.Won,
			results.Lost,
			results.StockRemaining,
			results.Complete,
		); err != nil {
			return errs.Wrap(err, "write results summary")
		}
		return writeWinnerRows(cmd.OutOrStdout(), results.Winners)
	}),
}

func init() {
	rootCmd.AddCommand(raffleCmd)
	raffleCmd.AddCommand(raffleEntriesCmd)
	raffleCmd.AddCommand(raffleGeneralEntriesCmd)
	raffleCmd.AddCommand(raffleDrawCmd)
	raffleCmd.AddCommand(raffleGeneralDrawCmd)
	raffleCmd.AddCommand(raffleSelectCmd)
	raffleCmd.AddCommand(raffleConfirmCmd)
	raffleCmd.AddCommand(raffleDiscardCmd)
	raffleCmd.AddCommand(raffleReplaceGeneralCmd)
	raffleCmd.AddCommand(raffleLogsCmd)
	raffleCmd.AddCommand(raffleWinnersCmd)
	raffleCmd.AddCommand(raffleStatsCmd)
	raffleCmd.AddCommand(raffleResultsCmd)

	raffleEntriesCmd.Flags().Uint64("prize", 0, "Prize id")
	raffleEntriesCmd.Flags().String("type", "", "Raffle type (public|general)")
	raffleEntriesCmd.Flags().String("origin", "manual", "Entry origin (manual|bulk-import|scan|system)")
	_ = raffleEntriesCmd.MarkFlagRequired("prize")

	raffleGeneralEntriesCmd.Flags().Uint64("event", 0, "Event id")
	raffleGeneralEntriesCmd.Flags().String("origin", "manual", "Entry origin (manual|bulk-import|scan|system)")
	_ = raffleGeneralEntriesCmd.MarkFlagRequired("event")

	raffleGeneralDrawCmd.Flags().Uint64("event", 0, "Event id")
	raffleGeneralDrawCmd.Flags().Int("count", 1, "Winners requested")
	raffleGeneralDrawCmd.Flags().Bool("notify", false, "Send winner notices after commit")
	_ = raffleGeneralDrawCmd.MarkFlagRequired("event")

	raffleSelectCmd.Flags().Uint64("prize", 0, "Prize id")
	_ = raffleSelectCmd.MarkFlagRequired("prize")

	raffleConfirmCmd.Flags().Uint64("prize", 0, "Prize id")
	raffleConfirmCmd.Flags().Uint64("entry", 0, "Entry id, defaults to the cached selection")
	raffleConfirmCmd.Flags().String("token", "", "Selection token printed by select")
	raffleConfirmCmd.Flags().Bool("notify", false, "Send winner notices after commit")
	_ = raffleConfirmCmd.MarkFlagRequired("prize")

	raffleDiscardCmd.Flags().Uint64("prize", 0, "Prize id")
	_ = raffleDiscardCmd.MarkFlagRequired("prize")

	raffleReplaceGeneralCmd.Flags().Uint64("event", 0, "Event id")
	raffleReplaceGeneralCmd.Flags().Uint64("guest", 0, "Guest id of the winner to replace")
	raffleReplaceGeneralCmd.Flags().Bool("notify", false, "Send winner notices after commit")
	_ = raffleReplaceGeneralCmd.MarkFlagRequired("event")
	_ = raffleReplaceGeneralCmd.MarkFlagRequired("guest")

	raffleLogsCmd.Flags().Uint64("event", 0, "Filter by event id")
	raffleLogsCmd.Flags().Uint64("prize", 0, "Filter by prize id")
	raffleLogsCmd.Flags().Uint64("guest", 0, "Filter by guest id")
	raffleLogsCmd.Flags().Bool("confirmed", false, "Only confirmed logs")
	raffleLogsCmd.Flags().Int("limit", 0, "Maximum rows, 0 for all")

	raffleWinnersCmd.Flags().Uint64("event", 0, "Event id")
	_ = raffleWinnersCmd.MarkFlagRequired("event")

	raffleStatsCmd.Flags().Uint64("event", 0, "Event id")
	_ = raffleStatsCmd.MarkFlagRequired("event")

	raffleResultsCmd.Flags().Uint64("prize", 0, "Prize id")
	_ = raffleResultsCmd.MarkFlagRequired("prize")
}

func parseTypeAndOrigin(rawType, rawOrigin string) (domainraffle.RaffleType, domainraffle.Origin, error) {
	var typ domainraffle.RaffleType
	if rawType != "" {
		parsed, err := domainraffle.ParseRaffleType(rawType)
		if err != nil {
			return "", "", err
		}
		typ = parsed
	}
	origin, err := domainraffle.ParseOrigin(rawOrigin)
	if err != nil {
		return "", "", err
	}
	return typ, origin, nil
}

package cmd

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"eventraffle/internal/bootstrap"
	"eventraffle/internal/bootstrap/logging"
	"eventraffle/internal/errs"
	"eventraffle/internal/usecase/raffle"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load an event with guests and prizes from a YAML fixture",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *raffle.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		file, _ := cmd.Flags().GetString("file")
		fixture, err := raffle.LoadFixtureFile(file)
		if err != nil {
			return err
		}

		if err := app.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "initialize schema")
		}

		report, err := svc.ImportFixture(ctx, fixture)
		if err != nil {
			logging.Error(ctx, "import fixture failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "import fixture")
		}

		out := cmd.OutOrStdout()
		if _, err := fmt.Fprintf(out, "event %d: %d guest(s), %d attended\n", report.EventID, report.Guests, report.Attended); err != nil {
			return errs.Wrap(err, "write seed output")
		}
		names := make([]string, 0, len(report.Prizes))
		for name := range report.Prizes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if _, err := fmt.Fprintf(out, "prize %d: %s\n", report.Prizes[name], name); err != nil {
				return errs.Wrap(err, "write seed prize")
			}
		}
		if report.Quota != nil {
			if _, err := fmt.Fprintf(out, "quota prize: %d\n", report.Quota.PrizeID); err != nil {
				return errs.Wrap(err, "write seed quota")
			}
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().String("file", "", "Fixture YAML path")
	_ = seedCmd.MarkFlagRequired("file")
}

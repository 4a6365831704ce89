package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"eventraffle/internal/errs"
	"eventraffle/internal/usecase/raffle"
)

func writeDrawResult(out io.Writer, result raffle.DrawResult) error {
	if _, err := fmt.Fprintf(
		out,
		"prize %d (%s) %s raffle: %d winner(s), %d participant(s), %d lost, stock %d\n",
		result.PrizeID,
		result.PrizeName,
		result.Type,
		len(result.Winners),
		result.Participants,
		result.Lost,
		result.StockAfter,
	); err != nil {
		return errs.Wrap(err, "write draw summary")
	}
	if result.ReplacedGuestID != 0 {
		if _, err := fmt.Fprintf(out, "replaced guest: %d\n", result.ReplacedGuestID); err != nil {
			return errs.Wrap(err, "write replaced guest")
		}
	}
	if len(result.Winners) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "position\tentry\tguest\tname\temployer\tprotected"); err != nil {
		return errs.Wrap(err, "write winners header")
	}
	for _, winner := range result.Winners {
		if _, err := fmt.Fprintf(
			w,
			"%d\t%d\t%d\t%s\t%s\t%t\n",
			winner.Position,
			winner.EntryID,
			winner.GuestID,
			winner.FullName,
			winner.Employer,
			winner.Protected,
		); err != nil {
			return errs.Wrap(err, "write winner row")
		}
	}
	if err := w.Flush(); err != nil {
		return errs.Wrap(err, "flush winners")
	}
	return nil
}

func writeEntryReport(out io.Writer, report raffle.EntryReport) error {
	if _, err := fmt.Fprintf(
		out,
		"prize %d %s entries: eligible=%d created=%d already_entered=%d excluded=%d correlation=%s\n",
		report.PrizeID,
		report.Type,
		report.Eligible,
		report.Created,
		report.AlreadyEntered,
		report.Excluded,
		report.CorrelationID,
	); err != nil {
		return errs.Wrap(err, "write entry report")
	}
	return nil
}

func writeWinnerRows(out io.Writer, rows []raffle.WinnerRow) error {
	if len(rows) == 0 {
		if _, err := fmt.Fprintln(out, "no winners"); err != nil {
			return errs.Wrap(err, "write winners output")
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "prize\ttype\tposition\tguest\temployee\tname\temployer\tdrawn_at"); err != nil {
		return errs.Wrap(err, "write winners header")
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(
			w,
			"%s\t%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
			row.PrizeName,
			row.Type,
			row.Position,
			row.GuestID,
			dashIfEmpty(row.EmployeeNumber),
			row.FullName,
			row.Employer,
			row.DrawnAt,
		); err != nil {
			return errs.Wrap(err, "write winner row")
		}
	}
	if err := w.Flush(); err != nil {
		return errs.Wrap(err, "flush winners")
	}
	return nil
}

func dashIfEmpty(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

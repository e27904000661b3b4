package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

func writeReport(w io.Writer, records []domain.AttendanceRecord, summary *domain.AttendanceSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "DATE\tTIME\tNAME")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Date(), r.Time(), r.Name)
	}
	if len(records) == 0 {
		fmt.Fprintln(tw, "-\t-\tno attendance records")
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "Total records:\t%d\n", summary.TotalRecords)
	fmt.Fprintf(tw, "Unique attendees:\t%d\n", summary.UniqueAttendees)
	fmt.Fprintf(tw, "Days recorded:\t%d\n", len(summary.ByDate))

	if len(summary.ByPerson) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "NAME\tDAYS")
		for _, p := range summary.ByPerson {
			fmt.Fprintf(tw, "%s\t%d\n", p.Name, p.Count)
		}
	}

	return tw.Flush()
}

package forecastclient

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/okian/waitcast/internal/domain/model"
)

// RenderTable writes a report as an aligned text table. The slot with the
// longest predicted wait is marked with an asterisk.
func RenderTable(w io.Writer, r model.Report) error {
	flags := []string{}
	if r.Holiday {
		flags = append(flags, "holiday")
	}
	if r.PrevDayHoliday {
		flags = append(flags, "after holiday")
	}
	header := fmt.Sprintf("%s  patients=%d  weather=%s", r.Date, r.TotalPatients, r.Weather)
	if len(flags) > 0 {
		header += "  (" + strings.Join(flags, ", ") + ")"
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	peak, _ := r.Peak()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "time\treception\tqueue\twait (min)\t\t")
	for _, s := range r.Slots {
		mark := ""
		if s.Time == peak.Time {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t\n", s.Time, s.Reception, s.Queue, s.WaitMinutes, mark)
	}
	fmt.Fprintf(tw, "total\t%d\t\t\t\t\n", r.TotalReception())
	return tw.Flush()
}

// RenderJSON writes v as indented JSON.
func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

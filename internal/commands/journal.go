package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/trace/internal/app"
	"github.com/klabast/wb-services/trace/internal/calendar"
	"github.com/klabast/wb-services/trace/internal/store"
	"github.com/klabast/wb-services/trace/internal/summary"
)

var weekStart string

var weekCmd = &cobra.Command{
	Use:   "week [date]",
	Short: "Print the week containing a date (default: today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := boot(true)
		if err != nil {
			return err
		}
		defer rt.Close()

		date := rt.cal.Today()
		if len(args) == 1 {
			if date, err = calendar.FormatDate(args[0]); err != nil {
				return err
			}
		}

		mondayStart := rt.cfg.MondayStart()
		switch weekStart {
		case app.WeekStartMonday:
			mondayStart = true
		case app.WeekStartSunday:
			mondayStart = false
		case "":
		default:
			return fmt.Errorf("--start must be %q or %q", app.WeekStartMonday, app.WeekStartSunday)
		}

		week, err := calendar.WeekRange(date, mondayStart)
		if err != nil {
			return err
		}
		entries, err := rt.store.ListEntries(cmd.Context(), store.ListOptions{From: week.WeekStart, To: week.WeekEnd})
		if err != nil {
			return err
		}
		weekly, err := summary.Build(entries, week.WeekStart, week.WeekEnd)
		if err != nil {
			return err
		}
		notes, err := rt.store.GetWeeklyNotes(cmd.Context(), week.WeekStart)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return err
		default:
			weekly = weekly.WithNotes(*notes)
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, weekly.Text())
		if len(entries) > 0 {
			fmt.Fprintln(out)
			fmt.Fprint(out, summary.EntriesText(entries))
		}
		return nil
	},
}

var calendarCmd = &cobra.Command{
	Use:   "calendar [year] [month]",
	Short: "Print a month grid with the days that have entries",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := boot(true)
		if err != nil {
			return err
		}
		defer rt.Close()

		now := rt.cal.Now()
		year, month := now.Year(), int(now.Month())
		if len(args) > 0 {
			if year, err = strconv.Atoi(args[0]); err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
		}
		if len(args) > 1 {
			if month, err = strconv.Atoi(args[1]); err != nil {
				return fmt.Errorf("invalid month %q", args[1])
			}
		}

		days, err := rt.cal.Grid(year, month)
		if err != nil {
			return err
		}
		dates, err := rt.store.EntryDates(cmd.Context(), days[0].Date, days[len(days)-1].Date)
		if err != nil {
			return err
		}
		has := make(map[string]bool, len(dates))
		for _, d := range dates {
			has[d] = true
		}

		fmt.Fprint(cmd.OutOrStdout(), calendar.RenderGrid(year, month, days, func(date string) bool { return has[date] }))
		return nil
	},
}

var (
	exportFormat   string
	exportFrom     string
	exportTo       string
	exportReminder string
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the journal as json, csv or ics (default: stdout)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := boot(true)
		if err != nil {
			return err
		}
		defer rt.Close()
		ctx := cmd.Context()

		if exportFormat == "json" {
			data, err := rt.store.Export(ctx)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if err := store.WriteSnapshot(args[0], data); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "✅ Exported %d entries to %s\n", len(data.Entries), args[0])
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), data)
		}

		opts := store.ListOptions{}
		if exportFrom != "" {
			if opts.From, err = calendar.FormatDate(exportFrom); err != nil {
				return err
			}
		}
		if exportTo != "" {
			if opts.To, err = calendar.FormatDate(exportTo); err != nil {
				return err
			}
		}
		entries, err := rt.store.ListEntries(ctx, opts)
		if err != nil {
			return err
		}
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })

		var out io.Writer = cmd.OutOrStdout()
		if len(args) == 1 {
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		switch exportFormat {
		case "csv":
			err = app.WriteCSV(out, entries)
		case "ics":
			cal := app.BuildICS(entries, app.ICSOptions{Name: "trace", ReminderTime: exportReminder, Now: rt.cal.Now()})
			err = cal.SerializeTo(out)
		default:
			return fmt.Errorf("unknown format %q (json, csv, ics)", exportFormat)
		}
		if err != nil {
			return err
		}
		if len(args) == 1 {
			fmt.Fprintf(cmd.ErrOrStderr(), "✅ Exported %d entries to %s\n", len(entries), args[0])
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a json export. Existing dates, weeks and projects are kept.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := boot(true)
		if err != nil {
			return err
		}
		defer rt.Close()

		data, err := store.ReadSnapshot(args[0])
		if err != nil {
			return err
		}
		result, err := rt.store.Import(cmd.Context(), data)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Imported %d entries, %d weekly notes, %d projects\n",
			result.EntriesImported, result.WeeklyNotesImported, result.ProjectsImported)
		return nil
	},
}

func init() {
	weekCmd.Flags().StringVar(&weekStart, "start", "", "First day of the week: monday or sunday")

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Output format: json, csv or ics")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "First date (csv, ics)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Last date (csv, ics)")
	exportCmd.Flags().StringVar(&exportReminder, "reminder", "", "HH:MM alarm for tomorrow's plan (ics)")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

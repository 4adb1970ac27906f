package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/2beens/workoutwrapped/internal/cache"
	"github.com/2beens/workoutwrapped/internal/workouts"
	"github.com/2beens/workoutwrapped/pkg"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type reportOptions struct {
	year     int
	from     string
	to       string
	timeZone string
	top      int
	asJSON   bool
	logLevel string
}

var opts = reportOptions{}

var rootCmd = &cobra.Command{
	Use:   "wrapped",
	Short: "Workout Wrapped - a year in review of your workouts export",
	Long: `Builds the year in review charts from one or more workouts CSV exports.

Examples:
  wrapped report workouts.csv                  # 2023 in review
  wrapped report -y 2024 --tz Europe/Berlin workouts.csv
  wrapped report --from 2023-06-01 --to 2023-09-01 workouts.csv
  wrapped report --json workouts.csv > report.json`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := log.ParseLevel(opts.logLevel)
		if err != nil {
			return err
		}
		log.SetLevel(level)
		log.SetOutput(cmd.ErrOrStderr())
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report <workouts.csv>...",
	Short: "Print the year in review for the given exports",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd.Context(), cmd.OutOrStdout(), opts, args)
	},
}

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "List the zone abbreviations understood in workout timestamps",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showZones(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level [trace | debug | info | warn | error]")

	reportCmd.Flags().IntVarP(&opts.year, "year", "y", workouts.DefaultWindow.Start.Year(), "calendar year to review")
	reportCmd.Flags().StringVar(&opts.from, "from", "", "window start date, YYYY-MM-DD (overrides --year)")
	reportCmd.Flags().StringVar(&opts.to, "to", "", "window end date, exclusive, YYYY-MM-DD")
	reportCmd.Flags().StringVar(&opts.timeZone, "tz", "", "IANA zone hours of day are reported in (default local)")
	reportCmd.Flags().IntVarP(&opts.top, "top", "n", workouts.DefaultTopN, "entries in the ranked charts")
	reportCmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the reports as JSON")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(zonesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o reportOptions) analyzerParams() (workouts.AnalyzerParams, error) {
	params := workouts.AnalyzerParams{
		Window: workouts.YearWindow(o.year),
		Viewer: time.Local,
		TopN:   o.top,
	}
	if o.from != "" || o.to != "" {
		window, err := workouts.ParseWindow(o.from, o.to)
		if err != nil {
			return params, err
		}
		params.Window = window
	}
	if o.timeZone != "" {
		loc, err := time.LoadLocation(o.timeZone)
		if err != nil {
			return params, fmt.Errorf("invalid time zone: %s", o.timeZone)
		}
		params.Viewer = loc
	}
	if o.top < 1 || o.top > workouts.MaxTopN {
		return params, fmt.Errorf("invalid top, expected 1 to %d: %d", workouts.MaxTopN, o.top)
	}
	return params, nil
}

// runReport analyzes every export once; files with identical content are reported only once.
func runReport(ctx context.Context, out io.Writer, o reportOptions, paths []string) error {
	params, err := o.analyzerParams()
	if err != nil {
		return err
	}
	analyzer := workouts.NewAnalyzer(params)
	seen := cache.NewMapCache()

	var reports []*workouts.Report
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		hash := pkg.ContentHash(content)
		if prev, err := seen.Get(ctx, hash); err == nil {
			log.Warnf("%s has the same content as %s, skipping", path, prev)
			continue
		} else if !errors.Is(err, cache.ErrMiss) {
			return err
		}
		if err := seen.Set(ctx, hash, []byte(path)); err != nil {
			return err
		}

		records, err := workouts.ReadCSV(bytes.NewReader(content))
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		log.Debugf("%s: %d records", path, len(records))

		report, err := analyzer.Analyze(ctx, records)
		if err != nil {
			return fmt.Errorf("analyze %s: %w", path, err)
		}
		reports = append(reports, report)

		if !o.asJSON {
			fmt.Fprintln(out, renderReport(path, report))
		}
	}

	if o.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if len(reports) == 1 {
			return enc.Encode(reports[0])
		}
		return enc.Encode(reports)
	}
	return nil
}

func showZones(out io.Writer) error {
	for _, entry := range workouts.ZoneOffsetEntries() {
		if _, err := fmt.Fprintf(out, "%s\t%s\n", labelStyle.Render(entry.Zone), formatOffset(entry.OffsetMinutes)); err != nil {
			return err
		}
	}
	return nil
}

func formatOffset(minutes int) string {
	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%02d:%02d", sign, minutes/60, minutes%60)
}

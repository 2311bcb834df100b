package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/gzhole/faultcorpus/internal/fault"
	"github.com/gzhole/faultcorpus/internal/logger"
)

var (
	logFilterCategory string
	logFilterFaulted  bool
	logLast           int
	logSummary        bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View and filter the fault log",
	Long: `View the fault log with filtering and summary options.

Examples:
  faultcorpus log                             # Show all entries
  faultcorpus log --last 20                   # Show last 20 entries
  faultcorpus log --category UseAfterFree     # Show one defect category
  faultcorpus log --faulted                   # Show only invocations that faulted
  faultcorpus log --summary                   # Show per-category counts`,
	Args: cobra.NoArgs,
	RunE: logCommand,
}

func init() {
	logCmd.Flags().StringVar(&logFilterCategory, "category", "", "Filter by defect category (e.g. OutOfBoundsWrite)")
	logCmd.Flags().BoolVar(&logFilterFaulted, "faulted", false, "Show only entries that reported a fault")
	logCmd.Flags().IntVar(&logLast, "last", 0, "Show last N entries")
	logCmd.Flags().BoolVar(&logSummary, "summary", false, "Show summary statistics for the filtered entries")
	rootCmd.AddCommand(logCmd)
}

func logCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var category fault.Category
	if logFilterCategory != "" {
		if category, err = fault.ParseCategory(logFilterCategory); err != nil {
			return err
		}
	}

	events, err := logger.ReadEvents(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("failed to read fault log: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(events) == 0 {
		fmt.Fprintln(out, "No fault log entries found.")
		return nil
	}

	filtered := filterEvents(events, category, logFilterFaulted)

	if logLast > 0 && logLast < len(filtered) {
		filtered = filtered[len(filtered)-logLast:]
	}

	if len(filtered) == 0 {
		fmt.Fprintln(out, "No fault log entries match.")
		return nil
	}

	if logSummary {
		printSummary(out, filtered)
		return nil
	}

	printEvents(out, filtered)
	return nil
}

func filterEvents(events []logger.FaultEvent, category fault.Category, faultedOnly bool) []logger.FaultEvent {
	if category == "" && !faultedOnly {
		return events
	}

	var filtered []logger.FaultEvent
	for _, e := range events {
		if category != "" && e.Category != category {
			continue
		}
		if faultedOnly && !e.Faulted {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

func printEvents(out io.Writer, events []logger.FaultEvent) {
	for _, e := range events {
		status := "ok   "
		if e.Faulted {
			status = "FAULT"
		}
		fmt.Fprintf(out, "%s %s %s [%s]\n", status, formatTimestamp(e.Timestamp), e.Fixture, e.Source)

		if len(e.Args) > 0 {
			fmt.Fprintf(out, "     Args: %q\n", e.Args)
		}
		if e.Stdin != "" {
			fmt.Fprintf(out, "     Stdin: %q\n", e.Stdin)
		}
		if e.Descriptor != nil {
			fmt.Fprintf(out, "     %s\n", e.Descriptor.Summary())
		}
		if e.Error != "" {
			fmt.Fprintf(out, "     Error: %s\n", e.Error)
		}
	}
}

func printSummary(out io.Writer, all []logger.FaultEvent) {
	invoked := map[fault.Category]int{}
	faulted := map[fault.Category]int{}
	errorCount := 0

	for _, e := range all {
		invoked[e.Category]++
		if e.Faulted {
			faulted[e.Category]++
		}
		if e.Error != "" {
			errorCount++
		}
	}

	fmt.Fprintln(out, "═══════════════════════════════════════════════════")
	fmt.Fprintln(out, "  faultcorpus Fault Log Summary")
	fmt.Fprintln(out, "═══════════════════════════════════════════════════")
	fmt.Fprintf(out, "  Total events:  %d\n", len(all))
	fmt.Fprintf(out, "  Errors:        %d\n", errorCount)
	fmt.Fprintln(out)
	for _, c := range fault.AllCategories {
		fmt.Fprintf(out, "  %-26s %4d invoked %4d faulted\n", c, invoked[c], faulted[c])
	}
	fmt.Fprintln(out, "═══════════════════════════════════════════════════")

	fmt.Fprintf(out, "  First event:   %s\n", formatTimestamp(all[0].Timestamp))
	fmt.Fprintf(out, "  Last event:    %s\n", formatTimestamp(all[len(all)-1].Timestamp))
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

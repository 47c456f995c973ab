package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/xtreamr/internal/catalog"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Authenticate and load the provider catalog",
	Long: `Authenticate against the provider and load its live channels, movies and
series. Snapshots younger than cache.reload_threshold are read from the cache;
everything else is fetched and written back.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()

		return withApp(ctx, func(a *app) error {
			_, report, err := a.loaded(ctx)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			if report.Partial() {
				return fmt.Errorf("catalog is partial, see log for details")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

// signalContext returns the command context, cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

func printReport(out io.Writer, report *catalog.LoadReport) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CLASS\tGROUPS\tSTREAMS\tSKIPPED\tREJECTED\tSOURCE")
	for _, cr := range report.Classes {
		source := "provider"
		switch {
		case cr.GroupsFailed:
			source = "failed (groups)"
		case cr.StreamsFailed:
			source = "failed (streams)"
		case cr.GroupsFromCache && cr.StreamsFromCache:
			source = "cache"
		case cr.GroupsFromCache || cr.StreamsFromCache:
			source = "mixed"
		}
		printer.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\n",
			cr.Class, cr.Groups, cr.Streams, cr.SkippedNoName+cr.SkippedAdult, cr.Rejected, source)
	}
	_ = tw.Flush()

	printer.Fprintf(out, "\n%d streams loaded, %d skipped in %s (run %s)\n",
		report.TotalStreams(), report.TotalSkipped(), report.Duration.Round(time.Millisecond), report.RunID)
}

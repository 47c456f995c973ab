package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/xtreamr/internal/catalog"
	"github.com/jmylchreest/xtreamr/internal/observability"
	"github.com/jmylchreest/xtreamr/internal/scheduler"
)

var warmOnce bool

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Refresh the catalog cache on a schedule",
	Long: `Re-fetch every catalog snapshot from the provider and rewrite the cache,
on the cron schedule in schedule.cron (5 fields, or a descriptor such as
"@every 6h"). Runs until interrupted. With --once a single refresh is done.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()

		return withApp(ctx, func(a *app) error {
			log := observability.WithComponent(a.logger, "scheduler")
			warmer := scheduler.NewCacheWarmer(a.store, a.newSession, func(report *catalog.LoadReport) {
				a.metrics.ObserveLoad(report)
				if err := a.metrics.WriteToTextfile(a.cfg.Metrics.Textfile); err != nil {
					log.Warn("writing metrics", slog.String("error", err.Error()))
				}
			}, log)

			if warmOnce {
				return warmer.Run(ctx)
			}

			sched := scheduler.New(log)
			if err := sched.Add(a.cfg.Schedule.Cron, "cache-warmer", warmer.Run); err != nil {
				return err
			}
			if next, err := sched.NextRun(a.cfg.Schedule.Cron); err == nil {
				log.Info("next cache refresh", slog.Time("at", next))
			}
			if err := sched.Start(ctx); err != nil {
				return err
			}

			<-ctx.Done()
			sched.Stop()
			return nil
		})
	},
}

func init() {
	warmCmd.Flags().BoolVar(&warmOnce, "once", false, "refresh once and exit")
	rootCmd.AddCommand(warmCmd)
}

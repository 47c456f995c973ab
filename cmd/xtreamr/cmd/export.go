package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/xtreamr/internal/database"
	"github.com/jmylchreest/xtreamr/internal/export"
	"github.com/jmylchreest/xtreamr/internal/observability"
)

var exportDeepen bool

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog to the configured database",
	Long: `Load the catalog and upsert its groups, streams and series into the database
configured under database.*. Rows are keyed by provider, kind and provider id,
so repeated exports update in place. With --deepen every series is expanded
first and its episodes are exported too.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()

		return withApp(ctx, func(a *app) error {
			session, report, err := a.loaded(ctx)
			if err != nil {
				return err
			}

			if exportDeepen {
				for _, serie := range session.Series() {
					if err := session.DeepenSerie(ctx, serie); err != nil {
						a.logger.Warn("skipping episodes of series",
							slog.String("series_id", serie.ID),
							slog.String("error", err.Error()),
						)
					}
				}
			}

			dbLogger := observability.WithComponent(a.logger, "database")
			db, err := database.New(a.cfg.Database, dbLogger)
			if err != nil {
				return err
			}
			defer db.Close()

			exporter, err := export.New(ctx, db, dbLogger)
			if err != nil {
				return err
			}
			run, err := exporter.Export(ctx, session, report.RunID)
			if err != nil {
				return err
			}

			printer.Fprintf(cmd.OutOrStdout(), "exported %d groups, %d streams, %d series, %d episodes to %s (export %s)\n",
				run.Groups, run.Streams, run.Series, run.Episodes, db.Driver(), run.ID)
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().BoolVar(&exportDeepen, "deepen", false, "fetch and export the episodes of every series")
	rootCmd.AddCommand(exportCmd)
}


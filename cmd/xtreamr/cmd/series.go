package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var seriesCmd = &cobra.Command{
	Use:   "series <series-id>",
	Short: "List the seasons and episodes of a series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()

		return withApp(ctx, func(a *app) error {
			session, _, err := a.loaded(ctx)
			if err != nil {
				return err
			}
			serie, err := session.DeepenSerieByID(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", serie.Name, serie.ID)
			for _, name := range serie.SeasonNames() {
				season := serie.Seasons[name]
				fmt.Fprintf(out, "\n%s\n", name)
				for _, ep := range season.SortedEpisodes() {
					fmt.Fprintf(out, "  %3d  %-40s  %s\n", ep.Number, ep.Title, ep.URL)
				}
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(seriesCmd)
}

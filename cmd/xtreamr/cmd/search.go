package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	searchCaseSensitive bool
	searchJSON          bool
)

var searchCmd = &cobra.Command{
	Use:   "search <pattern>",
	Short: "Search the catalog by name",
	Long: `Search movies, channels and series whose name starts with a match of the
regular expression pattern. Matching ignores case unless --case-sensitive is set.`,
	Example: `  xtreamr search 'bbc'
  xtreamr search '(news|sport)' --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()

		return withApp(ctx, func(a *app) error {
			session, _, err := a.loaded(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if searchJSON {
				data, err := session.SearchJSON(args[0], !searchCaseSensitive)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}

			results, err := session.Search(args[0], !searchCaseSensitive)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, r := range results {
				fmt.Fprintf(tw, "%v\t%v\t%v\n", field(r, "stream_id", "series_id"), field(r, "name"), field(r, "url"))
			}
			_ = tw.Flush()
			printer.Fprintf(out, "%d results\n", len(results))
			return nil
		})
	},
}

func init() {
	searchCmd.Flags().BoolVar(&searchCaseSensitive, "case-sensitive", false, "match case exactly")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print results as a JSON array")
	rootCmd.AddCommand(searchCmd)
}

// field returns the first present value among keys, or "-".
func field(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil && v != "" {
			return v
		}
	}
	return "-"
}

package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/xtreamr/internal/catalog"
	"github.com/jmylchreest/xtreamr/internal/download"
)

var downloadQuiet bool

var downloadCmd = &cobra.Command{
	Use:   "download <stream-id>",
	Short: "Download a movie into the cache directory",
	Long: `Download the movie with the given stream id into the cache directory as
<name>.<extension>. A file that already exists is not downloaded again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()

		var progress download.ProgressFunc
		if !downloadQuiet {
			progress = progressPrinter(cmd.ErrOrStderr())
		}

		return withApp(ctx, func(a *app) error {
			session, _, err := a.loaded(ctx, catalog.WithDownloadOptions(download.WithProgress(progress)))
			if err != nil {
				return err
			}

			path, result, err := session.DownloadVideoResult(ctx, args[0])
			a.metrics.ObserveDownload(result, err)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result == nil {
				fmt.Fprintf(out, "%s (already downloaded)\n", path)
				return nil
			}
			fmt.Fprintf(out, "%s (%s in %s)\n", path, humanize.IBytes(uint64(result.Bytes)), result.Duration.Round(time.Millisecond))
			return nil
		})
	},
}

func init() {
	downloadCmd.Flags().BoolVarP(&downloadQuiet, "quiet", "q", false, "do not print progress")
	rootCmd.AddCommand(downloadCmd)
}

// progressPrinter renders download progress on a single terminal line.
func progressPrinter(w io.Writer) download.ProgressFunc {
	return func(p download.Progress) {
		if p.Total > 0 {
			fmt.Fprintf(w, "\r%s: %s / %s (%.0f%%)", p.Name,
				humanize.IBytes(uint64(p.Downloaded)), humanize.IBytes(uint64(p.Total)),
				float64(p.Downloaded)*100/float64(p.Total))
		} else {
			fmt.Fprintf(w, "\r%s: %s", p.Name, humanize.IBytes(uint64(p.Downloaded)))
		}
		if p.Total > 0 && p.Downloaded >= p.Total {
			fmt.Fprintln(w)
		}
	}
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/xtreamr/internal/version"
	"github.com/jmylchreest/xtreamr/pkg/xmltv"
)

var (
	xmltvChannels []string
	xmltvOutput   string
)

var xmltvCmd = &cobra.Command{
	Use:   "xmltv",
	Short: "Fetch the provider's XMLTV guide",
	Long: `Fetch the provider's full XMLTV guide, optionally keeping only some channels,
and write it to stdout or a file. A file ending in .gz, .bz2 or .xz is written
compressed. Compressed guides from the provider are decompressed transparently.`,
	Example: `  xtreamr xmltv --channel bbc.uk --channel itv.uk
  xtreamr xmltv --output guide.xml.xz`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()

		return withApp(ctx, func(a *app) error {
			session, err := a.authenticated(ctx)
			if err != nil {
				return err
			}
			guide, err := session.XMLTV(ctx)
			if err != nil {
				return err
			}
			defer guide.Close()

			out, finish, err := openOutput(cmd.OutOrStdout(), xmltvOutput)
			if err != nil {
				return err
			}

			stats, err := xmltv.Filter(ctx, xmltv.NewWriter(out, version.ApplicationName), guide, xmltv.ChannelSet(xmltvChannels...))
			if err := finish(err); err != nil {
				return err
			}

			printer.Fprintf(cmd.ErrOrStderr(), "%d channels, %d programmes written (%d malformed skipped)\n",
				stats.Channels, stats.Programmes, stats.Malformed)
			return nil
		})
	},
}

func init() {
	xmltvCmd.Flags().StringSliceVar(&xmltvChannels, "channel", nil, "keep only these channel ids (repeatable)")
	xmltvCmd.Flags().StringVarP(&xmltvOutput, "output", "o", "", "write to this file instead of stdout")
	rootCmd.AddCommand(xmltvCmd)
}

// openOutput returns the writer for path, or stdout when path is empty. The
// finish function flushes compression and, for files, renames the temporary
// file into place only if writeErr is nil.
func openOutput(stdout io.Writer, path string) (io.Writer, func(writeErr error) error, error) {
	if path == "" {
		return stdout, func(err error) error { return err }, nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, nil, fmt.Errorf("creating output: %w", err)
	}
	cw, err := xmltv.NewCompressWriter(tmp, xmltv.CompressionFromPath(path))
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, nil, err
	}

	finish := func(writeErr error) error {
		if writeErr == nil {
			writeErr = cw.Close()
		}
		if closeErr := tmp.Close(); writeErr == nil {
			writeErr = closeErr
		}
		if writeErr == nil {
			writeErr = os.Rename(tmp.Name(), path)
		}
		if writeErr != nil {
			_ = os.Remove(tmp.Name())
		}
		return writeErr
	}
	return cw, finish, nil
}

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var (
	epgLimit int
	epgFull  bool
)

var epgCmd = &cobra.Command{
	Use:   "epg <stream-id>",
	Short: "Print the programme guide of a live stream",
	Long: `Print the provider's guide listing for a live stream as JSON. By default the
short EPG is requested; --full asks for the complete listing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()

		return withApp(ctx, func(a *app) error {
			session, err := a.authenticated(ctx)
			if err != nil {
				return err
			}

			var data json.RawMessage
			if epgFull {
				data, err = session.FullEPG(ctx, args[0])
			} else {
				data, err = session.ShortEPG(ctx, args[0], epgLimit)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		})
	},
}

var vodInfoCmd = &cobra.Command{
	Use:   "vod-info <vod-id>",
	Short: "Print the provider's details for a movie",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()

		return withApp(ctx, func(a *app) error {
			session, err := a.authenticated(ctx)
			if err != nil {
				return err
			}
			data, err := session.VODInfo(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		})
	},
}

func init() {
	epgCmd.Flags().IntVar(&epgLimit, "limit", 0, "maximum number of listings (0 uses the provider default)")
	epgCmd.Flags().BoolVar(&epgFull, "full", false, "request the full listing instead of the short EPG")
	epgCmd.MarkFlagsMutuallyExclusive("limit", "full")
	rootCmd.AddCommand(epgCmd, vodInfoCmd)
}

func printJSON(w io.Writer, data json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("formatting response: %w", err)
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

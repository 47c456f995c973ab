package xmltv

import (
	"context"
	"io"
	"strings"
)

// FilterStats counts what Filter kept and dropped.
type FilterStats struct {
	Channels          int
	Programmes        int
	DroppedChannels   int
	DroppedProgrammes int
	Malformed         int
}

// ChannelSet returns a predicate matching the given channel ids,
// ignoring case and surrounding space. Empty ids are ignored; with no ids
// every channel matches.
func ChannelSet(ids ...string) func(string) bool {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id = strings.ToLower(strings.TrimSpace(id)); id != "" {
			set[id] = struct{}{}
		}
	}
	if len(set) == 0 {
		return func(string) bool { return true }
	}
	return func(id string) bool {
		_, ok := set[strings.ToLower(strings.TrimSpace(id))]
		return ok
	}
}

// Filter copies the guide in src to w, keeping only channels, and
// programmes on channels, for which keep returns true. Malformed programmes
// are dropped and counted. w is closed on success.
func Filter(ctx context.Context, w *Writer, src io.Reader, keep func(channelID string) bool) (FilterStats, error) {
	var stats FilterStats
	p := &Parser{
		OnChannel: func(ch *Channel) error {
			if !keep(ch.ID) {
				stats.DroppedChannels++
				return nil
			}
			stats.Channels++
			return w.WriteChannel(ch)
		},
		OnProgramme: func(prog *Programme) error {
			if !keep(prog.Channel) {
				stats.DroppedProgrammes++
				return nil
			}
			stats.Programmes++
			return w.WriteProgramme(prog)
		},
		OnError: func(error) {
			stats.Malformed++
		},
	}

	if err := p.Parse(ctx, src); err != nil {
		return stats, err
	}
	return stats, w.Close()
}

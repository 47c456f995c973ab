package catalog

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/jmylchreest/xtreamr/pkg/xtream"
)

// Reserved identity of the per-session group that collects orphaned streams.
const (
	CatchAllGroupID   = "9999"
	CatchAllGroupName = "xEverythingElse"
)

var regionNames = map[string]string{
	"AR": "Arab",
	"AM": "America",
	"AS": "Asia",
	"AF": "Africa",
	"EU": "Europe",
}

// Group is a provider category.
type Group struct {
	ID    string
	Name  string
	Class xtream.StreamClass
	// RegionShort is the text before the first "|" in the name, if any.
	RegionShort string
	RegionLong  string

	// Channels holds members of Live and VOD groups, Series members of
	// Series groups. The catch-all group can hold both.
	Channels []*Channel
	Series   []*Serie

	Raw json.RawMessage
}

// IsCatchAll reports whether g is the orphan bucket.
func (g *Group) IsCatchAll() bool {
	return g.ID == CatchAllGroupID && g.Name == CatchAllGroupName
}

func parseRegion(name string) (short, long string) {
	parts := strings.Split(name, "|")
	if len(parts) < 2 {
		return "", ""
	}
	short = strings.TrimSpace(parts[0])
	return short, regionNames[short]
}

// Channel is a playable Live or VOD stream.
type Channel struct {
	ID           string
	Name         string
	Logo         string
	LogoPath     string
	GroupID      string
	Class        xtream.StreamClass
	Kind         xtream.StreamKind
	IsAdult      bool
	EPGChannelID string
	Added        time.Time
	Extension    string
	URL          string
	Raw          json.RawMessage
}

// Export returns the raw provider record with url and logo_path added.
// Provider fields win over url, logo_path always reflects the local path.
func (c *Channel) Export() map[string]any {
	out := map[string]any{"url": c.URL}
	mergeRaw(out, c.Raw)
	out["logo_path"] = c.LogoPath
	return out
}

// Serie is a TV series. Seasons stay empty until the series is deepened.
type Serie struct {
	ID       string
	Name     string
	Logo     string
	LogoPath string
	Plot     string
	Trailer  string
	Genre    string
	GroupID  string
	Seasons  map[string]*Season
	Raw      json.RawMessage
}

// Export returns the raw provider record with logo_path added.
func (s *Serie) Export() map[string]any {
	out := map[string]any{}
	mergeRaw(out, s.Raw)
	out["logo_path"] = s.LogoPath
	return out
}

// SeasonNames returns the season names in order of season number.
func (s *Serie) SeasonNames() []string {
	names := make([]string, 0, len(s.Seasons))
	for name := range s.Seasons {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := s.Seasons[names[i]], s.Seasons[names[j]]
		if a.Number != b.Number {
			return a.Number < b.Number
		}
		return names[i] < names[j]
	})
	return names
}

// Season groups the episodes of one season by title.
type Season struct {
	Name     string
	Number   int64
	Episodes map[string]*Episode
}

// SortedEpisodes returns the episodes in episode-number order.
func (s *Season) SortedEpisodes() []*Episode {
	out := make([]*Episode, 0, len(s.Episodes))
	for _, ep := range s.Episodes {
		out = append(out, ep)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Number != out[j].Number {
			return out[i].Number < out[j].Number
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// Episode is a playable episode of a series.
type Episode struct {
	ID        string
	Title     string
	Extension string
	Number    int64
	Info      json.RawMessage
	Logo      string
	LogoPath  string
	URL       string
	Raw       json.RawMessage
}

func mergeRaw(dst map[string]any, raw json.RawMessage) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return
	}
	for k, v := range fields {
		dst[k] = v
	}
}

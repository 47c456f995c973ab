package catalog

import (
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/jmylchreest/xtreamr/internal/storage"
	"github.com/jmylchreest/xtreamr/pkg/xtream"
)

func newGroup(cat xtream.Category, class xtream.StreamClass, raw json.RawMessage) *Group {
	name := cat.CategoryName.String()
	short, long := parseRegion(name)
	return &Group{
		ID:          cat.CategoryID.String(),
		Name:        name,
		Class:       class,
		RegionShort: short,
		RegionLong:  long,
		Raw:         raw,
	}
}

func newCatchAll() *Group {
	raw, _ := json.Marshal(map[string]string{
		"category_id":   CatchAllGroupID,
		"category_name": CatchAllGroupName,
		"parent_id":     "0",
	})
	return &Group{
		ID:    CatchAllGroupID,
		Name:  CatchAllGroupName,
		Class: xtream.ClassLive,
		Raw:   raw,
	}
}

// buildChannel converts a Live or VOD record. A stream_type outside the
// known kinds is rejected with ErrInvalidStreamType.
func (s *Session) buildChannel(class xtream.StreamClass, rec *xtream.StreamRecord, raw json.RawMessage, groupID string) (*Channel, error) {
	kind, err := xtream.NormalizeStreamType(rec.StreamType.String())
	if err != nil {
		return nil, err
	}

	ext := kind.DefaultExtension()
	if kind == xtream.KindMovie {
		ext = rec.ContainerExtension.String()
	}

	ch := &Channel{
		ID:           rec.StreamID.String(),
		Name:         rec.Name.String(),
		Logo:         rec.StreamIcon.String(),
		GroupID:      groupID,
		Class:        class,
		Kind:         kind,
		IsAdult:      rec.IsAdult.Int() == 1,
		EPGChannelID: rec.EPGChannelID.String(),
		Added:        rec.AddedTime(),
		Extension:    ext,
		Raw:          raw,
	}
	ch.LogoPath = s.logoPath(ch.Logo)
	ch.URL = xtream.StreamURL(s.client.Server(), kind, s.streamCreds, ch.ID, ext)
	s.checkURL(ch.Name, ch.ID, ch.URL)
	return ch, nil
}

func (s *Session) buildSerie(rec *xtream.SeriesRecord, raw json.RawMessage, groupID string) *Serie {
	serie := &Serie{
		ID:      rec.SeriesID.String(),
		Name:    rec.Name.String(),
		Logo:    rec.Cover.String(),
		Plot:    rec.Plot.String(),
		Trailer: rec.YoutubeTrailer.String(),
		Genre:   rec.Genre.String(),
		GroupID: groupID,
		Seasons: make(map[string]*Season),
		Raw:     raw,
	}
	serie.LogoPath = s.logoPath(serie.Logo)
	return serie
}

// buildEpisode inherits the logo from the parent series cover.
func (s *Session) buildEpisode(serie *Serie, rec *xtream.Episode, raw json.RawMessage) *Episode {
	ep := &Episode{
		ID:        rec.ID.String(),
		Title:     rec.Title.String(),
		Extension: rec.ContainerExtension.String(),
		Number:    rec.EpisodeNum.Int(),
		Info:      rec.Info,
		Logo:      serie.Logo,
		LogoPath:  serie.LogoPath,
		Raw:       raw,
	}
	ep.URL = xtream.StreamURL(s.client.Server(), xtream.KindSeries, s.streamCreds, ep.ID, ep.Extension)
	s.checkURL(ep.Title, ep.ID, ep.URL)
	return ep
}

// logoPath returns where a logo would be stored locally, or "" when the logo
// URL does not look like a URL.
func (s *Session) logoPath(logo string) string {
	if !xtream.ValidURL(logo) {
		return ""
	}
	name := storage.Slugify(storage.URLBaseName(logo))
	return filepath.Join(s.sandbox.BaseDir(), storage.ScopedName(s.provider.Name, name))
}

// checkURL warns about a stream URL that fails the shape check. The URL itself
// is not logged because it carries the credentials as path segments.
func (s *Session) checkURL(name, streamID, url string) {
	if !xtream.ValidURL(url) {
		s.logger.Warn("constructed stream URL looks invalid",
			slog.String("name", name),
			slog.String("stream_id", streamID),
			slog.String("server", s.client.Server()),
		)
	}
}

func seasonName(n int64) string {
	return "Season " + strconv.FormatInt(n, 10)
}

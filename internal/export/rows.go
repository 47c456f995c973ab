package export

import (
	"encoding/json"
	"strings"

	"github.com/jmylchreest/xtreamr/internal/catalog"
	"github.com/jmylchreest/xtreamr/internal/models"
	"github.com/jmylchreest/xtreamr/pkg/xtream"
)

func groupRows(provider string, groups []*catalog.Group) []*models.CatalogGroup {
	rows := make([]*models.CatalogGroup, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, &models.CatalogGroup{
			Provider:    provider,
			Kind:        strings.ToLower(string(g.Class)),
			ProviderID:  g.ID,
			Name:        g.Name,
			RegionShort: g.RegionShort,
			RegionLong:  g.RegionLong,
			Raw:         rawString(g.Raw),
		})
	}
	return rows
}

func streamRows(provider string, src Source, channels []*catalog.Channel) []*models.CatalogStream {
	rows := make([]*models.CatalogStream, 0, len(channels))
	for _, c := range channels {
		row := &models.CatalogStream{
			Provider:     provider,
			Kind:         string(c.Kind),
			ProviderID:   c.ID,
			Class:        string(c.Class),
			Name:         c.Name,
			GroupID:      c.GroupID,
			GroupTitle:   src.GroupTitle(c.Class, c.GroupID),
			Logo:         c.Logo,
			LogoPath:     c.LogoPath,
			EPGChannelID: c.EPGChannelID,
			Extension:    c.Extension,
			URL:          c.URL,
			IsAdult:      c.IsAdult,
			Raw:          rawString(c.Raw),
		}
		if !c.Added.IsZero() {
			added := c.Added
			row.AddedAt = &added
		}
		rows = append(rows, row)
	}
	return rows
}

func seriesRows(provider string, src Source, series []*catalog.Serie) ([]*models.CatalogSeries, []*models.CatalogEpisode) {
	rows := make([]*models.CatalogSeries, 0, len(series))
	var episodes []*models.CatalogEpisode

	for _, s := range series {
		rows = append(rows, &models.CatalogSeries{
			Provider:   provider,
			Kind:       models.KindSeries,
			ProviderID: s.ID,
			Name:       s.Name,
			GroupID:    s.GroupID,
			GroupTitle: src.GroupTitle(xtream.ClassSeries, s.GroupID),
			Logo:       s.Logo,
			LogoPath:   s.LogoPath,
			Plot:       s.Plot,
			Genre:      s.Genre,
			Trailer:    s.Trailer,
			Raw:        rawString(s.Raw),
		})

		for _, name := range s.SeasonNames() {
			season := s.Seasons[name]
			for _, ep := range season.SortedEpisodes() {
				episodes = append(episodes, &models.CatalogEpisode{
					Provider:     provider,
					Kind:         models.KindEpisode,
					ProviderID:   ep.ID,
					SeriesID:     s.ID,
					Season:       season.Name,
					SeasonNumber: season.Number,
					Number:       ep.Number,
					Title:        ep.Title,
					Extension:    ep.Extension,
					URL:          ep.URL,
					Info:         rawString(ep.Info),
					Raw:          rawString(ep.Raw),
				})
			}
		}
	}
	return rows, episodes
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	return string(raw)
}

// dedupe keeps the last row per key. Providers occasionally list a stream
// twice and one upsert statement may not touch a row twice on PostgreSQL.
func dedupe[T any](rows []*T, key func(*T) string) []*T {
	index := make(map[string]int, len(rows))
	out := make([]*T, 0, len(rows))
	for _, row := range rows {
		k := key(row)
		if i, ok := index[k]; ok {
			out[i] = row
			continue
		}
		index[k] = len(out)
		out = append(out, row)
	}
	return out
}

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/jmylchreest/xtreamr/pkg/xtream"
)

// DeepenSerie fetches the seasons and episodes of serie and stores them on it.
// Seasons are keyed by name and episodes by title; calling it again
// overwrites entries with the same keys.
func (s *Session) DeepenSerie(ctx context.Context, serie *Serie) error {
	if err := s.requireAuth(); err != nil {
		return err
	}

	raw := s.client.SeriesInfo(ctx, serie.ID)
	if raw == nil {
		return fmt.Errorf("%w: series %s", ErrSeriesInfoUnavailable, serie.ID)
	}

	var info xtream.SeriesInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return fmt.Errorf("%w: series %s: %w", ErrSeriesInfoUnavailable, serie.ID, err)
	}

	seasons := info.Seasons
	if len(seasons) == 0 {
		seasons = synthesizeSeasons(info.Episodes)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if serie.Seasons == nil {
		serie.Seasons = make(map[string]*Season)
	}

	episodes := 0
	for _, si := range seasons {
		number := si.SeasonNumber.Int()
		name := si.Name.String()
		if name == "" {
			name = seasonName(number)
		}

		season := &Season{Name: name, Number: number, Episodes: make(map[string]*Episode)}
		serie.Seasons[name] = season

		for _, epRaw := range info.Episodes[strconv.FormatInt(number, 10)] {
			var rec xtream.Episode
			if err := json.Unmarshal(epRaw, &rec); err != nil {
				s.logger.Warn("skipping malformed episode",
					slog.String("series_id", serie.ID),
					slog.String("error", err.Error()),
				)
				continue
			}
			ep := s.buildEpisode(serie, &rec, epRaw)
			season.Episodes[ep.Title] = ep
			episodes++
		}
	}

	s.logger.Debug("deepened series",
		slog.String("series_id", serie.ID),
		slog.Int("seasons", len(seasons)),
		slog.Int("episodes", episodes),
	)
	return nil
}

// DeepenSerieByID looks up a loaded series and deepens it.
func (s *Session) DeepenSerieByID(ctx context.Context, id string) (*Serie, error) {
	serie := s.Serie(id)
	if serie == nil {
		return nil, fmt.Errorf("%w: series %s", ErrStreamNotFound, id)
	}
	if err := s.DeepenSerie(ctx, serie); err != nil {
		return nil, err
	}
	return serie, nil
}

// synthesizeSeasons builds a season list from the episode keys for providers
// that return an empty "seasons" array.
func synthesizeSeasons(episodes xtream.EpisodesBySeason) xtream.SeasonList {
	numbers := make([]int64, 0, len(episodes))
	for key := range episodes {
		n, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		numbers = append(numbers, n)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })

	out := make(xtream.SeasonList, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, xtream.SeasonInfo{
			Name:         xtream.FlexString(seasonName(n)),
			SeasonNumber: xtream.FlexInt(n),
		})
	}
	return out
}

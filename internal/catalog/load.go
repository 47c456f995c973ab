package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/xtreamr/internal/cache"
	"github.com/jmylchreest/xtreamr/internal/observability"
	"github.com/jmylchreest/xtreamr/pkg/xtream"
)

// LoadReport summarizes one Load.
type LoadReport struct {
	RunID    string
	Provider string
	Started  time.Time
	Duration time.Duration
	Classes  []ClassReport
}

// ClassReport summarizes the load of one stream class.
type ClassReport struct {
	Class            xtream.StreamClass
	Groups           int
	Streams          int
	SkippedNoName    int
	SkippedAdult     int
	Rejected         int
	GroupsFromCache  bool
	StreamsFromCache bool
	GroupsFailed     bool
	StreamsFailed    bool
	Duration         time.Duration
}

// Partial reports whether any class could not be loaded completely.
func (r *LoadReport) Partial() bool {
	if len(r.Classes) < len(xtream.Classes) {
		return true
	}
	for _, c := range r.Classes {
		if c.GroupsFailed || c.StreamsFailed {
			return true
		}
	}
	return false
}

// TotalStreams returns the number of streams added across classes.
func (r *LoadReport) TotalStreams() int {
	n := 0
	for _, c := range r.Classes {
		n += c.Streams
	}
	return n
}

// TotalSkipped returns the number of skipped and rejected records across classes.
func (r *LoadReport) TotalSkipped() int {
	n := 0
	for _, c := range r.Classes {
		n += c.SkippedNoName + c.SkippedAdult + c.Rejected
	}
	return n
}

// Load fills the catalog, class by class, from the cache or the provider.
// It runs at most once per session. A class whose groups cannot be obtained
// stops the load; a class whose streams cannot be obtained is left empty.
// Either way the session ends up loaded with whatever was read.
func (s *Session) Load(ctx context.Context) (report *LoadReport, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated {
		s.logger.Warn("cannot load streams: session is not authenticated")
		return nil, ErrNotAuthenticated
	}
	if s.loaded {
		s.logger.Warn("catalog has already been loaded")
		return nil, ErrAlreadyLoaded
	}

	runID := ulid.Make().String()
	logger := observability.WithCorrelationID(s.logger, runID)
	done := observability.TimedOperationWithError(ctx, logger, "load_catalog", &err)
	defer done()

	report = &LoadReport{RunID: runID, Provider: s.provider.Name, Started: time.Now()}

	for _, class := range xtream.Classes {
		cr := s.loadClass(ctx, logger, class)
		report.Classes = append(report.Classes, cr)
		if cr.GroupsFailed {
			break
		}
	}

	s.loaded = true
	report.Duration = time.Since(report.Started)
	return report, nil
}

func (s *Session) loadClass(ctx context.Context, logger *slog.Logger, class xtream.StreamClass) ClassReport {
	start := time.Now()
	cr := ClassReport{Class: class}
	logger = logger.With(slog.String("class", string(class)))

	groupsRaw, fromCache := s.fetch(ctx, cache.GroupsKey(string(class)), func(ctx context.Context) json.RawMessage {
		return s.client.Categories(ctx, class)
	})
	cr.GroupsFromCache = fromCache

	groups, ok := decodeList(groupsRaw)
	if !ok {
		logger.Error("could not load groups")
		cr.GroupsFailed = true
		cr.Duration = time.Since(start)
		return cr
	}

	if s.catchAll == nil {
		s.catchAll = newCatchAll()
		s.groups = append(s.groups, s.catchAll)
	}
	for _, raw := range groups {
		var cat xtream.Category
		if err := json.Unmarshal(raw, &cat); err != nil {
			logger.Warn("skipping malformed group", slog.String("error", err.Error()))
			continue
		}
		g := newGroup(cat, class, raw)
		s.groups = append(s.groups, g)
		key := groupKey{class, g.ID}
		if _, exists := s.index[key]; !exists {
			s.index[key] = g
		}
		cr.Groups++
	}
	sort.SliceStable(s.groups, func(i, j int) bool {
		return s.groups[i].Name < s.groups[j].Name
	})
	logger.Info("loaded groups", slog.Int("count", cr.Groups), slog.Bool("from_cache", fromCache))

	streamsRaw, fromCache := s.fetch(ctx, cache.StreamsKey(string(class)), func(ctx context.Context) json.RawMessage {
		return s.client.Streams(ctx, class, "")
	})
	cr.StreamsFromCache = fromCache

	streams, ok := decodeList(streamsRaw)
	if !ok {
		logger.Error("could not load streams")
		cr.StreamsFailed = true
		cr.Duration = time.Since(start)
		return cr
	}

	for _, raw := range streams {
		s.addRecord(logger, class, raw, &cr)
	}

	if s.provider.HideAdult {
		logger.Info("skipped adult streams", slog.Int("count", cr.SkippedAdult))
	}
	if cr.SkippedNoName > 0 {
		logger.Info("skipped unnamed streams", slog.Int("count", cr.SkippedNoName))
	}
	logger.Info("loaded streams", slog.Int("count", cr.Streams), slog.Bool("from_cache", fromCache))

	cr.Duration = time.Since(start)
	return cr
}

// fetch reads key from the store, falling back to the provider and writing
// the fresh payload through.
func (s *Session) fetch(ctx context.Context, key string, remote func(context.Context) json.RawMessage) (json.RawMessage, bool) {
	if data, ok := s.store.Load(ctx, key); ok {
		return data, true
	}

	data := remote(ctx)
	if data == nil {
		return nil, false
	}
	if !s.store.Save(ctx, key, data) {
		s.logger.Warn("could not write cache snapshot", slog.String("key", key))
	}
	return data, false
}

func decodeList(data json.RawMessage) ([]json.RawMessage, bool) {
	if data == nil {
		return nil, false
	}
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, false
	}
	return list, true
}

// streamHeader holds the fields the skip policy and group resolution need.
type streamHeader struct {
	Name       xtream.FlexString `json:"name"`
	IsAdult    xtream.FlexInt    `json:"is_adult"`
	CategoryID xtream.FlexString `json:"category_id"`
}

func (s *Session) addRecord(logger *slog.Logger, class xtream.StreamClass, raw json.RawMessage, cr *ClassReport) {
	var hdr streamHeader
	if err := json.Unmarshal(raw, &hdr); err != nil {
		logger.Warn("rejecting malformed stream record", slog.String("error", err.Error()))
		cr.Rejected++
		return
	}

	switch {
	case hdr.Name == "":
		cr.SkippedNoName++
		s.audit.Record(raw)
		return
	case s.provider.HideAdult && class == xtream.ClassLive && hdr.IsAdult.Int() == 1:
		cr.SkippedAdult++
		s.audit.Record(raw)
		return
	}

	group := s.resolveGroup(class, hdr.CategoryID.String())

	if class == xtream.ClassSeries {
		var rec xtream.SeriesRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			logger.Warn("rejecting malformed series record", slog.String("error", err.Error()))
			cr.Rejected++
			return
		}
		serie := s.buildSerie(&rec, raw, group.ID)
		s.series = append(s.series, serie)
		group.Series = append(group.Series, serie)
		cr.Streams++
		return
	}

	var rec xtream.StreamRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		logger.Warn("rejecting malformed stream record", slog.String("error", err.Error()))
		cr.Rejected++
		return
	}
	ch, err := s.buildChannel(class, &rec, raw, group.ID)
	if err != nil {
		logger.Warn("rejecting stream",
			slog.String("name", rec.Name.String()),
			slog.String("error", err.Error()),
		)
		cr.Rejected++
		return
	}
	if group.IsCatchAll() {
		logger.Debug("stream has no group", slog.String("name", ch.Name), slog.String("kind", string(ch.Kind)))
	}

	if class == xtream.ClassLive {
		s.channels = append(s.channels, ch)
	} else {
		s.movies = append(s.movies, ch)
	}
	group.Channels = append(group.Channels, ch)
	cr.Streams++
}

// resolveGroup returns the first group of class with id, else the catch-all.
func (s *Session) resolveGroup(class xtream.StreamClass, id string) *Group {
	if id != "" {
		if g := s.lookupGroup(class, id); g != nil {
			return g
		}
	}
	return s.catchAll
}

// StreamsByCategory fetches the streams of one category directly from the
// provider. The result is not cached and not added to the catalog.
func (s *Session) StreamsByCategory(ctx context.Context, class xtream.StreamClass, categoryID string) (json.RawMessage, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	data := s.client.Streams(ctx, class, categoryID)
	if data == nil {
		return nil, fmt.Errorf("%w: %s streams of category %s", ErrNoData, class, categoryID)
	}
	return data, nil
}

func (s *Session) requireAuth() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticated {
		return ErrNotAuthenticated
	}
	return nil
}

package export

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/xtreamr/internal/catalog"
	"github.com/jmylchreest/xtreamr/internal/config"
	"github.com/jmylchreest/xtreamr/internal/database"
	"github.com/jmylchreest/xtreamr/internal/models"
	"github.com/jmylchreest/xtreamr/pkg/xtream"
)

type fakeSource struct {
	loaded   bool
	groups   []*catalog.Group
	channels []*catalog.Channel
	movies   []*catalog.Channel
	series   []*catalog.Serie
}

func (f *fakeSource) Provider() catalog.Provider { return catalog.Provider{Name: "acme"} }
func (f *fakeSource) Loaded() bool { return f.loaded }
func (f *fakeSource) Groups() []*catalog.Group { return f.groups }
func (f *fakeSource) Channels() []*catalog.Channel { return f.channels }
func (f *fakeSource) Movies() []*catalog.Channel { return f.movies }
func (f *fakeSource) Series() []*catalog.Serie { return f.series }
func (f *fakeSource) GroupTitle(class xtream.StreamClass, id string) string {
	for _, g := range f.groups {
		if g.ID == id && (g.Class == class || g.IsCatchAll()) {
			return g.Name
		}
	}
	return ""
}

func newFakeSource() *fakeSource {
	news := &catalog.Group{ID: "1", Name: "UK | News", Class: xtream.ClassLive, RegionShort: "UK", Raw: json.RawMessage(`{"category_id":"1"}`)}
	action := &catalog.Group{ID: "1", Name: "Action", Class: xtream.ClassVOD}
	drama := &catalog.Group{ID: "5", Name: "Drama", Class: xtream.ClassSeries}

	pilot := &catalog.Episode{ID: "9001", Title: "Pilot", Number: 1, Extension: "mkv", Info: json.RawMessage(`{"duration":"00:42:00"}`)}
	show := &catalog.Serie{
		ID: "301", Name: "Big Show", GroupID: "5",
		Seasons: map[string]*catalog.Season{
			"Season 1": {Name: "Season 1", Number: 1, Episodes: map[string]*catalog.Episode{"Pilot": pilot}},
		},
	}

	return &fakeSource{
		loaded: true,
		groups: []*catalog.Group{action, drama, news},
		channels: []*catalog.Channel{
			{ID: "101", Name: "BBC News", Class: xtream.ClassLive, Kind: xtream.KindLive, GroupID: "1", Extension: "ts", Added: time.Unix(1700000000, 0)},
			{ID: "101", Name: "BBC News HD", Class: xtream.ClassLive, Kind: xtream.KindLive, GroupID: "1", Extension: "ts"},
		},
		movies: []*catalog.Channel{
			{ID: "201", Name: "Big Movie", Class: xtream.ClassVOD, Kind: xtream.KindMovie, GroupID: "1", Extension: "mkv"},
		},
		series: []*catalog.Serie{show, {ID: "302", Name: "Undeepened"}},
	}
}

func setup(t *testing.T) (*Exporter, *database.DB) {
	t.Helper()
	db, err := database.New(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	exp, err := New(context.Background(), db, nil)
	require.NoError(t, err)
	return exp, db
}

func TestExport(t *testing.T) {
	exp, db := setup(t)
	src := newFakeSource()

	run, err := exp.Export(context.Background(), src, "01J0000000000000000000000")
	require.NoError(t, err)
	assert.False(t, run.ID.IsZero())
	assert.Equal(t, 3, run.Groups)
	assert.Equal(t, 2, run.Streams, "duplicate stream ids collapse to one row")
	assert.Equal(t, 2, run.Series)
	assert.Equal(t, 1, run.Episodes)

	var bbc models.CatalogStream
	require.NoError(t, db.DB.Where("provider = ? AND kind = ? AND provider_id = ?", "acme", "live", "101").First(&bbc).Error)
	assert.Equal(t, "BBC News HD", bbc.Name)
	assert.Equal(t, "UK | News", bbc.GroupTitle)

	var movie models.CatalogStream
	require.NoError(t, db.DB.Where("kind = ? AND provider_id = ?", "movie", "201").First(&movie).Error)
	assert.Equal(t, "Action", movie.GroupTitle)

	var groupCount int64
	require.NoError(t, db.DB.Model(&models.CatalogGroup{}).Where("provider_id = ?", "1").Count(&groupCount).Error)
	assert.Equal(t, int64(2), groupCount, "group ids are scoped by class")

	var ep models.CatalogEpisode
	require.NoError(t, db.DB.Where("provider_id = ?", "9001").First(&ep).Error)
	assert.Equal(t, "301", ep.SeriesID)
	assert.Equal(t, "Season 1", ep.Season)
	assert.JSONEq(t, `{"duration":"00:42:00"}`, ep.Info)
}

func TestExport_Upserts(t *testing.T) {
	exp, db := setup(t)
	src := newFakeSource()

	first, err := exp.Export(context.Background(), src, "")
	require.NoError(t, err)

	src.movies[0].Name = "Big Movie (2024)"
	second, err := exp.Export(context.Background(), src, "")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.DB.Model(&models.CatalogStream{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var movie models.CatalogStream
	require.NoError(t, db.DB.Where("provider_id = ?", "201").First(&movie).Error)
	assert.Equal(t, "Big Movie (2024)", movie.Name)

	var runs int64
	require.NoError(t, db.DB.Model(&models.ExportRun{}).Count(&runs).Error)
	assert.Equal(t, int64(2), runs)
}

func TestExport_NotLoaded(t *testing.T) {
	exp, _ := setup(t)
	src := newFakeSource()
	src.loaded = false

	_, err := exp.Export(context.Background(), src, "")
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestDedupe(t *testing.T) {
	type row struct{ k, v string }
	rows := []*row{{"a", "1"}, {"b", "2"}, {"a", "3"}}
	out := dedupe(rows, func(r *row) string { return r.k })
	require.Len(t, out, 2)
	assert.Equal(t, "3", out[0].v)
	assert.Equal(t, "2", out[1].v)
}

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/xtreamr/pkg/xmltv"
)

const testGuide = `<?xml version="1.0" encoding="UTF-8"?>
<tv>
  <channel id="bbc.uk"><display-name>BBC News</display-name></channel>
  <channel id="sport.eu"><display-name>Sport</display-name></channel>
  <programme start="20240115180000 +0000" stop="20240115190000 +0000" channel="bbc.uk"><title>News</title></programme>
  <programme start="20240115180000 +0000" stop="20240115190000 +0000" channel="sport.eu"><title>Match</title></programme>
</tv>`

func newPanel(t *testing.T) *httptest.Server {
	t.Helper()
	payloads := map[string]string{
		"":                      `{"user_info": {"username": "user", "password": "pass", "auth": 1}}`,
		"get_live_categories":   `[{"category_id": "1", "category_name": "UK | News"}]`,
		"get_live_streams":      `[{"name": "BBC News", "stream_type": "live", "stream_id": 101, "category_id": "1", "epg_channel_id": "bbc.uk"}]`,
		"get_vod_categories":    `[{"category_id": "2", "category_name": "Films"}]`,
		"get_vod_streams":       `[{"name": "Big Movie", "stream_type": "movie", "stream_id": 201, "category_id": "2", "container_extension": "mkv"}]`,
		"get_series_categories": `[{"category_id": "3", "category_name": "Drama"}]`,
		"get_series":            `[{"name": "Big Show", "series_id": 301, "category_id": "3"}]`,
		"get_series_info": `{"seasons": [{"name": "Season 1", "season_number": 1}],
			"episodes": {"1": [{"id": "9001", "episode_num": 1, "title": "Pilot", "container_extension": "mkv"}]}}`,
		"get_short_epg": `{"epg_listings": [{"title": "TmV3cw=="}]}`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/player_api.php":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(payloads[r.URL.Query().Get("action")]))
		case "/xmltv.php":
			w.Header().Set("Content-Type", "application/xml")
			_, _ = w.Write([]byte(testGuide))
		default:
			w.Header().Set("Content-Type", "video/x-matroska")
			_, _ = w.Write([]byte("0123456789"))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// run executes the root command with a configuration pointing at srv.
func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()

	cacheDir := t.TempDir()
	t.Setenv("XTREAMR_PROVIDER_NAME", "Acme")
	t.Setenv("XTREAMR_PROVIDER_URL", srv.URL)
	t.Setenv("XTREAMR_PROVIDER_USERNAME", "user")
	t.Setenv("XTREAMR_PROVIDER_PASSWORD", "pass")
	t.Setenv("XTREAMR_CACHE_DIR", cacheDir)
	t.Setenv("XTREAMR_HTTP_RETRY_ATTEMPTS", "0")
	t.Setenv("XTREAMR_HTTP_REQUESTS_PER_SECOND", "0")
	t.Setenv("XTREAMR_DOWNLOAD_MIN_FREE_SPACE", "0")

	cfgFile = ""
	searchJSON, searchCaseSensitive = false, false
	epgLimit, epgFull = 0, false
	xmltvChannels, xmltvOutput = nil, ""
	exportDeepen, downloadQuiet, versionJSON = false, false, false

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestVersionJSON(t *testing.T) {
	out, err := run(t, newPanel(t), "version", "--json")
	require.NoError(t, err)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
}

func TestConfigDump_MasksPassword(t *testing.T) {
	out, err := run(t, newPanel(t), "config", "dump")
	require.NoError(t, err)

	assert.Contains(t, out, "reload_threshold: 8h0m0s")
	assert.Contains(t, out, "chunk_size: 4.0 MiB")
	assert.Contains(t, out, redacted)
	assert.NotContains(t, out, "password: pass")
}

func TestLoad(t *testing.T) {
	textfile := filepath.Join(t.TempDir(), "xtreamr.prom")
	t.Setenv("XTREAMR_METRICS_TEXTFILE", textfile)

	out, err := run(t, newPanel(t), "load")
	require.NoError(t, err)

	assert.Contains(t, out, "CLASS")
	assert.Contains(t, out, "3 streams loaded")

	metrics, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "xtreamr_streams_loaded_total")
}

func TestLoad_MissingProvider(t *testing.T) {
	cfgFile = ""
	rootCmd.SetArgs([]string{"load"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider.url")
}

func TestSearchJSON(t *testing.T) {
	out, err := run(t, newPanel(t), "search", "big", "--json")
	require.NoError(t, err)

	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "Big Movie", results[0]["name"])
	assert.Equal(t, "Big Show", results[1]["name"])
}

func TestSearch_CaseSensitive(t *testing.T) {
	out, err := run(t, newPanel(t), "search", "big", "--case-sensitive")
	require.NoError(t, err)
	assert.Contains(t, out, "0 results")
}

func TestSeries(t *testing.T) {
	srv := newPanel(t)
	out, err := run(t, srv, "series", "301")
	require.NoError(t, err)

	assert.Contains(t, out, "Big Show (301)")
	assert.Contains(t, out, "Season 1")
	assert.Contains(t, out, "Pilot")
	assert.Contains(t, out, srv.URL+"/series/user/pass/9001.mkv")
}

func TestDownload(t *testing.T) {
	out, err := run(t, newPanel(t), "download", "201", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "big movie.mkv")
	assert.Contains(t, out, "10 B")
}

func TestEPG(t *testing.T) {
	out, err := run(t, newPanel(t), "epg", "101", "--limit", "4")
	require.NoError(t, err)
	assert.Contains(t, out, `"epg_listings"`)
}

func TestXMLTV_FilteredCompressedOutput(t *testing.T) {
	target := filepath.Join(t.TempDir(), "guide.xml.xz")

	_, err := run(t, newPanel(t), "xmltv", "--channel", "bbc.uk", "--output", target)
	require.NoError(t, err)

	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()

	header := make([]byte, 6)
	_, err = f.Read(header)
	require.NoError(t, err)
	assert.Equal(t, xmltv.XZ, xmltv.Detect(header))

	_, err = f.Seek(0, 0)
	require.NoError(t, err)
	channels, programmes, err := xmltv.ParseAll(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "bbc.uk", channels[0].ID)
	require.Len(t, programmes, 1)
	assert.Equal(t, "News", programmes[0].Title)
}

func TestXMLTV_Stdout(t *testing.T) {
	out, err := run(t, newPanel(t), "xmltv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `generator-info-name="xtreamr"`)
	assert.Contains(t, out, "sport.eu")
}

func TestExport(t *testing.T) {
	t.Setenv("XTREAMR_DATABASE_DSN", filepath.Join(t.TempDir(), "catalog.db"))

	out, err := run(t, newPanel(t), "export", "--deepen")
	require.NoError(t, err)
	assert.Contains(t, out, "exported 4 groups, 2 streams, 1 series, 1 episodes to sqlite")
}

func TestWarmOnce(t *testing.T) {
	_, err := run(t, newPanel(t), "warm", "--once")
	require.NoError(t, err)
}

package xtream

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	pathPlayerAPI = "/player_api.php"
	pathXMLTV     = "/xmltv.php"

	actionGetLiveCategories   = "get_live_categories"
	actionGetVODCategories    = "get_vod_categories"
	actionGetSeriesCategories = "get_series_categories"
	actionGetLiveStreams      = "get_live_streams"
	actionGetVODStreams       = "get_vod_streams"
	actionGetSeries           = "get_series"
	actionGetSeriesInfo       = "get_series_info"
	actionGetVODInfo          = "get_vod_info"
	actionGetShortEPG         = "get_short_epg"
	actionGetSimpleDataTable  = "get_simple_data_table"

	paramUsername   = "username"
	paramPassword   = "password"
	paramAction     = "action"
	paramCategoryID = "category_id"
	paramSeriesID   = "series_id"
	paramVODID      = "vod_id"
	paramStreamID   = "stream_id"
	paramLimit      = "limit"
)

// Credentials identify an account on a provider.
type Credentials struct {
	Username string
	Password string
}

// APIURL builds a player_api.php URL. An empty action yields the login URL.
// Extra params are appended in key order.
func APIURL(server string, creds Credentials, action string, params url.Values) string {
	var u strings.Builder
	u.WriteString(authURL(server, pathPlayerAPI, creds))

	if action != "" {
		u.WriteString("&" + paramAction + "=" + url.QueryEscape(action))
	}
	if len(params) > 0 {
		u.WriteString("&" + params.Encode())
	}
	return u.String()
}

// XMLTVURL builds the xmltv.php URL for the full EPG.
func XMLTVURL(server string, creds Credentials) string {
	return authURL(server, pathXMLTV, creds)
}

// StreamURL builds the playback URL {server}/{kind}/{user}/{pass}/{id}.{ext}.
func StreamURL(server string, kind StreamKind, creds Credentials, id, ext string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s.%s",
		trimServer(server), kind, creds.Username, creds.Password, id, ext)
}

func authURL(server, path string, creds Credentials) string {
	return fmt.Sprintf("%s%s?%s=%s&%s=%s",
		trimServer(server), path,
		paramUsername, url.QueryEscape(creds.Username),
		paramPassword, url.QueryEscape(creds.Password))
}

func trimServer(server string) string {
	return strings.TrimSuffix(server, "/")
}

// Package xtream provides a Go client for the Xtream Codes API.
//
// Xtream Codes is an IPTV panel system that exposes a query-string JSON API for
// live TV streams, video on demand (VOD), TV series and EPG data.
//
// # Basic Usage
//
//	transport := httpclient.NewWithDefaults()
//	client := xtream.NewClient("http://example.com:8080",
//		xtream.Credentials{Username: "user", Password: "pass"}, transport)
//
//	// Log in and read server and user info
//	info := client.Authenticate(ctx)
//
//	// Raw category and stream lists for a class
//	groups := client.Categories(ctx, xtream.ClassLive)
//	streams := client.Streams(ctx, xtream.ClassLive, "")
//
// API calls return the provider payload untouched (json.RawMessage) so that
// callers can cache it verbatim. A nil payload means the call failed; the
// transport logs the reason.
//
// # Stream URLs
//
//	url := xtream.StreamURL(server, xtream.KindLive, creds, "12345", "ts")
//	url := xtream.StreamURL(server, xtream.KindMovie, creds, "67890", "mkv")
//	url := xtream.StreamURL(server, xtream.KindSeries, creds, "11111", "mp4")
//
// # API Endpoints
//
//	{server}/player_api.php?username={user}&password={pass}&action={action}
//
// Available actions:
//   - (no action): server info and authentication status
//   - get_live_categories, get_vod_categories, get_series_categories
//   - get_live_streams, get_vod_streams, get_series (optional: category_id)
//   - get_series_info (required: series_id)
//   - get_vod_info (required: vod_id)
//   - get_short_epg (required: stream_id, optional: limit)
//   - get_simple_data_table (required: stream_id)
//
// Additional endpoints:
//   - {server}/xmltv.php?username={user}&password={pass}: full XMLTV EPG
//   - {server}/live/{user}/{pass}/{streamID}.{ext}: live stream
//   - {server}/movie/{user}/{pass}/{vodID}.{ext}: VOD stream
//   - {server}/series/{user}/{pass}/{episodeID}.{ext}: series episode
package xtream

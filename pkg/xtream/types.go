package xtream

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"time"
)

// AuthInfo is the login response. Both sections must be present for a login
// to count as successful.
type AuthInfo struct {
	UserInfo   *UserInfo   `json:"user_info"`
	ServerInfo *ServerInfo `json:"server_info"`
}

// Valid reports whether both user_info and server_info were returned.
func (a *AuthInfo) Valid() bool {
	return a != nil && a.UserInfo != nil && a.ServerInfo != nil
}

// UserInfo contains user account information.
type UserInfo struct {
	Username             FlexString `json:"username"`
	Password             FlexString `json:"password"`
	Message              string     `json:"message"`
	Auth                 FlexInt    `json:"auth"`
	Status               string     `json:"status"`
	ExpDate              FlexInt    `json:"exp_date"`
	IsTrial              FlexInt    `json:"is_trial"`
	ActiveConnections    FlexInt    `json:"active_cons"`
	CreatedAt            FlexInt    `json:"created_at"`
	MaxConnections       FlexInt    `json:"max_connections"`
	AllowedOutputFormats []string   `json:"allowed_output_formats"`
}

// IsActive returns true when the account is authorised and active.
func (u *UserInfo) IsActive() bool {
	return u.Auth.Int() == 1 && u.Status == "Active"
}

// ExpirationTime returns the account expiration time, zero when unlimited.
func (u *UserInfo) ExpirationTime() time.Time {
	if u.ExpDate.Int() == 0 {
		return time.Time{}
	}
	return time.Unix(u.ExpDate.Int(), 0)
}

// ServerInfo contains server configuration information.
type ServerInfo struct {
	URL            string     `json:"url"`
	Port           FlexString `json:"port"`
	HTTPSPort      FlexString `json:"https_port"`
	ServerProtocol string     `json:"server_protocol"`
	RTMPPort       FlexString `json:"rtmp_port"`
	Timezone       string     `json:"timezone"`
	TimestampNow   FlexInt    `json:"timestamp_now"`
	TimeNow        string     `json:"time_now"`
}

// SecureServer returns "https://<url>:<https_port>" when the provider
// advertises an HTTPS port, and "" otherwise.
func (s *ServerInfo) SecureServer() string {
	if s == nil || s.HTTPSPort == "" || s.URL == "" {
		return ""
	}
	return "https://" + s.URL + ":" + s.HTTPSPort.String()
}

// Category is one entry of a get_*_categories response.
type Category struct {
	CategoryID   FlexString `json:"category_id"`
	CategoryName FlexString `json:"category_name"`
	ParentID     FlexInt    `json:"parent_id"`
}

// StreamRecord is one entry of get_live_streams or get_vod_streams.
type StreamRecord struct {
	Num                FlexInt    `json:"num"`
	Name               FlexString `json:"name"`
	StreamType         FlexString `json:"stream_type"`
	StreamID           FlexString `json:"stream_id"`
	StreamIcon         FlexString `json:"stream_icon"`
	EPGChannelID       FlexString `json:"epg_channel_id"`
	Added              FlexString `json:"added"`
	IsAdult            FlexInt    `json:"is_adult"`
	CategoryID         FlexString `json:"category_id"`
	ContainerExtension FlexString `json:"container_extension"`
	Rating             FlexFloat  `json:"rating"`
	DirectSource       FlexString `json:"direct_source"`
}

// AddedTime returns the time the stream was added, zero when unknown.
func (s *StreamRecord) AddedTime() time.Time {
	n, err := strconv.ParseInt(s.Added.String(), 10, 64)
	if err != nil || n == 0 {
		return time.Time{}
	}
	return time.Unix(n, 0)
}

// SeriesRecord is one entry of get_series.
type SeriesRecord struct {
	Num            FlexInt    `json:"num"`
	Name           FlexString `json:"name"`
	SeriesID       FlexString `json:"series_id"`
	Cover          FlexString `json:"cover"`
	Plot           FlexString `json:"plot"`
	Cast           FlexString `json:"cast"`
	Director       FlexString `json:"director"`
	Genre          FlexString `json:"genre"`
	ReleaseDate    FlexString `json:"releaseDate"`
	LastModified   FlexString `json:"last_modified"`
	Rating         FlexFloat  `json:"rating"`
	YoutubeTrailer FlexString `json:"youtube_trailer"`
	CategoryID     FlexString `json:"category_id"`
	IsAdult        FlexInt    `json:"is_adult"`
}

// SeriesInfo is the get_series_info response. Episodes are kept raw so that
// callers can retain the provider record alongside the typed view.
type SeriesInfo struct {
	Seasons  SeasonList       `json:"seasons"`
	Info     json.RawMessage  `json:"info"`
	Episodes EpisodesBySeason `json:"episodes"`
}

// SeasonInfo describes one season of a series.
type SeasonInfo struct {
	AirDate      FlexString `json:"air_date"`
	EpisodeCount FlexInt    `json:"episode_count"`
	ID           FlexInt    `json:"id"`
	Name         FlexString `json:"name"`
	Overview     FlexString `json:"overview"`
	SeasonNumber FlexInt    `json:"season_number"`
	Cover        FlexString `json:"cover"`
}

// SeasonList accepts both the array form and the object-keyed form some
// panels emit for "seasons".
type SeasonList []SeasonInfo

// UnmarshalJSON implements json.Unmarshaler.
func (l *SeasonList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if data[0] == '{' {
		var keyed map[string]SeasonInfo
		if err := json.Unmarshal(data, &keyed); err != nil {
			return err
		}
		keys := make([]string, 0, len(keyed))
		for k := range keyed {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(SeasonList, 0, len(keyed))
		for _, k := range keys {
			out = append(out, keyed[k])
		}
		*l = out
		return nil
	}

	var list []SeasonInfo
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*l = list
	return nil
}

// EpisodesBySeason maps a season number (as the provider's string key) to the
// raw episode records of that season. An array of per-season arrays is
// accepted and keyed "1", "2", ... in order.
type EpisodesBySeason map[string][]json.RawMessage

// UnmarshalJSON implements json.Unmarshaler.
func (e *EpisodesBySeason) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*e = EpisodesBySeason{}
		return nil
	}

	if data[0] == '[' {
		var lists [][]json.RawMessage
		if err := json.Unmarshal(data, &lists); err != nil {
			return err
		}
		out := make(EpisodesBySeason, len(lists))
		for i, list := range lists {
			out[strconv.Itoa(i+1)] = list
		}
		*e = out
		return nil
	}

	var keyed map[string][]json.RawMessage
	if err := json.Unmarshal(data, &keyed); err != nil {
		return err
	}
	*e = keyed
	return nil
}

// Episode is one entry of SeriesInfo.Episodes.
type Episode struct {
	ID                 FlexString      `json:"id"`
	EpisodeNum         FlexInt         `json:"episode_num"`
	Title              FlexString      `json:"title"`
	ContainerExtension FlexString      `json:"container_extension"`
	Info               json.RawMessage `json:"info"`
	Added              FlexString      `json:"added"`
	Season             FlexInt         `json:"season"`
}

// EPGListing represents a single EPG entry.
type EPGListing struct {
	ID             FlexString `json:"id"`
	EPGID          FlexString `json:"epg_id"`
	Title          string     `json:"title"`
	Lang           string     `json:"lang"`
	Start          string     `json:"start"`
	End            string     `json:"end"`
	Description    string     `json:"description"`
	ChannelID      string     `json:"channel_id"`
	StartTimestamp FlexInt    `json:"start_timestamp"`
	StopTimestamp  FlexInt    `json:"stop_timestamp"`
	NowPlaying     FlexInt    `json:"now_playing"`
	HasArchive     FlexInt    `json:"has_archive"`
}

const epgTimeLayout = "2006-01-02 15:04:05"

// StartTime returns the programme start time.
func (e *EPGListing) StartTime() time.Time {
	if e.StartTimestamp.Int() > 0 {
		return time.Unix(e.StartTimestamp.Int(), 0)
	}
	if t, err := time.Parse(epgTimeLayout, e.Start); err == nil {
		return t
	}
	return time.Time{}
}

// EndTime returns the programme end time.
func (e *EPGListing) EndTime() time.Time {
	if e.StopTimestamp.Int() > 0 {
		return time.Unix(e.StopTimestamp.Int(), 0)
	}
	if t, err := time.Parse(epgTimeLayout, e.End); err == nil {
		return t
	}
	return time.Time{}
}

// EPGResponse wraps the EPG listings response. Titles and descriptions are
// base64 encoded by most panels and are left as received.
type EPGResponse struct {
	EPGListings []EPGListing `json:"epg_listings"`
}

// FlexInt handles JSON numbers that may be strings or integers.
type FlexInt int64

// Int returns the integer value.
func (f FlexInt) Int() int64 {
	return int64(f)
}

// UnmarshalJSON handles both string and number JSON values. Anything
// unparsable decodes to zero.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			*f = FlexInt(i)
			return nil
		}
		if fl, err := n.Float64(); err == nil {
			*f = FlexInt(int64(fl))
			return nil
		}
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			*f = FlexInt(i)
			return nil
		}
	}

	*f = 0
	return nil
}

// FlexFloat handles JSON numbers that may be strings or floats.
type FlexFloat float64

// Float returns the float value.
func (f FlexFloat) Float() float64 {
	return float64(f)
}

// UnmarshalJSON handles both string and number JSON values.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexFloat(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			*f = FlexFloat(v)
			return nil
		}
	}

	*f = 0
	return nil
}

// FlexString handles JSON values that may be strings or numbers.
// null and other shapes decode to "".
type FlexString string

// String returns the string value.
func (f FlexString) String() string {
	return string(f)
}

// UnmarshalJSON handles both string and number JSON values.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}

	*f = ""
	return nil
}

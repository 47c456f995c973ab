package xtream

import (
	"errors"
	"net/url"
	"testing"
)

func TestAPIURL(t *testing.T) {
	creds := Credentials{Username: "us er", Password: "p&ss"}

	got := APIURL("http://example.com:8080/", creds, "", nil)
	want := "http://example.com:8080/player_api.php?username=us+er&password=p%26ss"
	if got != want {
		t.Errorf("login url:\n got %s\nwant %s", got, want)
	}

	got = APIURL("http://example.com:8080", creds, "get_series", url.Values{"category_id": {"5"}})
	want = "http://example.com:8080/player_api.php?username=us+er&password=p%26ss&action=get_series&category_id=5"
	if got != want {
		t.Errorf("action url:\n got %s\nwant %s", got, want)
	}
}

func TestXMLTVURL(t *testing.T) {
	got := XMLTVURL("http://example.com", Credentials{Username: "u", Password: "p"})
	if got != "http://example.com/xmltv.php?username=u&password=p" {
		t.Errorf("unexpected xmltv url %s", got)
	}
}

func TestStreamURL(t *testing.T) {
	creds := Credentials{Username: "user", Password: "pass"}
	tests := []struct {
		kind StreamKind
		id   string
		ext  string
		want string
	}{
		{KindLive, "12345", "ts", "http://example.com:8080/live/user/pass/12345.ts"},
		{KindMovie, "67890", "mkv", "http://example.com:8080/movie/user/pass/67890.mkv"},
		{KindSeries, "11111", "mp4", "http://example.com:8080/series/user/pass/11111.mp4"},
	}

	for _, tt := range tests {
		if got := StreamURL("http://example.com:8080", tt.kind, creds, tt.id, tt.ext); got != tt.want {
			t.Errorf("StreamURL(%s) = %s, want %s", tt.kind, got, tt.want)
		}
	}
}

func TestNormalizeStreamType(t *testing.T) {
	tests := []struct {
		in   string
		want StreamKind
	}{
		{"live", KindLive},
		{"created_live", KindLive},
		{"radio_streams", KindLive},
		{"movie", KindMovie},
	}
	for _, tt := range tests {
		got, err := NormalizeStreamType(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("NormalizeStreamType(%q) = %q, %v", tt.in, got, err)
		}
	}

	for _, bad := range []string{"series", "", "LIVE"} {
		if _, err := NormalizeStreamType(bad); !errors.Is(err, ErrInvalidStreamType) {
			t.Errorf("NormalizeStreamType(%q) error = %v, want ErrInvalidStreamType", bad, err)
		}
	}
}

func TestParseStreamClass(t *testing.T) {
	if c, err := ParseStreamClass("vod"); err != nil || c != ClassVOD {
		t.Errorf("ParseStreamClass(vod) = %q, %v", c, err)
	}
	if _, err := ParseStreamClass("radio"); err == nil {
		t.Error("expected error for unknown class")
	}
}

func TestValidURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"http://iptv.example.com:8080/live/u/p/1.ts", true},
		{"HTTPS://IPTV.EXAMPLE.COM/logo.png", true},
		{"http://127.0.0.1:34567/movie/u/p/2.mkv", true},
		{"http://localhost/x", true},
		{"ftp://files.example.org/a", true},
		{"http://bücher.example/cover.jpg", true},
		{"http://example.com", true},
		{"", false},
		{"not a url", false},
		{"rtmp://example.com/live", false},
		{"http://exa mple.com/", false},
		{"http:///path-only", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ValidURL(tt.in); got != tt.want {
				t.Errorf("ValidURL(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

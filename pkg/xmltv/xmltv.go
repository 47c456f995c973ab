// Package xmltv reads, filters and writes XMLTV programme guides.
//
// Guides are processed as a stream: channels and programmes are handed to
// callbacks one element at a time, so a provider's full guide never has to
// fit in memory. Gzip, bzip2 and xz compressed input is detected from its
// magic bytes.
package xmltv

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// Channel is a channel definition.
type Channel struct {
	ID          string
	DisplayName string
	Icon        string
	URL         string
}

// Programme is a single guide entry.
type Programme struct {
	Channel     string
	Start       time.Time
	Stop        time.Time
	Title       string
	SubTitle    string
	Description string
	Credits     *Credits
	Category    string
	Language    string
	Icon        string
	EpisodeNum  string
	IsPremiere  bool
	IsNew       bool
	Rating      string
}

// Credits holds cast and crew.
type Credits struct {
	Directors  []string
	Actors     []string
	Writers    []string
	Producers  []string
	Presenters []string
}

const timeLayout = "20060102150405 -0700"

// ParseTime parses an XMLTV timestamp such as "20240115180000 +0100".
// Timestamps without an offset are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	for _, layout := range []string{timeLayout, "20060102150405-0700", "20060102150405", "200601021504", "20060102"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse time %q", s)
}

// FormatTime renders t in XMLTV form, keeping its offset.
func FormatTime(t time.Time) string {
	return t.Format(timeLayout)
}

// XML element shapes, with fields in the order the XMLTV DTD requires.

type xmlText struct {
	Lang  string `xml:"lang,attr,omitempty"`
	Value string `xml:",chardata"`
}

type xmlIcon struct {
	Src string `xml:"src,attr"`
}

type xmlChannel struct {
	XMLName      xml.Name  `xml:"channel"`
	ID           string    `xml:"id,attr"`
	DisplayNames []xmlText `xml:"display-name"`
	Icons        []xmlIcon `xml:"icon"`
	URLs         []string  `xml:"url"`
}

type xmlCredits struct {
	Directors  []string `xml:"director"`
	Actors     []string `xml:"actor"`
	Writers    []string `xml:"writer"`
	Producers  []string `xml:"producer"`
	Presenters []string `xml:"presenter"`
}

type xmlEpisodeNum struct {
	System string `xml:"system,attr,omitempty"`
	Value  string `xml:",chardata"`
}

type xmlRating struct {
	System string `xml:"system,attr,omitempty"`
	Value  string `xml:"value"`
}

type xmlProgramme struct {
	XMLName     xml.Name        `xml:"programme"`
	Start       string          `xml:"start,attr"`
	Stop        string          `xml:"stop,attr,omitempty"`
	Channel     string          `xml:"channel,attr"`
	Titles      []xmlText       `xml:"title"`
	SubTitles   []xmlText       `xml:"sub-title"`
	Descs       []xmlText       `xml:"desc"`
	Credits     *xmlCredits     `xml:"credits"`
	Categories  []xmlText       `xml:"category"`
	Language    *xmlText        `xml:"language"`
	Icons       []xmlIcon       `xml:"icon"`
	EpisodeNums []xmlEpisodeNum `xml:"episode-num"`
	Premiere    *xmlText        `xml:"premiere"`
	New         *struct{}       `xml:"new"`
	Ratings     []xmlRating     `xml:"rating"`
}

func firstText(values []xmlText) string {
	for _, v := range values {
		if s := strings.TrimSpace(v.Value); s != "" {
			return s
		}
	}
	return ""
}

func firstIcon(icons []xmlIcon) string {
	for _, i := range icons {
		if i.Src != "" {
			return i.Src
		}
	}
	return ""
}

func (x *xmlChannel) channel() *Channel {
	ch := &Channel{
		ID:          x.ID,
		DisplayName: firstText(x.DisplayNames),
		Icon:        firstIcon(x.Icons),
	}
	if len(x.URLs) > 0 {
		ch.URL = strings.TrimSpace(x.URLs[0])
	}
	return ch
}

func channelXML(ch *Channel) *xmlChannel {
	x := &xmlChannel{ID: ch.ID, DisplayNames: []xmlText{{Value: ch.DisplayName}}}
	if ch.Icon != "" {
		x.Icons = []xmlIcon{{Src: ch.Icon}}
	}
	if ch.URL != "" {
		x.URLs = []string{ch.URL}
	}
	return x
}

func (x *xmlProgramme) programme() (*Programme, error) {
	start, err := ParseTime(x.Start)
	if err != nil {
		return nil, fmt.Errorf("programme on %q: start: %w", x.Channel, err)
	}

	p := &Programme{
		Channel:     x.Channel,
		Start:       start,
		Title:       firstText(x.Titles),
		SubTitle:    firstText(x.SubTitles),
		Description: firstText(x.Descs),
		Category:    firstText(x.Categories),
		Icon:        firstIcon(x.Icons),
		IsPremiere:  x.Premiere != nil,
		IsNew:       x.New != nil,
	}
	if x.Stop != "" {
		if p.Stop, err = ParseTime(x.Stop); err != nil {
			return nil, fmt.Errorf("programme on %q: stop: %w", x.Channel, err)
		}
	}
	if x.Language != nil {
		p.Language = strings.TrimSpace(x.Language.Value)
	}
	for _, e := range x.EpisodeNums {
		if v := strings.TrimSpace(e.Value); v != "" {
			p.EpisodeNum = v
			break
		}
	}
	for _, r := range x.Ratings {
		if v := strings.TrimSpace(r.Value); v != "" {
			p.Rating = v
			break
		}
	}
	if c := x.Credits; c != nil {
		p.Credits = &Credits{
			Directors:  trimAll(c.Directors),
			Actors:     trimAll(c.Actors),
			Writers:    trimAll(c.Writers),
			Producers:  trimAll(c.Producers),
			Presenters: trimAll(c.Presenters),
		}
	}
	return p, nil
}

func programmeXML(p *Programme) *xmlProgramme {
	x := &xmlProgramme{
		Start:   FormatTime(p.Start),
		Channel: p.Channel,
		Titles:  []xmlText{{Lang: p.Language, Value: p.Title}},
	}
	if !p.Stop.IsZero() {
		x.Stop = FormatTime(p.Stop)
	}
	if p.SubTitle != "" {
		x.SubTitles = []xmlText{{Lang: p.Language, Value: p.SubTitle}}
	}
	if p.Description != "" {
		x.Descs = []xmlText{{Lang: p.Language, Value: p.Description}}
	}
	if c := p.Credits; c != nil {
		x.Credits = &xmlCredits{
			Directors:  c.Directors,
			Actors:     c.Actors,
			Writers:    c.Writers,
			Producers:  c.Producers,
			Presenters: c.Presenters,
		}
	}
	if p.Category != "" {
		x.Categories = []xmlText{{Lang: p.Language, Value: p.Category}}
	}
	if p.Language != "" {
		x.Language = &xmlText{Value: p.Language}
	}
	if p.Icon != "" {
		x.Icons = []xmlIcon{{Src: p.Icon}}
	}
	if p.EpisodeNum != "" {
		x.EpisodeNums = []xmlEpisodeNum{{System: "onscreen", Value: p.EpisodeNum}}
	}
	if p.IsPremiere {
		x.Premiere = &xmlText{}
	}
	if p.IsNew {
		x.New = &struct{}{}
	}
	if p.Rating != "" {
		x.Ratings = []xmlRating{{Value: p.Rating}}
	}
	return x
}

func trimAll(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

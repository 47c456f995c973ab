package xmltv

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestFilter_KeepsSelectedChannels(t *testing.T) {
	var out bytes.Buffer
	w := NewWriter(&out, "xtreamr")

	stats, err := Filter(context.Background(), w, strings.NewReader(sampleGuide), ChannelSet("BBC.uk "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := FilterStats{Channels: 1, Programmes: 1, DroppedChannels: 1, DroppedProgrammes: 1, Malformed: 1}
	if stats != want {
		t.Errorf("expected %+v, got %+v", want, stats)
	}
	if !strings.Contains(out.String(), `generator-info-name="xtreamr"`) {
		t.Errorf("expected generator in header:\n%s", out.String())
	}

	channels, programmes, err := ParseAll(context.Background(), &out)
	if err != nil {
		t.Fatalf("output does not parse: %v", err)
	}
	if len(channels) != 1 || channels[0].ID != "bbc.uk" {
		t.Fatalf("unexpected channels %+v", channels)
	}
	if len(programmes) != 1 {
		t.Fatalf("expected 1 programme, got %d", len(programmes))
	}

	news := programmes[0]
	if news.Title != "News at Six" || news.Rating != "TV-PG" || !news.IsNew {
		t.Errorf("programme not carried over: %+v", news)
	}
	if !news.Start.Equal(time.Date(2024, 1, 15, 17, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %v", news.Start)
	}
	if news.Credits == nil || len(news.Credits.Presenters) != 2 {
		t.Errorf("credits not carried over: %+v", news.Credits)
	}
}

func TestFilter_EmptySetKeepsEverything(t *testing.T) {
	var out bytes.Buffer
	stats, err := Filter(context.Background(), NewWriter(&out, ""), strings.NewReader(sampleGuide), ChannelSet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Channels != 2 || stats.Programmes != 2 || stats.DroppedChannels != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestWriter_ChannelAfterProgramme(t *testing.T) {
	var out bytes.Buffer
	w := NewWriter(&out, "")

	if err := w.WriteProgramme(&Programme{Channel: "a", Start: time.Now(), Title: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.WriteChannel(&Channel{ID: "a"}); !errors.Is(err, ErrChannelAfterProgramme) {
		t.Fatalf("expected ErrChannelAfterProgramme, got %v", err)
	}
}

func TestWriter_EmptyGuide(t *testing.T) {
	var out bytes.Buffer
	if err := NewWriter(&out, "").Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	channels, programmes, err := ParseAll(context.Background(), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(channels) != 0 || len(programmes) != 0 {
		t.Errorf("expected empty guide, got %d channels and %d programmes", len(channels), len(programmes))
	}
}

func TestWriter_EscapesText(t *testing.T) {
	var out bytes.Buffer
	w := NewWriter(&out, "")
	if err := w.WriteChannel(&Channel{ID: "a&b", DisplayName: "Tom <&> Jerry"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	channels, _, err := ParseAll(context.Background(), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(channels) != 1 || channels[0].ID != "a&b" || channels[0].DisplayName != "Tom <&> Jerry" {
		t.Errorf("unexpected channels %+v", channels)
	}
}

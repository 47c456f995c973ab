package xtream

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidStreamType is returned for a stream_type that is neither a live
// variant nor a movie.
var ErrInvalidStreamType = errors.New("invalid stream type")

// StreamClass is one of the three catalog sections a provider exposes.
// The string value is used in cache keys.
type StreamClass string

const (
	ClassLive   StreamClass = "Live"
	ClassVOD    StreamClass = "VOD"
	ClassSeries StreamClass = "Series"
)

// Classes lists the stream classes in load order.
var Classes = []StreamClass{ClassLive, ClassVOD, ClassSeries}

// ParseStreamClass accepts a class name case-insensitively.
func ParseStreamClass(s string) (StreamClass, error) {
	for _, c := range Classes {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown stream class %q", s)
}

func (c StreamClass) categoriesAction() string {
	switch c {
	case ClassLive:
		return actionGetLiveCategories
	case ClassVOD:
		return actionGetVODCategories
	case ClassSeries:
		return actionGetSeriesCategories
	default:
		return ""
	}
}

func (c StreamClass) streamsAction() string {
	switch c {
	case ClassLive:
		return actionGetLiveStreams
	case ClassVOD:
		return actionGetVODStreams
	case ClassSeries:
		return actionGetSeries
	default:
		return ""
	}
}

// StreamKind is the URL path segment of a playable item.
type StreamKind string

const (
	KindLive   StreamKind = "live"
	KindMovie  StreamKind = "movie"
	KindSeries StreamKind = "series"
)

// DefaultExtension returns the extension used when a record carries none.
func (k StreamKind) DefaultExtension() string {
	if k == KindLive {
		return "ts"
	}
	return ""
}

// NormalizeStreamType maps a provider stream_type to a channel kind.
// created_live and radio_streams are played like live streams.
func NormalizeStreamType(streamType string) (StreamKind, error) {
	switch streamType {
	case "live", "created_live", "radio_streams":
		return KindLive, nil
	case "movie":
		return KindMovie, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStreamType, streamType)
	}
}

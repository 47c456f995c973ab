package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// VODInfo returns the provider detail record of a movie.
func (s *Session) VODInfo(ctx context.Context, vodID string) (json.RawMessage, error) {
	return s.passthrough(func() json.RawMessage { return s.client.VODInfo(ctx, vodID) }, "vod info", vodID)
}

// ShortEPG returns the upcoming programmes of a live stream. A limit of zero
// or less leaves the count to the provider.
func (s *Session) ShortEPG(ctx context.Context, streamID string, limit int) (json.RawMessage, error) {
	return s.passthrough(func() json.RawMessage { return s.client.ShortEPG(ctx, streamID, limit) }, "short epg", streamID)
}

// FullEPG returns every programme the provider holds for a live stream.
func (s *Session) FullEPG(ctx context.Context, streamID string) (json.RawMessage, error) {
	return s.passthrough(func() json.RawMessage { return s.client.FullEPG(ctx, streamID) }, "full epg", streamID)
}

// SeriesInfo returns the raw get_series_info payload of a series.
func (s *Session) SeriesInfo(ctx context.Context, seriesID string) (json.RawMessage, error) {
	return s.passthrough(func() json.RawMessage { return s.client.SeriesInfo(ctx, seriesID) }, "series info", seriesID)
}

// XMLTVURL returns the URL of the provider's full XMLTV guide.
func (s *Session) XMLTVURL() string {
	return s.client.XMLTVURL()
}

// XMLTV opens the provider's full XMLTV guide. The caller must close it.
func (s *Session) XMLTV(ctx context.Context) (io.ReadCloser, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	return s.client.XMLTV(ctx)
}

func (s *Session) passthrough(call func() json.RawMessage, what, id string) (json.RawMessage, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	data := call()
	if data == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrNoData, what, id)
	}
	return data, nil
}

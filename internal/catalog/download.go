package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/xtreamr/internal/download"
	"github.com/jmylchreest/xtreamr/internal/storage"
)

// DownloadVideo stores the movie with streamID in the cache directory as
// <slug(name)>.<ext> and returns the file path. An existing file is returned
// without contacting the provider.
func (s *Session) DownloadVideo(ctx context.Context, streamID string) (string, error) {
	path, _, err := s.DownloadVideoResult(ctx, streamID)
	return path, err
}

// DownloadVideoResult is DownloadVideo that also returns the transfer details.
// The result is nil when the file already existed.
func (s *Session) DownloadVideoResult(ctx context.Context, streamID string) (string, *download.Result, error) {
	movie := s.Movie(streamID)
	if movie == nil {
		return "", nil, fmt.Errorf("%w: %s", ErrStreamNotFound, streamID)
	}

	name := storage.Slugify(movie.Name) + "." + movie.Extension
	path, err := s.sandbox.ResolvePath(name)
	if err != nil {
		return "", nil, err
	}

	exists, err := s.sandbox.Exists(name)
	if err != nil {
		return "", nil, err
	}
	if exists {
		s.logger.Info("video already downloaded", slog.String("path", path))
		return path, nil, nil
	}

	result, err := s.downloader.Fetch(ctx, movie.URL, name)
	if err != nil {
		return "", nil, fmt.Errorf("downloading %s: %w", movie.Name, err)
	}
	return result.Path, result, nil
}

package catalog

import (
	"errors"

	"github.com/jmylchreest/xtreamr/internal/download"
	"github.com/jmylchreest/xtreamr/pkg/xtream"
)

// Sentinel errors returned by Session operations.
var (
	ErrAuthenticationFailed  = errors.New("authentication failed")
	ErrNotAuthenticated      = errors.New("session is not authenticated")
	ErrAlreadyLoaded         = errors.New("catalog already loaded")
	ErrStreamNotFound        = errors.New("stream not found")
	ErrSeriesInfoUnavailable = errors.New("series info unavailable")
	ErrNoData                = errors.New("provider returned no data")

	ErrInvalidStreamType     = xtream.ErrInvalidStreamType
	ErrShortDownload         = download.ErrShortDownload
	ErrUnexpectedContentType = download.ErrUnexpectedContentType
	ErrInsufficientSpace     = download.ErrInsufficientSpace
)

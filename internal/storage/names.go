package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// DefaultCacheDirName is created under the user's home directory when the
// configured cache directory is unusable.
const DefaultCacheDirName = ".xtream-cache"

var lower = cases.Lower(language.Und)

// Slugify renders a display name as a file-name fragment: NFC-normalized,
// lower-cased, with non-printable runes dropped. Path separators are replaced
// with underscores so a slug always names a single file.
func Slugify(name string) string {
	folded := lower.String(norm.NFC.String(name))
	return strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case !unicode.IsPrint(r):
			return -1
		default:
			return r
		}
	}, folded)
}

// ScopedName returns the cache file name for a provider-scoped key.
func ScopedName(provider, key string) string {
	return fmt.Sprintf("%s-%s", Slugify(provider), key)
}

// URLBaseName returns the last path element of a URL or file path.
func URLBaseName(rawURL string) string {
	trimmed := rawURL
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	return path.Base(trimmed)
}

// ResolveCacheDir returns the directory to use for cache files. An empty value,
// or a path that exists but is not a directory, falls back to ~/.xtream-cache.
// A path that does not exist yet is used as-is and created by NewSandbox.
func ResolveCacheDir(dir string) (string, error) {
	if dir != "" {
		info, err := os.Stat(dir)
		switch {
		case err == nil && info.IsDir():
			return dir, nil
		case errors.Is(err, fs.ErrNotExist):
			return dir, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, DefaultCacheDirName), nil
}

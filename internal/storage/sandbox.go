// Package storage provides sandboxed file operations for the xtreamr cache directory.
// All file operations are restricted to the sandbox root so that names derived
// from provider data can never escape it.
package storage

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrEscapesSandbox is returned when a relative path resolves outside the sandbox.
var ErrEscapesSandbox = errors.New("path escapes sandbox")

// Sandbox provides file operations within a base directory.
type Sandbox struct {
	baseDir string
}

// NewSandbox creates a Sandbox rooted at baseDir, creating it if needed.
func NewSandbox(baseDir string) (*Sandbox, error) {
	absPath, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}

	if err := os.MkdirAll(absPath, 0o750); err != nil {
		return nil, fmt.Errorf("creating base directory: %w", err)
	}

	return &Sandbox{baseDir: absPath}, nil
}

// BaseDir returns the absolute path to the sandbox root.
func (s *Sandbox) BaseDir() string {
	return s.baseDir
}

// ResolvePath resolves a relative path within the sandbox.
func (s *Sandbox) ResolvePath(relativePath string) (string, error) {
	if filepath.IsAbs(relativePath) {
		return "", fmt.Errorf("%w: %s (absolute paths not allowed)", ErrEscapesSandbox, relativePath)
	}

	absPath := filepath.Join(s.baseDir, filepath.Clean(relativePath))
	if absPath != s.baseDir && !strings.HasPrefix(absPath, s.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrEscapesSandbox, relativePath)
	}

	return absPath, nil
}

// Exists reports whether a regular file or directory exists at the path.
func (s *Sandbox) Exists(relativePath string) (bool, error) {
	path, err := s.ResolvePath(relativePath)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking path: %w", err)
	}
	return true, nil
}

// Stat returns file info for a path within the sandbox.
func (s *Sandbox) Stat(relativePath string) (os.FileInfo, error) {
	path, err := s.ResolvePath(relativePath)
	if err != nil {
		return nil, err
	}
	return os.Stat(path)
}

// ReadFile reads a file from within the sandbox.
func (s *Sandbox) ReadFile(relativePath string) ([]byte, error) {
	path, err := s.ResolvePath(relativePath)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// AtomicWrite writes data to a temporary sibling and renames it over the target,
// so readers observe either the previous content or the new one.
func (s *Sandbox) AtomicWrite(relativePath string, data []byte) error {
	targetPath, err := s.ResolvePath(relativePath)
	if err != nil {
		return err
	}

	dir := filepath.Dir(targetPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	tempPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(targetPath), randomHex(8)))
	if err := os.WriteFile(tempPath, data, 0o640); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temporary file: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming to target: %w", err)
	}
	return nil
}

// Append opens the file in append mode (creating it) and writes data in one call.
func (s *Sandbox) Append(relativePath string, data []byte) error {
	path, err := s.ResolvePath(relativePath)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}

	_, err = f.Write(data)
	closeErr := f.Close()
	if err != nil {
		return fmt.Errorf("appending: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("closing file: %w", closeErr)
	}
	return nil
}

// CreateTemp creates a hidden temporary file next to relativePath.
// The caller owns the returned file and must close and remove or rename it.
func (s *Sandbox) CreateTemp(relativePath string) (*os.File, error) {
	path, err := s.ResolvePath(relativePath)
	if err != nil {
		return nil, err
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.part")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	return f, nil
}

// Publish renames an absolute path (normally from CreateTemp) into the sandbox.
func (s *Sandbox) Publish(srcAbsPath, relativePath string) error {
	targetPath, err := s.ResolvePath(relativePath)
	if err != nil {
		return err
	}
	if err := os.Rename(srcAbsPath, targetPath); err != nil {
		return fmt.Errorf("renaming to target: %w", err)
	}
	return nil
}

// Remove removes a file within the sandbox. Missing files are not an error.
func (s *Sandbox) Remove(relativePath string) error {
	path, err := s.ResolvePath(relativePath)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing path: %w", err)
	}
	return nil
}

func randomHex(n int) string {
	b := make([]byte, n/2+1)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", os.Getpid())
	}
	return hex.EncodeToString(b)[:n]
}

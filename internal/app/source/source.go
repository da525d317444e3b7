package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/francois-poidevin/sondetracker/internal/app"
	"github.com/spf13/afero"
)

// ErrUnavailable is returned when the source cannot be listed at all
// (missing, not a directory, access denied).
var ErrUnavailable = errors.New("source unavailable")

// FileStat - what a poll needs to know about a file before reading it
type FileStat struct {
	Name       string
	ModifiedAt time.Time
}

// FileHandle is one candidate log file of a source.
type FileHandle interface {
	Name() string
	Stat(ctx context.Context) (FileStat, error)
	ReadText(ctx context.Context) (string, error)
}

// Source is a live, enumerable collection of .log files.
type Source interface {
	List(ctx context.Context) ([]FileHandle, error)
	String() string
}

// Open selects a source from a user supplied location: a directory, or a comma
// separated list of files.
func Open(fs afero.Fs, location string) (Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%w: empty source", ErrUnavailable)
	}

	if strings.Contains(location, ",") {
		return NewFiles(fs, strings.Split(location, ",")), nil
	}

	fi, err := fs.Stat(location)
	if err != nil {
		return nil, unavailable(location, err)
	}
	if !fi.IsDir() {
		return NewFiles(fs, []string{location}), nil
	}
	return NewDir(fs, location), nil
}

//Dir - every .log file directly inside a directory
type Dir struct {
	fs   afero.Fs
	path string
}

func NewDir(fs afero.Fs, path string) *Dir {
	return &Dir{fs: fs, path: path}
}

func (d *Dir) String() string {
	return d.path
}

// List returns the .log files of the directory, sorted by name.
func (d *Dir) List(ctx context.Context) ([]FileHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := afero.ReadDir(d.fs, d.path)
	if err != nil {
		return nil, unavailable(d.path, err)
	}

	var result []FileHandle
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), app.LogExtension) {
			continue
		}
		result = append(result, &fileHandle{
			fs:   d.fs,
			path: filepath.Join(d.path, e.Name()),
			name: e.Name(),
		})
	}
	return result, nil
}

//Files - an explicit set of files
type Files struct {
	fs    afero.Fs
	paths []string
}

func NewFiles(fs afero.Fs, paths []string) *Files {
	var kept []string
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p != "" {
			kept = append(kept, p)
		}
	}
	return &Files{fs: fs, paths: kept}
}

func (f *Files) String() string {
	return strings.Join(f.paths, ",")
}

// List returns a handle per configured path with the .log extension.
// Handles are named by base name, like Dir entries, so a file keeps its
// flight whichever way it was selected; a later path repeating a base name
// is ignored. Missing files surface later, as per-file errors.
func (f *Files) List(ctx context.Context) ([]FileHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result []FileHandle
	seen := map[string]bool{}
	for _, p := range f.paths {
		if !strings.HasSuffix(p, app.LogExtension) {
			continue
		}
		name := filepath.Base(p)
		if seen[name] {
			continue
		}
		seen[name] = true
		result = append(result, &fileHandle{fs: f.fs, path: filepath.Clean(p), name: name})
	}
	return result, nil
}

type fileHandle struct {
	fs   afero.Fs
	path string
	name string
}

func (h *fileHandle) Name() string {
	return h.name
}

func (h *fileHandle) Stat(ctx context.Context) (FileStat, error) {
	if err := ctx.Err(); err != nil {
		return FileStat{}, err
	}
	fi, err := h.fs.Stat(h.path)
	if err != nil {
		return FileStat{}, fmt.Errorf("stat %s: %w", h.path, err)
	}
	return FileStat{Name: h.name, ModifiedAt: fi.ModTime()}, nil
}

func (h *fileHandle) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := afero.ReadFile(h.fs, h.path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", h.path, err)
	}
	return string(b), nil
}

func unavailable(path string, err error) error {
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
	}
	return fmt.Errorf("list %s: %w", path, err)
}

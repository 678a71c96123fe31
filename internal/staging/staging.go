// Package staging materializes the temporary files that back a drag.
//
// Every staged file lives in its own directory, <dir>/<prefix><uuid>/<name>,
// so the drop target sees the original file name. Remove deletes the file and
// its directory once the drag is over; Sweep clears leftovers from drags that
// never finished.
package staging

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/justyntemme/dragexport/internal/debug"
)

// DefaultPrefix marks directories created by a Stager.
const DefaultPrefix = "dragexport-"

// Common file permission modes
const (
	DirPermission  = 0o755
	FilePermission = 0o644
)

var (
	ErrOutsideStaging  = errors.New("path is not a staged file")
	ErrHEICUnsupported = errors.New("HEIC decoding not supported on this platform")
)

// Stager creates and removes staged files under one directory.
type Stager struct {
	dir    string
	prefix string
}

// New returns a Stager rooted at dir, creating it if needed. An empty dir
// means <os temp dir>/dragexport.
func New(dir, prefix string) (*Stager, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "dragexport")
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, DirPermission); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Stager{dir: abs, prefix: prefix}, nil
}

// Dir returns the staging root.
func (s *Stager) Dir() string { return s.dir }

func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "drag"
	}
	return name
}

// create opens a new staged file for name.
func (s *Stager) create(name string) (*os.File, error) {
	sub := filepath.Join(s.dir, s.prefix+uuid.NewString())
	if err := os.Mkdir(sub, DirPermission); err != nil {
		return nil, fmt.Errorf("create staging slot: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(sub, sanitizeName(name)), os.O_WRONLY|os.O_CREATE|os.O_EXCL, FilePermission)
	if err != nil {
		os.Remove(sub)
		return nil, err
	}
	return f, nil
}

// Stage copies r into a new staged file called name and returns its path.
func (s *Stager) Stage(r io.Reader, name string) (string, error) {
	f, err := s.create(name)
	if err != nil {
		return "", err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		s.Remove(f.Name())
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	debug.Log(debug.STAGING, "staged %s (%s)", f.Name(), humanize.Bytes(uint64(n)))
	return f.Name(), nil
}

// StageFile copies an existing file into staging, so the drag can delete
// the copy without touching the original.
func (s *Stager) StageFile(src string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()
	return s.Stage(in, filepath.Base(src))
}

// StageImage encodes img as PNG into a staged file. The extension of name is
// replaced with .png.
func (s *Stager) StageImage(img image.Image, name string) (string, error) {
	name = sanitizeName(name)
	name = strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(png.Encode(pw, img))
	}()
	path, err := s.Stage(pr, name)
	pr.Close()
	return path, err
}

// Remove deletes a staged file and then its slot directory. Only the file
// deletion is reported, and a slot left behind is picked up by Sweep.
func (s *Stager) Remove(path string) error {
	slot := filepath.Dir(path)
	if filepath.Dir(slot) != s.dir || !strings.HasPrefix(filepath.Base(slot), s.prefix) {
		return fmt.Errorf("%s: %w", path, ErrOutsideStaging)
	}
	err := os.Remove(path)
	if err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return err
	}
	// A move target may already have taken the file; the slot still goes.
	if serr := os.Remove(slot); serr != nil && !errors.Is(serr, iofs.ErrNotExist) {
		debug.Log(debug.STAGING, "slot %s kept: %v", slot, serr)
	}
	return err
}

// Sweep deletes staging slots older than maxAge and returns how many it removed.
func (s *Stager) Sweep(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)

	var stale []string
	var mu sync.Mutex

	conf := &fastwalk.Config{Follow: false}
	err := fastwalk.Walk(conf, s.dir, func(fullPath string, d iofs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors, continue walking
		}
		if fullPath == s.dir {
			return nil
		}
		if filepath.Dir(fullPath) != s.dir || !strings.HasPrefix(d.Name(), s.prefix) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		info, err := fastwalk.StatDirEntry(fullPath, d)
		if err == nil && info.ModTime().Before(cutoff) {
			mu.Lock()
			stale = append(stale, fullPath)
			mu.Unlock()
		}
		if d.IsDir() {
			return fastwalk.SkipDir
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("sweep %s: %w", s.dir, err)
	}

	removed := 0
	for _, p := range stale {
		if err := os.RemoveAll(p); err != nil {
			debug.Warn(debug.STAGING, "sweep could not remove %s: %v", p, err)
			continue
		}
		removed++
	}
	debug.Log(debug.STAGING, "sweep removed %d of %d stale slots in %s", removed, len(stale), s.dir)
	return removed, nil
}

// Package imagestore implements ports.ImageStore on a single directory.
//
// The store owns the "most recently captured image" notion: SaveLast
// records an explicit handle that Resolve maps the LAST sentinel to, and a
// filesystem watcher keeps the notion current when another process drops
// images into the directory.
package imagestore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/altiplano-labs/camlink/internal/domain"
	"github.com/altiplano-labs/camlink/internal/ports"
)

const lastImageName = "last.jpg"

// Store keeps captured and received images in one directory.
type Store struct {
	mu      sync.RWMutex
	dir     string
	last    string
	logger  ports.Logger
	watcher *fsnotify.Watcher
}

// New creates a store rooted at dir, creating it if needed. An existing
// last.jpg from a previous run is picked up as the current capture.
func New(dir string, logger ports.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	s := &Store{dir: dir, logger: logger}

	lastPath := filepath.Join(dir, lastImageName)
	if _, err := os.Stat(lastPath); err == nil {
		s.last = lastPath
	}
	return s, nil
}

// Watch starts tracking images written into the directory by other
// processes, so they too become resolvable as LAST. Close stops it.
func (s *Store) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(s.dir); err != nil {
		w.Close()
		return err
	}
	s.watcher = w
	go s.watchLoop()
	return nil
}

func (s *Store) watchLoop() {
	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isImage(ev.Name) {
				continue
			}
			s.setLast(ev.Name)
			s.logger.Debug("tracking new image", ports.String("path", ev.Name))
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("image watcher error", ports.Err(err))
		}
	}
}

// Close stops the watcher if one is running.
func (s *Store) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// SaveLast stores data as the most recent capture and returns its handle.
// The write is atomic (temp file, then rename) so a concurrent Resolve
// never sees a torn image.
func (s *Store) SaveLast(data []byte) (string, error) {
	path := filepath.Join(s.dir, lastImageName)
	if err := writeAtomic(path, data); err != nil {
		return "", err
	}
	s.setLast(path)
	return path, nil
}

// Resolve maps a requested path to a concrete handle. The LAST sentinel
// resolves to the most recent capture.
func (s *Store) Resolve(path string) (string, error) {
	if path == domain.PathLast {
		s.mu.RLock()
		last := s.last
		s.mu.RUnlock()
		if last == "" {
			return "", fmt.Errorf("no image captured yet")
		}
		path = last
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return path, nil
}

// Load reads the bytes behind a handle.
func (s *Store) Load(handle string) ([]byte, error) {
	return os.ReadFile(handle)
}

// SaveReceived stores a received payload. An empty path picks a
// timestamped name inside the store directory.
func (s *Store) SaveReceived(data []byte, path string) (string, error) {
	if path == "" {
		name := fmt.Sprintf("imagen%s.jpg", time.Now().Format("20060102_150405"))
		path = filepath.Join(s.dir, name)
	}
	if err := writeAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Store) setLast(path string) {
	s.mu.Lock()
	s.last = path
	s.mu.Unlock()
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func isImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return true
	default:
		return false
	}
}

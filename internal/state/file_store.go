package state

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"visionhelp/internal/logging"
)

const watchDebounce = 100 * time.Millisecond

// FileStore persists each key as a small file under a state directory.
// Writes go through a temp file + rename so concurrent readers never observe
// a partial value. Watch uses fsnotify, which is how role changes made by
// another engine process reach this one.
type FileStore struct {
	dir    string
	logger logging.Logger
}

// FileStoreOption customizes a FileStore.
type FileStoreOption func(*FileStore)

// WithFileStoreLogger sets the logger for watch diagnostics.
func WithFileStoreLogger(logger logging.Logger) FileStoreOption {
	return func(s *FileStore) {
		s.logger = logging.OrNop(logger)
	}
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string, opts ...FileStoreOption) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("state dir required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	store := &FileStore{dir: dir, logger: logging.Nop()}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key)
}

// Get reads the value for key, returning ErrNotFound when absent.
func (s *FileStore) Get(key string) (string, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Set writes the value for key atomically.
func (s *FileStore) Set(key, value string) error {
	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Watch observes external changes to key's file. Events are debounced because
// a rename-based write surfaces as several filesystem events.
func (s *FileStore) Watch(key string, fn func(value string)) (io.Closer, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", key, err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", key, err)
	}

	w := &fileWatch{
		watcher: watcher,
		done:    make(chan struct{}),
	}
	target := s.path(key)

	go func() {
		var timer *time.Timer
		fire := func() {
			value, err := s.Get(key)
			if err != nil {
				s.logger.Warn("state watch: reread %s failed: %v", key, err)
				return
			}
			fn(value)
		}
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, fire)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("state watch: %v", err)
			case <-w.done:
				if timer != nil {
					timer.Stop()
				}
				return
			}
		}
	}()

	return w, nil
}

type fileWatch struct {
	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
}

func (w *fileWatch) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

var _ Store = (*FileStore)(nil)

package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/erwait-dashboard-tui/internal/logger"
	"github.com/j-veylop/erwait-dashboard-tui/internal/models"
)

const debounceInterval = 100 * time.Millisecond

// recordsFile is the on-disk layout read by FileSource.
type recordsFile struct {
	Permanence            json.RawMessage `json:"permanence"`
	SeverityAndPermanence json.RawMessage `json:"severityAndPermanence"`
}

// FileSource reads both record lists from a local JSON file.
type FileSource struct {
	path string

	mu            sync.Mutex
	watcher       *fsnotify.Watcher
	debounceTimer *time.Timer
	changes       chan struct{}
	stopChan      chan struct{}
	closeOnce     sync.Once
}

// NewFileSource creates a source for the file at path. The file is read on every fetch.
func NewFileSource(path string) *FileSource {
	return &FileSource{
		path:     path,
		changes:  make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}
}

// Path returns the watched file path.
func (s *FileSource) Path() string {
	return s.path
}

// FetchPermanence reads the "permanence" list.
func (s *FileSource) FetchPermanence(ctx context.Context) (Batch[models.WaitRecord], error) {
	raw, err := s.read(ctx, EndpointPermanence)
	if err != nil {
		return Batch[models.WaitRecord]{}, err
	}

	records, degraded := toWaitRecords(raw)
	logDegraded(EndpointPermanence, degraded, len(records))
	return Batch[models.WaitRecord]{Records: records, Degraded: degraded}, nil
}

// FetchSeverity reads the "severityAndPermanence" list.
func (s *FileSource) FetchSeverity(ctx context.Context) (Batch[models.SeverityRecord], error) {
	raw, err := s.read(ctx, EndpointSeverity)
	if err != nil {
		return Batch[models.SeverityRecord]{}, err
	}

	records, degraded := toSeverityRecords(raw)
	logDegraded(EndpointSeverity, degraded, len(records))
	return Batch[models.SeverityRecord]{Records: records, Degraded: degraded}, nil
}

func (s *FileSource) read(ctx context.Context, endpoint string) ([]rawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}

	var file recordsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse records file: %w", err)
	}

	section := file.Permanence
	if endpoint == EndpointSeverity {
		section = file.SeverityAndPermanence
	}
	// A missing section is an empty list.
	if len(section) == 0 || string(section) == "null" {
		return nil, nil
	}

	raw, err := decodeRecords(section)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	return raw, nil
}

// Watch starts watching the file for changes. Signals arrive on Changes.
func (s *FileSource) Watch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory so editors that replace the file are still seen.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	s.watcher = watcher
	go s.watchLoop(watcher)
	return nil
}

// Changes delivers one signal per debounced burst of writes to the file.
func (s *FileSource) Changes() <-chan struct{} {
	return s.changes
}

func (s *FileSource) watchLoop(watcher *fsnotify.Watcher) {
	base := filepath.Base(s.path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			s.mu.Lock()
			if s.debounceTimer != nil {
				s.debounceTimer.Stop()
			}
			s.debounceTimer = time.AfterFunc(debounceInterval, s.signal)
			s.mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("records file watcher error", "path", s.path, "error", err)

		case <-s.stopChan:
			return
		}
	}
}

// signal never blocks; a pending signal already covers this change.
func (s *FileSource) signal() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// Close stops the watcher.
func (s *FileSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}

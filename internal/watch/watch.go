// Package watch ingests captures dropped into the capture directory.
//
// The watcher reacts to fsnotify create and write events on *.log and
// *.log.zst files, waits until a file has been quiet for the debounce window
// and hands it to the processor. Files already present when the watcher
// starts are processed on the first tick.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/samiBendou/sca-automation/internal/capture"
	"github.com/samiBendou/sca-automation/internal/ingest"
	"github.com/samiBendou/sca-automation/internal/logging"
)

const (
	defaultDebounce = 500 * time.Millisecond
	tickInterval    = 100 * time.Millisecond
)

// Processor ingests one capture file.
type Processor interface {
	IngestCapture(ctx context.Context, path string) (*ingest.Outcome, error)
}

// Stats counts watcher activity.
type Stats struct {
	Events   int
	Ingested int
	Skipped  int
	Failed   int
	LastPath string
	LastRun  string
}

// Watcher watches one directory for captures.
type Watcher struct {
	mu        sync.RWMutex
	watcher   *fsnotify.Watcher
	dir       string
	processor Processor
	logger    *slog.Logger
	debounce  time.Duration
	pending   map[string]time.Time
	stopCh    chan struct{}
	doneCh    chan struct{}
	running   bool
	stats     Stats
}

// New creates a watcher of dir. A zero debounce uses 500ms.
func New(dir string, processor Processor, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		watcher:   fw,
		dir:       dir,
		processor: processor,
		logger:    logging.ForComponent(logger, "watch"),
		debounce:  debounce,
		pending:   make(map[string]time.Time),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}, nil
}

// Start begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.prepare(); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.logger.Info("watching captures", logging.String(logging.FieldPath, w.dir))

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("close watcher", logging.Error(err))
	}
	w.logger.Info("watcher stopped")
}

// Run starts the watcher and blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	w.Stop()
	return nil
}

// Stats returns a snapshot of the counters.
func (w *Watcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *Watcher) prepare() error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create capture dir: %w", err)
	}
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	return w.queueExisting()
}

func (w *Watcher) queueExisting() error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("scan capture dir: %w", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, entry := range entries {
		if entry.IsDir() || !capture.IsCapture(entry.Name()) {
			continue
		}
		w.pending[filepath.Join(w.dir, entry.Name())] = time.Time{}
	}
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", logging.Error(err))
		case <-ticker.C:
			w.processSettled(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !capture.IsCapture(filepath.Base(event.Name)) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.Events++
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		w.pending[event.Name] = time.Now()
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		delete(w.pending, event.Name)
	}
}

func (w *Watcher) processSettled(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			settled = append(settled, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		w.process(ctx, path)
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	log := w.logger.With(logging.String(logging.FieldPath, path))
	out, err := w.processor.IngestCapture(ctx, path)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.LastPath = path
	if out != nil && out.Run != nil {
		w.stats.LastRun = out.Run.ID
	}
	switch {
	case err == nil:
		w.stats.Ingested++
	case errors.Is(err, ingest.ErrAlreadyIngested):
		w.stats.Skipped++
		log.Debug("capture skipped", logging.Error(err))
	case errors.Is(err, os.ErrNotExist):
		w.stats.Skipped++
	default:
		w.stats.Failed++
		logging.Warn(log, "watch_ingest_failed", "rewrite the capture to retry", "capture not ingested",
			logging.Error(err),
		)
	}
}

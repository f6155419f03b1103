package analyzer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultReloadDebounce = 500 * time.Millisecond

// Watcher reloads a pattern file into an Analyzer whenever the file changes.
// A reload that fails to parse keeps the previous set active.
type Watcher struct {
	path     string
	target   *Analyzer
	logger   *zap.Logger
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

func NewWatcher(path string, target *Analyzer, logger *zap.Logger) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("pattern file path is required")
	}
	if target == nil {
		return nil, fmt.Errorf("analyzer is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	// watch the directory; editors replace files via rename
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch pattern dir: %w", err)
	}

	return &Watcher{
		path:     filepath.Clean(path),
		target:   target,
		logger:   logger,
		debounce: defaultReloadDebounce,
		watcher:  fw,
	}, nil
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		_ = w.watcher.Close()
	}()

	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("pattern watcher error", zap.Error(err))
		case <-timer.C:
			w.Reload()
		}
	}
}

func (w *Watcher) Reload() bool {
	set, err := LoadPatternFile(w.path)
	if err != nil {
		w.logger.Warn("pattern reload failed, keeping previous set", zap.String("path", w.path), zap.Error(err))
		return false
	}
	w.target.SetPatterns(set)
	toxic, spam, pii, sentiment := set.Counts()
	w.logger.Info("pattern set reloaded",
		zap.String("path", w.path),
		zap.Int("toxic", toxic),
		zap.Int("spam", spam),
		zap.Int("pii", pii),
		zap.Int("sentiment", sentiment),
	)
	return true
}

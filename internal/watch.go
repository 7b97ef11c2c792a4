package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	tt "github.com/gnolang/arrowlint/internal/types"
	"github.com/gnolang/arrowlint/scanner"
)

// watchDebounce coalesces bursts of writes to one file into one run.
const watchDebounce = 100 * time.Millisecond

var errAlreadyWatching = errors.New("already watching")

// Runner lints a single file.
type Runner interface {
	Run(filename string) ([]tt.Issue, error)
}

// Watcher re-lints JavaScript files under a set of directories when they
// change.
type Watcher struct {
	runner  Runner
	logger  *zap.Logger
	dirs    []string
	watcher *fsnotify.Watcher

	// OnIssues is called after every run. Defaults to logging the issues.
	OnIssues func(filename string, issues []tt.Issue)

	mu       sync.Mutex
	watching bool
	timers   map[string]*time.Timer
}

func NewWatcher(runner Runner, logger *zap.Logger, dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Watcher{
		runner:  runner,
		logger:  logger,
		dirs:    dirs,
		watcher: fw,
		timers:  make(map[string]*time.Timer),
	}
	w.OnIssues = w.reportIssues
	return w, nil
}

// Watch adds every directory under the watched roots and handles events
// until ctx is done.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return errAlreadyWatching
	}
	w.watching = true
	w.mu.Unlock()
	defer w.stop()

	for _, dir := range w.dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != dir && scanner.SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		})
		if err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}
	w.logger.Info("Watching for changes", zap.Strings("dirs", w.dirs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleFileEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for name, timer := range w.timers {
		timer.Stop()
		delete(w.timers, name)
	}
	w.watching = false
	_ = w.watcher.Close()
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !IsSourceFile(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[event.Name]; ok {
		timer.Reset(watchDebounce)
		return
	}
	name := event.Name
	w.timers[name] = time.AfterFunc(watchDebounce, func() {
		w.mu.Lock()
		delete(w.timers, name)
		w.mu.Unlock()
		w.lint(name)
	})
}

func (w *Watcher) lint(filename string) {
	issues, err := w.runner.Run(filename)
	if err != nil {
		w.logger.Error("Error linting file", zap.String("file", filename), zap.Error(err))
		return
	}
	w.OnIssues(filename, issues)
}

func (w *Watcher) reportIssues(filename string, issues []tt.Issue) {
	if len(issues) == 0 {
		w.logger.Info("No issues found", zap.String("file", filename))
		return
	}

	w.logger.Info("Found issues", zap.String("file", filename), zap.Int("count", len(issues)))
	for _, issue := range issues {
		w.logger.Info(issue.Message,
			zap.String("rule", issue.Rule),
			zap.Int("line", issue.Start.Line),
			zap.Int("column", issue.Start.Column),
		)
	}
}

// IsSourceFile reports whether path has a JavaScript extension.
func IsSourceFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range scanner.DefaultExtensions {
		if ext == want {
			return true
		}
	}
	return false
}

package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
)

// DefaultDebounce is the quiet period after the last write before a report is
// considered complete.
const DefaultDebounce = 500 * time.Millisecond

// reportWatcher implements ReportWatcher.
type reportWatcher struct {
	watcher       *fsnotify.Watcher
	reports       map[string]bool // absolute report paths
	debounceTime  time.Duration
	logger        hclog.Logger
	callback      func(reports []string)
	ctx           context.Context
	cancel        context.CancelFunc
	accumulated   map[string]bool
	accumulatedMu sync.Mutex
	debounceTimer *time.Timer
	timerMu       sync.Mutex
	stopOnce      sync.Once
	doneCh        chan struct{}
}

// Options configures NewReportWatcher.
type Options struct {
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	Logger   hclog.Logger
}

// NewReportWatcher watches the given report files. Their parent directories are
// watched rather than the files themselves, so reports replaced by rename are
// still seen.
func NewReportWatcher(reports []string, opts Options) (ReportWatcher, error) {
	if len(reports) == 0 {
		return nil, fmt.Errorf("no report to watch")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	rw := &reportWatcher{
		watcher:      watcher,
		reports:      make(map[string]bool, len(reports)),
		debounceTime: opts.Debounce,
		logger:       opts.Logger.Named("watcher"),
		accumulated:  make(map[string]bool),
		doneCh:       make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for _, report := range reports {
		abs, err := filepath.Abs(report)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to resolve report path %s: %w", report, err)
		}
		rw.reports[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	return rw, nil
}

// Start begins watching for report changes.
func (rw *reportWatcher) Start(ctx context.Context, callback func(reports []string)) error {
	if callback == nil {
		return nil
	}

	rw.callback = callback
	rw.ctx, rw.cancel = context.WithCancel(ctx)

	go rw.watch()
	return nil
}

// Stop stops the watcher.
func (rw *reportWatcher) Stop() error {
	var err error
	rw.stopOnce.Do(func() {
		if rw.cancel != nil {
			rw.cancel()
			<-rw.doneCh
		} else {
			// Never started
			close(rw.doneCh)
		}
		err = rw.watcher.Close()
	})
	return err
}

func (rw *reportWatcher) watch() {
	defer close(rw.doneCh)

	fireCh := make(chan struct{}, 1)

	for {
		select {
		case <-rw.ctx.Done():
			rw.stopDebounceTimer()
			return

		case event, ok := <-rw.watcher.Events:
			if !ok {
				return
			}
			if !rw.shouldProcessEvent(event) {
				continue
			}

			rw.accumulatedMu.Lock()
			rw.accumulated[event.Name] = true
			rw.accumulatedMu.Unlock()

			rw.resetDebounceTimer(fireCh)

		case <-fireCh:
			// Callbacks run on this goroutine; events arriving meanwhile
			// queue up and fire once it returns.
			rw.fire()

		case err, ok := <-rw.watcher.Errors:
			if !ok {
				return
			}
			rw.logger.Warn("report watcher error", "error", err)
		}
	}
}

// fire hands the accumulated reports to the callback, sorted.
func (rw *reportWatcher) fire() {
	rw.accumulatedMu.Lock()
	if len(rw.accumulated) == 0 {
		rw.accumulatedMu.Unlock()
		return
	}
	reports := make([]string, 0, len(rw.accumulated))
	for report := range rw.accumulated {
		reports = append(reports, report)
	}
	rw.accumulated = make(map[string]bool)
	rw.accumulatedMu.Unlock()

	sort.Strings(reports)
	rw.logger.Debug("reports changed", "reports", reports)
	if rw.callback != nil {
		rw.callback(reports)
	}
}

func (rw *reportWatcher) resetDebounceTimer(fireCh chan struct{}) {
	rw.timerMu.Lock()
	defer rw.timerMu.Unlock()

	if rw.debounceTimer != nil {
		rw.debounceTimer.Stop()
	}
	rw.debounceTimer = time.AfterFunc(rw.debounceTime, func() {
		select {
		case fireCh <- struct{}{}:
		default:
		}
	})
}

func (rw *reportWatcher) stopDebounceTimer() {
	rw.timerMu.Lock()
	defer rw.timerMu.Unlock()

	if rw.debounceTimer != nil {
		rw.debounceTimer.Stop()
		rw.debounceTimer = nil
	}
}

// shouldProcessEvent keeps writes and creations of watched reports. Removals
// are ignored: a deleted report can not be analysed.
func (rw *reportWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	return rw.reports[filepath.Clean(event.Name)]
}

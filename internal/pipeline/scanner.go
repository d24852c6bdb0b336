package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"vodforge/internal/logging"
)

// scan watches the pending area and enqueues bundles once their contents
// have settled. Filesystem events only mark a bundle as recently active; the
// periodic sweep is what enqueues, so a missed event costs at most one scan
// interval.
func (p *Pipeline) scan(ctx context.Context) {
	defer p.wg.Done()

	interval := time.Duration(p.cfg.Workflow.ScanInterval) * time.Second
	if interval <= 0 {
		interval = time.Second
	}
	settle := time.Duration(p.cfg.Workflow.SettleDelay) * time.Second
	retry := time.Duration(p.cfg.Workflow.ErrorRetryInterval) * time.Second
	if retry <= 0 {
		retry = interval
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Warn("filesystem watcher unavailable, relying on periodic scans", logging.Error(err))
	} else {
		defer watcher.Close()
		if err := watcher.Add(p.cfg.PendingDir()); err != nil {
			p.logger.Warn("watch pending directory", logging.Error(err))
		}
	}

	firstSeen := make(map[string]time.Time)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	_ = p.sweep(firstSeen, settle)
	for {
		var events chan fsnotify.Event
		var watchErrs chan error
		if watcher != nil {
			events = watcher.Events
			watchErrs = watcher.Errors
		}
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			// Any activity inside a candidate restarts its settle window.
			name := bundleNameFromEvent(p.cfg.PendingDir(), event.Name)
			if name != "" {
				firstSeen[name] = time.Now()
			}
		case err := <-watchErrs:
			p.logger.Warn("watcher error", logging.Error(err))
		case <-ticker.C:
			// A failed sweep (e.g. pending root briefly unavailable) retries
			// on the shorter error interval until it succeeds again.
			if err := p.sweep(firstSeen, settle); err != nil {
				ticker.Reset(retry)
			} else {
				ticker.Reset(interval)
			}
		}
	}
}

// sweep enumerates the pending area and enqueues every directory whose
// settle window has elapsed.
func (p *Pipeline) sweep(firstSeen map[string]time.Time, settle time.Duration) error {
	entries, err := os.ReadDir(p.cfg.PendingDir())
	if err != nil {
		p.logger.Warn("read pending directory", logging.Error(err))
		return err
	}

	now := time.Now()
	present := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		present[name] = struct{}{}

		seen, ok := firstSeen[name]
		if !ok {
			firstSeen[name] = now
			if settle > 0 {
				continue
			}
			seen = now
		}
		if now.Sub(seen) < settle {
			continue
		}
		if p.Admit(name) {
			delete(firstSeen, name)
			p.logger.Info("bundle detected", logging.String(logging.FieldBundle, name))
		} else {
			p.logger.Debug("bundle already in flight, skipping", logging.String(logging.FieldBundle, name))
		}
	}

	// Forget bundles that disappeared before settling.
	for name := range firstSeen {
		if _, ok := present[name]; !ok {
			delete(firstSeen, name)
		}
	}
	return nil
}

// bundleNameFromEvent maps an event path inside the pending area to the
// top-level bundle directory it belongs to.
func bundleNameFromEvent(pendingDir, eventPath string) string {
	rel, err := filepath.Rel(pendingDir, eventPath)
	if err != nil {
		return ""
	}
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	if first == "" || first == "." || first == ".." {
		return ""
	}
	return first
}

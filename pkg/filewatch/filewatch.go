// Package filewatch reports edits to a single file. The parent directory is
// watched so editors that replace the file on save are still seen.
package filewatch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

const DefaultSettle = 250 * time.Millisecond

// Watch calls onChange once a burst of writes to path has settled. It blocks
// until ctx is cancelled.
func Watch(ctx context.Context, log *logrus.Logger, path string, settle time.Duration, onChange func()) error {
	if settle <= 0 {
		settle = DefaultSettle
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	entry := log.WithFields(logrus.Fields{
		"component": "filewatch",
		"path":      abs,
	})
	entry.Debug("Watching file")

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(settle)
			} else {
				timer.Reset(settle)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			entry.Info("File changed")
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			entry.WithField("error", err.Error()).Warn("File watcher error")
		}
	}
}

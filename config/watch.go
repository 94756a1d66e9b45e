package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher reloads a settings file whenever it is rewritten on disk and hands
// the parsed result to a callback. A file that fails to parse is logged and
// skipped; the previous settings stay in effect.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func(*Settings)

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// Watch starts watching the given settings file. onChange is invoked from
// the watcher goroutine with every successfully reloaded Settings.
func Watch(path string, onChange func(*Settings)) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("onChange callback cannot be nil")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory rather than the file itself so that editors that
	// replace the file atomically keep the watch alive.
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		path:     path,
		watcher:  fsw,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()

	logrus.WithFields(logrus.Fields{
		"function": "Watch",
		"path":     path,
	}).Info("Watching settings file for changes")
	return w, nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			settings, err := Load(w.path)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "Watcher.loop",
					"path":     w.path,
					"error":    err,
				}).Warn("Settings file changed but could not be reloaded")
				continue
			}
			logrus.WithFields(logrus.Fields{
				"function": "Watcher.loop",
				"path":     w.path,
			}).Info("Settings file reloaded")
			w.onChange(settings)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logrus.WithFields(logrus.Fields{
				"function": "Watcher.loop",
				"error":    err,
			}).Warn("Settings file watcher error")
		}
	}
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

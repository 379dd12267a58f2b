package analytics

import (
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher reloads the engine config when its YAML file changes on disk,
// so operators can tune thresholds without a restart.
type ConfigWatcher struct {
	path     string
	holder   *ConfigHolder
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	debounce *time.Timer
}

// NewConfigWatcher starts watching the config file's directory. Watching the
// directory rather than the file catches atomic rename-based rewrites.
func NewConfigWatcher(path string, holder *ConfigHolder) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &ConfigWatcher{
		path:     path,
		holder:   holder,
		watcher:  watcher,
		stopChan: make(chan struct{}),
	}

	go w.watchLoop()
	return w, nil
}

// watchLoop handles file system events with debouncing
func (w *ConfigWatcher) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if w.debounce != nil {
					w.debounce.Stop()
				}
				w.debounce = time.AfterFunc(debounceInterval, w.reload)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Config watcher error: %v", err)

		case <-w.stopChan:
			return
		}
	}
}

// reload re-reads the config file and swaps it in; a bad file keeps the
// previous config in place
func (w *ConfigWatcher) reload() {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		log.Printf("Config reload failed, keeping previous config: %v", err)
		return
	}

	w.holder.Replace(cfg)
	log.Printf("Analytics config reloaded from %s", w.path)
}

// Stop stops the watcher
func (w *ConfigWatcher) Stop() {
	close(w.stopChan)
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.watcher.Close()
}

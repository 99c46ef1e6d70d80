package appconfig

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the runtime configuration when its file changes, so the
// reloadable subset (save debounce, log level) takes effect without a
// restart.
type Watcher struct {
	path     string
	onChange func(Config)

	fw *fsnotify.Watcher
	wg sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// Watch starts watching the config file's directory and invokes onChange
// with the freshly loaded configuration after each change to the file.
// Watching the directory rather than the file survives editors that replace
// the file on save.
func Watch(path string, onChange func(Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     path,
		onChange: onChange,
		fw:       fw,
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	err := w.fw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				continue
			}
			w.onChange(cfg)

		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
		}
	}
}

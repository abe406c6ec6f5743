package config

import (
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of fsnotify events editors produce
// for a single save into one reload.
const reloadDebounce = 300 * time.Millisecond

// ChangeHandler receives the freshly loaded config after the watched file
// changes.
type ChangeHandler func(cfg *Config)

// Watcher reloads the config file whenever it is written and hands the
// result to the registered handlers. A file that reloads into an invalid
// config is reported and otherwise ignored; the running config stays.
type Watcher struct {
	path string
	fs   *fsnotify.Watcher
	log  *slog.Logger

	mu       sync.Mutex
	handlers []ChangeHandler

	stop chan struct{}
}

func NewWatcher(path string, log *slog.Logger) (*Watcher, error) {
	if log == nil {
		log = slog.Default()
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{path: path, fs: fs, log: log}, nil
}

// OnChange registers a handler. Handlers run on the watcher goroutine, in
// registration order.
func (w *Watcher) OnChange(h ChangeHandler) {
	w.mu.Lock()
	w.handlers = append(w.handlers, h)
	w.mu.Unlock()
}

// Start begins watching. It fails if the file cannot be watched at all;
// later filesystem errors are logged and the watcher keeps going.
func (w *Watcher) Start() error {
	if err := w.fs.Add(w.path); err != nil {
		return err
	}
	w.stop = make(chan struct{})
	go w.loop()
	w.log.Info("config: watching for changes", "path", w.path)
	return nil
}

// Stop halts the watcher. Safe to call only after a successful Start.
func (w *Watcher) Stop() {
	close(w.stop)
	w.fs.Close()
	w.log.Info("config: watcher stopped")
}

func (w *Watcher) loop() {
	var pending *time.Timer
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-w.stop:
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(reloadDebounce, w.reload)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Error("config: watch error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Error("config: reload failed, keeping previous config",
			"path", w.path, "error", err)
		return
	}

	w.mu.Lock()
	handlers := make([]ChangeHandler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	for _, h := range handlers {
		h(cfg)
	}
	w.log.Info("config: reloaded", "path", w.path)
}

package credentials

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"cors-proxy-go/internal/config"
)

// DefaultDebounce is the quiet period after the last file event before a reload.
const DefaultDebounce = 100 * time.Millisecond

// ReloadFunc re-reads credentials from their source.
type ReloadFunc func() (Credentials, error)

// Watcher reloads the Store whenever the config file changes.
// It watches the parent directory so editors that save by rename are seen,
// as are Kubernetes ConfigMap and Secret volumes, which swap a "..data"
// symlink instead of touching the file itself. The directory watch survives
// the file being removed or replaced, so it is never re-added.
type Watcher struct {
	path     string
	store    *Store
	reload   ReloadFunc
	logger   *slog.Logger
	debounce time.Duration

	fsw  *fsnotify.Watcher
	done chan struct{}

	mu      sync.Mutex // held across apply so Stop waits for a running reload
	timer   *time.Timer
	stopped bool
}

// NewWatcher creates a Watcher for path. Call Start to begin watching.
func NewWatcher(path string, store *Store, reload ReloadFunc, logger *slog.Logger) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		store:    store,
		reload:   reload,
		logger:   logger.With("component", "credentials_watcher"),
		debounce: DefaultDebounce,
	}
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	w.fsw = fsw
	w.done = make(chan struct{})
	go w.loop()

	w.logger.Info("watching config for credential changes", "path", w.path)
	return nil
}

// Stop ends watching and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	if w.fsw == nil {
		return nil
	}
	err := w.fsw.Close()
	<-w.done

	w.mu.Lock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	if err != nil {
		return fmt.Errorf("close file watcher: %w", err)
	}
	return nil
}

func (w *Watcher) loop() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("config file event", "name", event.Name, "op", event.Op.String())
			w.schedule()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "err", err)
		}
	}
}

// kubeDataDir is the symlink Kubernetes swaps when a projected volume updates.
const kubeDataDir = "..data"

// relevant reports whether event may have changed the config file contents.
// Removals and renames count too: the reload then fails and the previous
// credentials stay until the replacement file appears.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(event.Name)
	return name == w.path || filepath.Base(name) == kubeDataDir
}

// schedule (re)arms the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.apply)
}

func (w *Watcher) apply() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	c, err := w.reload()
	if err != nil {
		w.logger.Error("credential reload failed, keeping previous values", "err", err)
		return
	}
	w.store.Swap(c)
	w.logger.Info("credentials reloaded",
		"brightdata_configured", c.BrightDataAPIKey != "",
		"iscrapper_configured", c.IScrapperKey != "",
	)
}

// ConfigReloader returns a ReloadFunc that re-reads path and re-applies the
// CLI/env overrides in cli, so flags and environment keep precedence.
func ConfigReloader(cli *config.CLI, path string) ReloadFunc {
	return func() (Credentials, error) {
		c := *cli
		c.Config = path
		cfg, err := config.Load(&c)
		if err != nil {
			return Credentials{}, err
		}
		return FromConfig(cfg), nil
	}
}

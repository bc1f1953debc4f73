package rules

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce coalesces the write bursts editors produce when
// saving a file.
const defaultDebounce = 200 * time.Millisecond

// Watcher reloads a rule file whenever it changes on disk. Each
// successful reload is delivered to the callback; parse failures are
// delivered to the error callback and the previous rules stay in
// effect.
type Watcher struct {
	mu       sync.Mutex
	path     string
	fw       *fsnotify.Watcher
	debounce time.Duration
	onLoad   func(*File)
	onError  func(error)
	closed   bool
	closeCh  chan struct{}
	doneWg   sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides the reload debounce interval.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithErrorHandler sets the callback receiving reload failures.
func WithErrorHandler(fn func(error)) WatcherOption {
	return func(w *Watcher) { w.onError = fn }
}

// Watch starts watching the rule file. The file must parse at start;
// the initial File is returned directly, later versions arrive through
// onLoad.
func Watch(path string, onLoad func(*File), opts ...WatcherOption) (*File, *Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, err
	}
	initial, err := Load(abs)
	if err != nil {
		return nil, nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	// Watch the directory: editors replace files on save, which drops
	// a watch registered on the file itself.
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, nil, err
	}

	w := &Watcher{
		path:     abs,
		fw:       fw,
		debounce: defaultDebounce,
		onLoad:   onLoad,
		onError:  func(error) {},
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.doneWg.Add(1)
	go w.loop()
	return initial, w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	err := w.fw.Close()
	w.doneWg.Wait()
	return err
}

// loop coalesces change events and reloads after the debounce window.
func (w *Watcher) loop() {
	defer w.doneWg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.closeCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Name != w.path {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.onError(err)

		case <-fire:
			fire = nil
			f, err := Load(w.path)
			if err != nil {
				w.onError(err)
				continue
			}
			w.onLoad(f)
		}
	}
}

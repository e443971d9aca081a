// Package watch monitors declaration files and triggers regeneration
// when they change. Changes are debounced so a burst of editor writes
// produces one generation pass.
package watch

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher monitors a directory tree and hands batches of changed
// paths to the change callback.
type FileWatcher struct {
	fs       *fsnotify.Watcher
	debounce *Debouncer
	root     string
	patterns []string
	ignored  []string
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopErr  error
}

// NewFileWatcher creates a watcher rooted at the given directory. Only
// files whose base name matches one of patterns reach the callback;
// ignored patterns and hidden entries are dropped before matching.
func NewFileWatcher(root string, patterns, ignored []string, onChange func([]string) error) (*FileWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw := &FileWatcher{
		fs:       fsw,
		debounce: NewDebouncer(100 * time.Millisecond),
		root:     root,
		patterns: patterns,
		ignored:  ignored,
		done:     make(chan struct{}),
	}
	fw.debounce.SetCallback(func(files []string) {
		if err := onChange(files); err != nil {
			log.Printf("watch: handling changes: %v", err)
		}
	})

	return fw, nil
}

// Start registers the directory tree with the OS watcher and launches
// the event loop.
func (fw *FileWatcher) Start() error {
	if err := fw.addTree(fw.root); err != nil {
		fw.fs.Close()
		return fmt.Errorf("failed to watch %s: %w", fw.root, err)
	}

	fw.wg.Add(1)
	go fw.run()

	return nil
}

// Stop shuts the watcher down. Safe to call more than once; later calls
// return the first call's result.
func (fw *FileWatcher) Stop() error {
	fw.stopOnce.Do(func() {
		close(fw.done)
		fw.wg.Wait()
		fw.debounce.Stop()
		fw.stopErr = fw.fs.Close()
	})
	return fw.stopErr
}

// addTree walks dir and registers it and every non-hidden subdirectory.
// Registering as the walk proceeds means a tree created in one mkdir -p
// is covered in full.
func (fw *FileWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fw.fs.Add(path)
	})
}

func (fw *FileWatcher) run() {
	defer fw.wg.Done()

	for {
		select {
		case event, ok := <-fw.fs.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.fs.Errors:
			if !ok {
				return
			}
			log.Printf("watch: %v", err)

		case <-fw.done:
			return
		}
	}
}

// handleEvent routes one fsnotify event. New directories are registered
// on the spot since the OS watcher does not follow them on its own; a
// removed or renamed declaration changes the program as much as an
// edited one, so those ops feed the debouncer too.
func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if fw.shouldIgnore(event.Name) {
		return
	}

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := fw.addTree(event.Name); err != nil {
				log.Printf("watch: failed to watch new directory %s: %v", event.Name, err)
			}
			return
		}
	}

	if event.Op.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) && fw.matchesPattern(event.Name) {
		fw.debounce.Add(event.Name)
	}
}

// shouldIgnore drops hidden entries and anything matching an ignore
// pattern. Patterns match the base name only, so "*.swp" works
// regardless of directory.
func (fw *FileWatcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	for _, pattern := range fw.ignored {
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

// matchesPattern reports whether path names a file the watcher cares
// about. An empty pattern list matches everything.
func (fw *FileWatcher) matchesPattern(path string) bool {
	if len(fw.patterns) == 0 {
		return true
	}
	base := filepath.Base(path)
	for _, pattern := range fw.patterns {
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

// Debouncer batches paths until they stop arriving for a full window,
// then emits them in one sorted slice. Editors that write a file several
// times in quick succession thus cost one generation pass, not several.
type Debouncer struct {
	window  time.Duration
	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	emit    func([]string)
	stopped bool
}

// NewDebouncer creates a debouncer with the given quiet window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window:  window,
		pending: make(map[string]struct{}),
	}
}

// SetCallback sets the function that receives each batch.
func (d *Debouncer) SetCallback(emit func([]string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.emit = emit
}

// Add records a changed path and restarts the quiet window.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending[path] = struct{}{}

	if d.timer == nil {
		d.timer = time.AfterFunc(d.window, d.fire)
		return
	}
	d.timer.Reset(d.window)
}

// fire drains the pending set and invokes the callback. The callback
// runs outside the lock so it may call Add without deadlocking.
func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}

	batch := make([]string, 0, len(d.pending))
	for path := range d.pending {
		batch = append(batch, path)
	}
	d.pending = make(map[string]struct{})
	emit := d.emit
	d.mu.Unlock()

	sort.Strings(batch)
	if emit != nil {
		emit(batch)
	}
}

// Stop cancels any pending flush. Batches never fire after Stop, even
// if the timer has already expired and is waiting on the lock.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
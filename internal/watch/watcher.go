// SPDX-License-Identifier: MPL-2.0

// Package watch monitors the canon directory and fires a debounced callback
// when the manifest or a template changes, so drift can be re-checked as the
// canonical sources are edited. Events inside the debounce window coalesce
// into a single callback carrying the full set of changed paths.
package watch

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"canonctl/internal/logging"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the quiet period after the last filesystem event before
// the callback fires. Editors typically write-then-rename; the window folds
// that into one rescan.
const defaultDebounce = 500 * time.Millisecond

// defaultIgnores are always excluded, on top of any user-supplied patterns.
// They cover VCS metadata, editor swap files, and OS noise that would
// otherwise trigger pointless rescans of the canon directory.
var defaultIgnores = []string{
	"**/.git/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// CanonDir is the canon directory to monitor. Subdirectories are
		// watched recursively, including ones created while watching.
		CanonDir string

		// Ignore are additional doublestar glob patterns (relative to
		// CanonDir) for paths that never trigger callbacks. Merged with
		// the built-in defaults.
		Ignore []string

		// Debounce overrides the quiet period. Zero or negative falls
		// back to defaultDebounce.
		Debounce time.Duration

		// OnChange is called after the debounce window closes with the
		// deduplicated changed paths, relative to CanonDir. A nil
		// callback is a no-op.
		OnChange func(ctx context.Context, changed []string) error
	}

	// Watcher monitors the canon directory. Run must be called exactly
	// once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		ignores  []string
		debounce time.Duration
		canonDir string
		started  atomic.Bool
	}
)

// New creates a Watcher rooted at cfg.CanonDir and registers every
// non-ignored directory beneath it.
func New(cfg Config) (*Watcher, error) {
	canonDir, err := filepath.Abs(cfg.CanonDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve canon directory: %w", err)
	}

	// Invalid globs should fail here, not silently never match.
	for _, pat := range cfg.Ignore {
		if _, err := doublestar.Match(pat, ""); err != nil {
			return nil, fmt.Errorf("watch: invalid ignore pattern %q: %w", pat, err)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	ignores := make([]string, 0, len(defaultIgnores)+len(cfg.Ignore))
	ignores = append(ignores, defaultIgnores...)
	ignores = append(ignores, cfg.Ignore...)

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  ignores,
		debounce: debounce,
		canonDir: canonDir,
	}

	if err := w.addDirectories(); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return w, nil
}

// Run blocks until ctx is cancelled, dispatching debounced callbacks. It
// returns nil on clean cancellation and propagates fatal watcher errors.
// A second call returns an error immediately.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("watch: Run called more than once")
	}

	log := logging.WithPrefix("watch")

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire drains the pending set and invokes OnChange. It can be scheduled
	// by time.AfterFunc after cancellation, so ctx is re-checked. The
	// skip-if-busy guard prevents overlapping callbacks when a rescan takes
	// longer than the debounce window; the retry keeps the pending set from
	// being silently discarded.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			log.Debug("rescan still in progress, deferring")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Collect(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				log.Error("rescan failed", "error", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		localTimer := timer
		mu.Unlock()
		if localTimer != nil && !localTimer.Stop() {
			select {
			case <-localTimer.C:
			default:
			}
		}
		if closeErr := w.fsw.Close(); closeErr != nil {
			log.Error("close fsnotify", "error", closeErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watch: fsnotify event channel closed unexpectedly")
			}

			rel, err := filepath.Rel(w.canonDir, evt.Name)
			if err != nil {
				rel = evt.Name
			}

			if w.isIgnored(rel) {
				continue
			}

			// Extend the recursive watch to directories created after
			// startup.
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}

			mu.Lock()
			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watch: fsnotify error channel closed unexpectedly")
			}
			// Resource exhaustion means the watcher cannot recover;
			// see watcher_fatal_*.go for the per-platform check.
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			log.Error("fsnotify", "error", err)
		}
	}
}

// addDirectories walks CanonDir and registers every non-ignored directory.
func (w *Watcher) addDirectories() error {
	walkErr := filepath.WalkDir(w.canonDir, func(path string, d os.DirEntry, walkDirErr error) error {
		if walkDirErr != nil {
			// Skip inaccessible paths rather than aborting the walk.
			logging.WithPrefix("watch").Warn("skipping inaccessible path",
				"path", path, "error", walkDirErr)
			return nil //nolint:nilerr
		}
		if !d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(w.canonDir, path)
		if relErr != nil {
			return nil //nolint:nilerr
		}

		if w.isIgnored(rel) || w.isIgnored(rel+"/") {
			return filepath.SkipDir
		}

		if addErr := w.fsw.Add(path); addErr != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, addErr)
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("watch: walk canon directory: %w", walkErr)
	}
	return nil
}

// maybeAddDir registers path if it is a non-ignored directory.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}

	rel, err := filepath.Rel(w.canonDir, path)
	if err != nil {
		return
	}

	if w.isIgnored(rel) || w.isIgnored(rel+"/") {
		return
	}

	if addErr := w.fsw.Add(path); addErr != nil {
		logging.WithPrefix("watch").Warn("add new directory",
			"path", path, "error", addErr)
	}
}

// isIgnored reports whether rel (relative to CanonDir) matches any ignore
// pattern.
func (w *Watcher) isIgnored(rel string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pat := range w.ignores {
		if matched, matchErr := doublestar.Match(pat, normalized); matchErr == nil && matched {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	out := make([]string, len(defaultIgnores))
	copy(out, defaultIgnores)
	return out
}

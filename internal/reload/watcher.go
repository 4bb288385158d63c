// Package reload watches a project directory for source changes and
// rebuilds + re-publishes its artifact and route table without dropping
// in-flight requests, adapted from the gateway's config file watcher and
// generalized to a 2-second debounce over a whole project tree.
package reload

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/wudi/faasrun/internal/config"
	"github.com/wudi/faasrun/internal/project"
	"github.com/wudi/faasrun/internal/router"
)

// DefaultDebounce is the interval used when NewWatcher is not given one.
const DefaultDebounce = 2 * time.Second

// Watcher watches dir for .ts/.js/.json/.yml/.yaml changes and rebuilds the
// project, swapping sr's published snapshot on success. Build failures are
// logged and leave the previous snapshot in place.
type Watcher struct {
	fsw      *fsnotify.Watcher
	dir      string
	buildDir string
	sr       *router.SwappableRouter
	logger   *zap.Logger
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher builds a Watcher over dir, publishing rebuilds onto sr.
func NewWatcher(dir, buildDir string, sr *router.SwappableRouter, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		fsw:      fsw,
		dir:      dir,
		buildDir: buildDir,
		sr:       sr,
		logger:   logger,
		debounce: DefaultDebounce,
	}, nil
}

// SetDebounce overrides the default debounce interval. Call before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Start begins watching w.dir, and every subdirectory beneath it, in the
// background. fsnotify.Watcher.Add is not recursive, so a project tree needs
// one Add call per directory; Start walks the tree up front and loop adds
// any directory created afterward.
func (w *Watcher) Start() error {
	if err := w.addTree(w.dir); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	return w.fsw.Close()
}

// addTree registers root and every subdirectory under it with fsnotify,
// skipping the build cache directory (whose own writes would otherwise
// trigger a rebuild loop) and dotdirs such as .git.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.skipDir(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) skipDir(path string) bool {
	base := filepath.Base(path)
	if base != "." && strings.HasPrefix(base, ".") {
		return true
	}
	if base == "node_modules" {
		return true
	}
	if w.buildDir == "" {
		return false
	}
	rel, err := filepath.Rel(w.buildDir, path)
	return err == nil && !strings.HasPrefix(rel, "..")
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Error("watching new directory failed", zap.Error(err))
					}
					continue
				}
			}
			if !relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleRebuild()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("reload watcher error", zap.Error(err))
		}
	}
}

func relevant(name string) bool {
	switch filepath.Ext(name) {
	case ".ts", ".js", ".json", ".yml", ".yaml":
		return true
	default:
		return false
	}
}

func (w *Watcher) scheduleRebuild() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.rebuild)
}

func (w *Watcher) rebuild() {
	result, err := project.Build(w.dir, w.buildDir)
	if err != nil {
		w.logger.Error("rebuild failed", zap.Error(err))
		return
	}

	cfg, err := config.Load(filepath.Join(w.dir, "config.yml"))
	if err != nil {
		w.logger.Error("reloading config failed", zap.Error(err))
		return
	}

	if err := w.sr.Swap(result.Code, cfg.RouterEntries()); err != nil {
		w.logger.Error("publishing rebuilt router failed", zap.Error(err))
		return
	}
	w.logger.Info("project reloaded", zap.String("dir", w.dir), zap.String("hash", result.Hash))
}

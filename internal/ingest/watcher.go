// Package ingest feeds the processing queue from the filesystem: a
// recursive fsnotify watcher discovers document files and a runner
// registers and enqueues them.
package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/documind/documind/constants"
)

type WatchConfig struct {
	Roots       []string // directories to watch, recursive
	AllowedExts map[string]struct{}
	InitialScan bool          // walk roots and emit files already present
	Debounce    time.Duration // coalesce rapid update/rename bursts
	Logger      *slog.Logger
}

// watcher owns the fsnotify handle and the outbound channels of one
// StartWatcher call.
type watcher struct {
	fs      *fsnotify.Watcher
	cfg     WatchConfig
	logger  *slog.Logger
	events  chan string
	errs    chan error
	pending map[string]struct{}
	timer   *time.Timer
}

// StartWatcher emits paths of created or updated document files under the
// roots. The channels close when ctx is done. Files already on disk are
// emitted only when InitialScan is set, and those emissions land in the
// channel buffer before StartWatcher returns.
func StartWatcher(ctx context.Context, cfg WatchConfig) (<-chan string, <-chan error, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.AllowedExts == nil {
		cfg.AllowedExts = constants.AllowedExtensions
	}
	if len(cfg.Roots) == 0 {
		cfg.Logger.Error("watcher start failed: no roots provided")
		return nil, nil, errors.New("no roots provided")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		cfg.Logger.Error("failed to create fsnotify watcher", "error", err)
		return nil, nil, err
	}
	w := &watcher{
		fs:      fsw,
		cfg:     cfg,
		logger:  cfg.Logger,
		events:  make(chan string, 256),
		errs:    make(chan error, 1),
		pending: map[string]struct{}{},
	}

	for _, root := range cfg.Roots {
		if err := w.addTree(root); err != nil {
			cfg.Logger.Error("failed to add root directory", "root", root, "error", err)
			_ = fsw.Close()
			return nil, nil, err
		}
	}

	go w.loop(ctx)
	return w.events, w.errs, nil
}

// addTree registers every directory under root with fsnotify. Hidden
// directories are skipped unless root itself is hidden. During an initial
// scan, files found along the way go straight into the event buffer.
func (w *watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if hidden(path) && path != root {
				return filepath.SkipDir
			}
			return w.fs.Add(path)
		}
		if w.cfg.InitialScan && w.wants(path) {
			w.emit(path)
		}
		return nil
	})
}

func (w *watcher) loop(ctx context.Context) {
	defer close(w.events)
	defer close(w.errs)
	defer func() {
		if err := w.fs.Close(); err != nil {
			w.logger.Warn("watcher close failed", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case e := <-w.fs.Events:
			w.handle(e)
		case err := <-w.fs.Errors:
			w.logger.Error("watcher error", "error", err)
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

func (w *watcher) handle(e fsnotify.Event) {
	if e.Op&fsnotify.Create == fsnotify.Create {
		// Created directories join the watch set. Add fails on plain
		// files, which is fine.
		_ = w.fs.Add(e.Name)
	}
	if !w.wants(e.Name) || e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}
	w.pending[e.Name] = struct{}{}
	if w.cfg.Debounce <= 0 {
		w.flush()
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.cfg.Debounce, w.flush)
}

// flush drains pending paths into the event channel, dropping on a full
// buffer rather than blocking the notify loop.
func (w *watcher) flush() {
	for p := range w.pending {
		w.emit(p)
		delete(w.pending, p)
	}
}

func (w *watcher) emit(path string) {
	select {
	case w.events <- path:
	default:
	}
}

func (w *watcher) wants(path string) bool {
	ext := constants.NormalizeExt(filepath.Ext(path))
	_, ok := w.cfg.AllowedExts[ext]
	return ok
}

func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

package watch

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/cmmoran/externgen/pkg/action/generate"
	"github.com/cmmoran/externgen/pkg/externgen"
)

var inputExtensions = []string{".yaml", ".yml", ".json", ".toml", ".dll", ".winmd", ".xml"}

// Watcher regenerates declarations whenever a catalog, assembly or
// documentation input changes.
type Watcher struct {
	opts   *externgen.Options
	fs     afero.Fs
	logger *zap.Logger

	run func(context.Context) error
}

func New(opts *externgen.Options, fs afero.Fs, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Watcher{opts: opts, fs: fs, logger: logger}
	w.run = func(ctx context.Context) error {
		_, err := generate.Generate(ctx, w.opts, w.fs, w.logger)
		return err
	}
	return w
}

// Watch runs one generation, then regenerates after every quiet period
// that follows a change, until ctx is done. Generation errors are logged
// and watching continues.
func (w *Watcher) Watch(ctx context.Context) error {
	if err := w.opts.Normalize(); err != nil {
		return err
	}

	nw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer func() { _ = nw.Close() }()

	dirs, err := w.watchDirs()
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if err := nw.Add(d); err != nil {
			return errors.Wrapf(err, "watch %s", d)
		}
	}
	w.logger.Info("watching inputs", zap.Strings("dirs", dirs), zap.Duration("debounce", w.opts.Debounce))

	w.regenerate(ctx)
	return w.loop(ctx, nw.Events, nw.Errors, nw.Add)
}

func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, add func(string) error) error {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && w.isInputDir(ev.Name) {
				if err := add(ev.Name); err != nil {
					w.logger.Warn("cannot watch new directory", zap.String("file", ev.Name), zap.Error(err))
				}
				continue
			}
			if !w.relevant(ev.Name) {
				continue
			}
			w.logger.Debug("input changed", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			timer.Reset(w.opts.Debounce)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		case <-timer.C:
			w.regenerate(ctx)
		}
	}
}

func (w *Watcher) regenerate(ctx context.Context) {
	if err := w.run(ctx); err != nil {
		w.logger.Error("generation failed", zap.Error(err))
	}
}

// watchDirs lists every directory to subscribe to: input directories with
// all their subdirectories, and the parent of every input file.
func (w *Watcher) watchDirs() ([]string, error) {
	var dirs []string
	for _, in := range w.opts.Inputs() {
		info, err := w.fs.Stat(in)
		if err != nil {
			return nil, errors.Wrapf(err, "watch input %s", in)
		}
		if !info.IsDir() {
			dirs = append(dirs, filepath.Dir(filepath.Clean(in)))
			continue
		}
		err = afero.Walk(w.fs, in, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() && !w.underOutput(path) {
				dirs = append(dirs, filepath.Clean(path))
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walk %s", in)
		}
	}
	slices.Sort(dirs)
	return slices.Compact(dirs), nil
}

// relevant reports whether a changed path is one of the inputs or an input
// file inside an input directory.
func (w *Watcher) relevant(name string) bool {
	name = filepath.Clean(name)
	if w.underOutput(name) {
		return false
	}
	for _, in := range w.opts.Inputs() {
		if name == filepath.Clean(in) {
			return true
		}
	}
	if !slices.Contains(inputExtensions, strings.ToLower(filepath.Ext(name))) {
		return false
	}
	return w.underInput(name)
}

func (w *Watcher) isInputDir(name string) bool {
	info, err := w.fs.Stat(name)
	if err != nil || !info.IsDir() {
		return false
	}
	return w.underInput(name) && !w.underOutput(name)
}

func (w *Watcher) underInput(name string) bool {
	for _, in := range w.opts.Inputs() {
		if within(filepath.Clean(in), name) {
			return true
		}
	}
	return false
}

func (w *Watcher) underOutput(name string) bool {
	return within(filepath.Clean(w.opts.OutDir), filepath.Clean(name))
}

func within(dir, name string) bool {
	return name == dir || strings.HasPrefix(name, dir+string(filepath.Separator))
}

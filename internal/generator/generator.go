// Package generator runs one catalog-to-declaration translation.
package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/jinzhu/inflection"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cmmoran/externgen/internal/catalog"
	"github.com/cmmoran/externgen/internal/emitter"
	"github.com/cmmoran/externgen/internal/model"
	"github.com/cmmoran/externgen/internal/naming"
	"github.com/cmmoran/externgen/internal/schema"
	"github.com/cmmoran/externgen/internal/writer"
)

// Config is the per-run configuration.
type Config struct {
	RootNamespace string
	RootPackage   string
	OutDir        string
	Extension     string
	Concurrency   int
	Clean         bool
}

// Summary reports what a run emitted. Files maps each relative output path
// to the hex SHA-256 of its content.
type Summary struct {
	OutDir  string
	Types   int
	Members int
	Skipped int
	Files   map[string]string
}

func (s *Summary) String() string {
	return fmt.Sprintf("Generated %d %s with %d %s into %s",
		s.Types, noun("type", s.Types), s.Members, noun("member", s.Members), s.OutDir)
}

func noun(word string, n int) string {
	if n == 1 {
		return word
	}
	return inflection.Plural(word)
}

type renderer interface {
	Emit(td *model.TypeDescriptor) (*emitter.File, error)
}

// Generator wires a catalog provider to the emitter and writer.
type Generator struct {
	provider catalog.Provider
	cfg      Config
	fs       afero.Fs
	docs     *catalog.Docs
	logger   *zap.Logger

	newRenderer func(*emitter.Context) renderer
}

type Option func(*Generator)

// WithFs replaces the output filesystem, the OS filesystem by default.
func WithFs(fs afero.Fs) Option { return func(g *Generator) { g.fs = fs } }

// WithDocs attaches documentation summaries to emitted members.
func WithDocs(d *catalog.Docs) Option { return func(g *Generator) { g.docs = d } }

func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

func New(provider catalog.Provider, cfg Config, opts ...Option) *Generator {
	g := &Generator{
		provider:    provider,
		cfg:         cfg,
		fs:          afero.NewOsFs(),
		logger:      zap.NewNop(),
		newRenderer: func(c *emitter.Context) renderer { return emitter.New(c) },
	}
	for _, o := range opts {
		o(g)
	}
	if g.cfg.Extension == "" {
		g.cfg.Extension = "hx"
	}
	if g.cfg.Concurrency <= 0 {
		g.cfg.Concurrency = runtime.NumCPU()
	}
	return g
}

// Run reads the catalog, builds the run's lookup tables once, then renders
// and writes every type. Types that fail to render are logged and skipped;
// a write failure aborts the run.
func (g *Generator) Run(ctx context.Context) (*Summary, error) {
	raw, err := g.provider.Types(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog")
	}

	summary := &Summary{OutDir: g.cfg.OutDir, Files: make(map[string]string)}
	types := g.prepare(raw, summary)

	packages := naming.NewPackageMapper(g.cfg.RootNamespace, g.cfg.RootPackage)
	ectx := emitter.NewContext(types, packages)
	render := g.newRenderer(ectx)
	g.logger.Debug("indexed catalog",
		zap.Int("count", len(types)),
		zap.Int("generic_bases", ectx.Index.Len()))

	w := writer.New(g.fs, g.cfg.OutDir)
	if g.cfg.Clean {
		if err := w.Clean(); err != nil {
			return nil, err
		}
	}

	var (
		emitted, members, skipped atomic.Int64
		mu                        sync.Mutex
	)
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Concurrency)
	for _, td := range types {
		if egctx.Err() != nil {
			break
		}
		td := td
		eg.Go(func() error {
			f, ok := g.render(render, td)
			if !ok {
				skipped.Add(1)
				return nil
			}
			rel := f.Entry.RelPath(g.cfg.Extension)
			if _, err := w.Write(rel, f.Content); err != nil {
				return err
			}
			sum := sha256.Sum256(f.Content)

			emitted.Add(1)
			members.Add(int64(f.Members))
			mu.Lock()
			summary.Files[rel] = hex.EncodeToString(sum[:])
			mu.Unlock()
			g.logger.Debug("wrote declaration", zap.String("type", td.FullName), zap.String("file", rel))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, errors.Wrap(err, "write declarations")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary.Types = int(emitted.Load())
	summary.Members = int(members.Load())
	summary.Skipped += int(skipped.Load())
	g.logger.Info(summary.String(), zap.Int("skipped", summary.Skipped))
	return summary, nil
}

// prepare filters and normalizes the provider output.
func (g *Generator) prepare(raw []*model.TypeDescriptor, summary *Summary) []*model.TypeDescriptor {
	eligible := catalog.Filter(raw, g.cfg.RootNamespace)
	types := make([]*model.TypeDescriptor, 0, len(eligible))
	for _, td := range eligible {
		built, ok := schema.Build(td)
		if !ok {
			summary.Skipped++
			g.logger.Debug("skipping malformed type", zap.String("type", td.FullName))
			continue
		}
		types = append(types, built)
	}
	g.docs.Apply(types)
	return types
}

// render emits one type, turning errors and panics into a skip.
func (g *Generator) render(r renderer, td *model.TypeDescriptor) (f *emitter.File, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			g.logger.Warn("skipping type after panic",
				zap.String("type", td.FullName),
				zap.Any("panic", p))
			f, ok = nil, false
		}
	}()

	f, err := r.Emit(td)
	if err != nil {
		g.logger.Warn("skipping type", zap.String("type", td.FullName), zap.Error(err))
		return nil, false
	}
	return f, true
}

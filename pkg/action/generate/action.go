package generate

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/cmmoran/externgen/internal/catalog"
	"github.com/cmmoran/externgen/internal/generator"
	"github.com/cmmoran/externgen/internal/model"
	"github.com/cmmoran/externgen/pkg/externgen"
)

// Generate runs one generation with opts, reading inputs from and writing
// output to fs.
func Generate(ctx context.Context, opts *externgen.Options, fs afero.Fs, logger *zap.Logger) (*generator.Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := opts.Normalize(); err != nil {
		return nil, err
	}

	var docs *catalog.Docs
	if len(opts.Docs) > 0 {
		d, err := catalog.LoadDocs(fs, logger, opts.Docs...)
		if err != nil {
			return nil, errors.Wrap(err, "load documentation")
		}
		logger.Debug("loaded documentation", zap.Int("count", d.Len()))
		docs = d
	}

	g := generator.New(Provider(opts, fs, logger), generator.Config{
		RootNamespace: opts.RootNamespace,
		RootPackage:   opts.RootPackage,
		OutDir:        opts.OutDir,
		Extension:     opts.Extension,
		Concurrency:   opts.Concurrency,
		Clean:         opts.Clean,
	}, generator.WithFs(fs), generator.WithDocs(docs), generator.WithLogger(logger))
	return g.Run(ctx)
}

// Provider assembles the catalog provider described by opts: catalog files
// first, then assemblies, minus excluded types.
func Provider(opts *externgen.Options, fs afero.Fs, logger *zap.Logger) catalog.Provider {
	var chain catalog.Chain
	if len(opts.Catalogs) > 0 {
		chain = append(chain, catalog.NewFileProvider(fs, logger.Named("catalog"), opts.Catalogs...))
	}
	if len(opts.Assemblies) > 0 {
		chain = append(chain, catalog.NewAssemblyProvider(fs, logger.Named("assembly"), opts.Assemblies...))
	}
	return &excluding{next: chain, opts: opts, logger: logger}
}

type excluding struct {
	next   catalog.Provider
	opts   *externgen.Options
	logger *zap.Logger
}

func (e *excluding) Types(ctx context.Context) ([]*model.TypeDescriptor, error) {
	types, err := e.next.Types(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.TypeDescriptor, 0, len(types))
	for _, td := range types {
		if td != nil && e.opts.Excluded(td.FullName) {
			e.logger.Debug("excluding type", zap.String("type", td.FullName))
			continue
		}
		out = append(out, td)
	}
	return out, nil
}

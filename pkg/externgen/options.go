package externgen

import (
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrInvalidOptions marks configuration that cannot produce a run.
var ErrInvalidOptions = errors.New("invalid options")

// Options control one generation run.
//
// RootNamespace – host namespace accepted for emission (sub-namespaces included).
// RootPackage   – output package of the root namespace; defaults to RootNamespace lower-cased.
// OutDir        – output root directory.
// Extension     – output file extension, without the dot.
// Concurrency   – number of types rendered in parallel; <= 0 means NumCPU.
// Clean         – remove OutDir before writing.
// Catalogs      – catalog module files or directories (yaml, json, toml).
// Assemblies    – metadata files or directories (dll, winmd).
// Docs          – XML documentation files or directories.
// ExcludeTypes  – full-name patterns of types to skip (case-insensitive, '*' wildcards).
// Debounce      – quiet period before a watched change triggers a run.
type Options struct {
	RootNamespace string        `json:"root_namespace,omitempty" yaml:"root_namespace,omitempty" toml:"root_namespace,omitempty" mapstructure:"root_namespace,omitempty"`
	RootPackage   string        `json:"root_package,omitempty" yaml:"root_package,omitempty" toml:"root_package,omitempty" mapstructure:"root_package,omitempty"`
	OutDir        string        `json:"out_dir,omitempty" yaml:"out_dir,omitempty" toml:"out_dir,omitempty" mapstructure:"out_dir,omitempty"`
	Extension     string        `json:"extension,omitempty" yaml:"extension,omitempty" toml:"extension,omitempty" mapstructure:"extension,omitempty"`
	Concurrency   int           `json:"concurrency,omitempty" yaml:"concurrency,omitempty" toml:"concurrency,omitempty" mapstructure:"concurrency,omitempty"`
	Clean         bool          `json:"clean,omitempty" yaml:"clean,omitempty" toml:"clean,omitempty" mapstructure:"clean,omitempty"`
	Catalogs      []string      `json:"catalogs,omitempty" yaml:"catalogs,omitempty" toml:"catalogs,omitempty" mapstructure:"catalogs,omitempty"`
	Assemblies    []string      `json:"assemblies,omitempty" yaml:"assemblies,omitempty" toml:"assemblies,omitempty" mapstructure:"assemblies,omitempty"`
	Docs          []string      `json:"docs,omitempty" yaml:"docs,omitempty" toml:"docs,omitempty" mapstructure:"docs,omitempty"`
	ExcludeTypes  []string      `json:"exclude_types,omitempty" yaml:"exclude_types,omitempty" toml:"exclude_types,omitempty" mapstructure:"exclude_types,omitempty"`
	Debounce      time.Duration `json:"debounce,omitempty" yaml:"debounce,omitempty" toml:"debounce,omitempty" mapstructure:"debounce,omitempty"`
}

const (
	DefaultRootNamespace = "UnityEngine"
	DefaultOutDir        = "externs"
	DefaultExtension     = "hx"
	DefaultDebounce      = 500 * time.Millisecond
)

func NewOptions(opts ...Option) *Options {
	o := &Options{
		RootNamespace: DefaultRootNamespace,
		OutDir:        DefaultOutDir,
		Extension:     DefaultExtension,
		Concurrency:   runtime.NumCPU(),
		Debounce:      DefaultDebounce,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Normalize fills defaults and validates the options. Errors wrap
// ErrInvalidOptions.
func (o *Options) Normalize() error {
	o.RootNamespace = strings.Trim(strings.TrimSpace(o.RootNamespace), ".")
	if o.RootNamespace == "" {
		return errors.Wrap(ErrInvalidOptions, "root namespace is required")
	}
	for _, seg := range strings.Split(o.RootNamespace, ".") {
		if !identifier(seg) {
			return errors.Wrapf(ErrInvalidOptions, "root namespace %q: bad segment %q", o.RootNamespace, seg)
		}
	}

	o.RootPackage = strings.TrimSpace(o.RootPackage)
	if o.RootPackage == "" {
		o.RootPackage = strings.ToLower(o.RootNamespace)
	}
	if strings.TrimSpace(o.OutDir) == "" {
		o.OutDir = DefaultOutDir
	}
	o.OutDir = filepath.Clean(o.OutDir)

	o.Extension = strings.TrimPrefix(strings.TrimSpace(o.Extension), ".")
	if o.Extension == "" {
		o.Extension = DefaultExtension
	}
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.NumCPU()
	}
	if o.Debounce < 0 {
		return errors.Wrapf(ErrInvalidOptions, "negative debounce %s", o.Debounce)
	}
	if o.Debounce == 0 {
		o.Debounce = DefaultDebounce
	}

	o.Catalogs = compact(o.Catalogs)
	o.Assemblies = compact(o.Assemblies)
	o.Docs = compact(o.Docs)
	o.ExcludeTypes = compact(o.ExcludeTypes)
	if len(o.Catalogs) == 0 && len(o.Assemblies) == 0 {
		return errors.WithHint(
			errors.Wrap(ErrInvalidOptions, "no catalog input"),
			"pass --catalog or --assembly",
		)
	}
	for _, p := range o.ExcludeTypes {
		if _, err := filepath.Match(p, ""); err != nil {
			return errors.Wrapf(ErrInvalidOptions, "exclude pattern %q: %v", p, err)
		}
	}
	return nil
}

// Inputs lists every watched input path.
func (o *Options) Inputs() []string {
	out := make([]string, 0, len(o.Catalogs)+len(o.Assemblies)+len(o.Docs))
	out = append(out, o.Catalogs...)
	out = append(out, o.Assemblies...)
	return append(out, o.Docs...)
}

func compact(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func identifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// functional option pattern ---------------------------------------------------

type Option func(*Options)

func WithRootNamespace(ns string) Option { return func(o *Options) { o.RootNamespace = ns } }
func WithRootPackage(p string) Option    { return func(o *Options) { o.RootPackage = p } }
func WithOutDir(d string) Option         { return func(o *Options) { o.OutDir = d } }
func WithExtension(e string) Option      { return func(o *Options) { o.Extension = e } }
func WithConcurrency(n int) Option       { return func(o *Options) { o.Concurrency = n } }
func WithClean() Option                  { return func(o *Options) { o.Clean = true } }
func WithDebounce(d time.Duration) Option {
	return func(o *Options) { o.Debounce = d }
}
func WithCatalogs(paths ...string) Option {
	return func(o *Options) { o.Catalogs = append(o.Catalogs, paths...) }
}
func WithAssemblies(paths ...string) Option {
	return func(o *Options) { o.Assemblies = append(o.Assemblies, paths...) }
}
func WithDocs(paths ...string) Option {
	return func(o *Options) { o.Docs = append(o.Docs, paths...) }
}
func WithExcludeTypes(patterns ...string) Option {
	return func(o *Options) {
		for _, p := range patterns {
			o.ExcludeTypes = append(o.ExcludeTypes, strings.TrimSpace(p))
		}
	}
}

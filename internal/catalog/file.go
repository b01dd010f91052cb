package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cmmoran/externgen/internal/model"
)

// moduleFile is one catalog module as dumped by the host-side exporter.
type moduleFile struct {
	Module string      `json:"module,omitempty" yaml:"module,omitempty" toml:"module,omitempty"`
	Types  []typeEntry `json:"types,omitempty" yaml:"types,omitempty" toml:"types,omitempty"`
}

type typeEntry struct {
	Name          string             `json:"name" yaml:"name" toml:"name"`
	Namespace     string             `json:"namespace,omitempty" yaml:"namespace,omitempty" toml:"namespace,omitempty"`
	GenericParams []string           `json:"generic_params,omitempty" yaml:"generic_params,omitempty" toml:"generic_params,omitempty"`
	Summary       string             `json:"summary,omitempty" yaml:"summary,omitempty" toml:"summary,omitempty"`
	Constructors  []constructorEntry `json:"constructors,omitempty" yaml:"constructors,omitempty" toml:"constructors,omitempty"`
	Properties    []propertyEntry    `json:"properties,omitempty" yaml:"properties,omitempty" toml:"properties,omitempty"`
	Fields        []propertyEntry    `json:"fields,omitempty" yaml:"fields,omitempty" toml:"fields,omitempty"`
	Methods       []methodEntry      `json:"methods,omitempty" yaml:"methods,omitempty" toml:"methods,omitempty"`
}

type constructorEntry struct {
	Visibility string       `json:"visibility,omitempty" yaml:"visibility,omitempty" toml:"visibility,omitempty"`
	Params     []paramEntry `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty"`
}

type propertyEntry struct {
	Name       string `json:"name" yaml:"name" toml:"name"`
	Type       string `json:"type" yaml:"type" toml:"type"`
	Static     bool   `json:"static,omitempty" yaml:"static,omitempty" toml:"static,omitempty"`
	Visibility string `json:"visibility,omitempty" yaml:"visibility,omitempty" toml:"visibility,omitempty"`
	Getter     string `json:"getter,omitempty" yaml:"getter,omitempty" toml:"getter,omitempty"`
	Setter     string `json:"setter,omitempty" yaml:"setter,omitempty" toml:"setter,omitempty"`
	Summary    string `json:"summary,omitempty" yaml:"summary,omitempty" toml:"summary,omitempty"`
}

type methodEntry struct {
	Name          string       `json:"name" yaml:"name" toml:"name"`
	ReturnType    string       `json:"return_type,omitempty" yaml:"return_type,omitempty" toml:"return_type,omitempty"`
	Static        bool         `json:"static,omitempty" yaml:"static,omitempty" toml:"static,omitempty"`
	Visibility    string       `json:"visibility,omitempty" yaml:"visibility,omitempty" toml:"visibility,omitempty"`
	SpecialName   bool         `json:"special_name,omitempty" yaml:"special_name,omitempty" toml:"special_name,omitempty"`
	GenericParams []string     `json:"generic_params,omitempty" yaml:"generic_params,omitempty" toml:"generic_params,omitempty"`
	Params        []paramEntry `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty"`
	Summary       string       `json:"summary,omitempty" yaml:"summary,omitempty" toml:"summary,omitempty"`
}

type paramEntry struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Type string `json:"type" yaml:"type" toml:"type"`
}

// visibilityOr parses s, treating an empty spelling as def.
func visibilityOr(s string, def model.Visibility) model.Visibility {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return model.ParseVisibility(s)
}

func (t *typeEntry) descriptor() *model.TypeDescriptor {
	ns, name := SplitHostName(t.Name)
	if t.Namespace != "" {
		ns = t.Namespace
	}
	td := &model.TypeDescriptor{
		FullName:      t.Name,
		Name:          name,
		Namespace:     ns,
		GenericParams: t.GenericParams,
		Summary:       t.Summary,
	}
	for _, c := range t.Constructors {
		td.Constructors = append(td.Constructors, &model.ConstructorDescriptor{
			Visibility: visibilityOr(c.Visibility, model.VisibilityPublic),
			Params:     params(c.Params),
		})
	}
	for _, p := range t.Properties {
		prop := &model.PropertyDescriptor{
			Name:       p.Name,
			Type:       p.Type,
			Static:     p.Static,
			Visibility: model.ParseVisibility(p.Visibility),
			Getter:     model.ParseVisibility(p.Getter),
			Setter:     model.ParseVisibility(p.Setter),
			Summary:    p.Summary,
		}
		if prop.EffectiveVisibility() == model.VisibilityNone {
			prop.Visibility = model.VisibilityPublic
		}
		td.Properties = append(td.Properties, prop)
	}
	for _, f := range t.Fields {
		td.Properties = append(td.Properties, &model.PropertyDescriptor{
			Name:       f.Name,
			Type:       f.Type,
			Static:     f.Static,
			Visibility: visibilityOr(f.Visibility, model.VisibilityPublic),
			Summary:    f.Summary,
		})
	}
	for _, m := range t.Methods {
		td.Methods = append(td.Methods, &model.MethodDescriptor{
			Name:          m.Name,
			ReturnType:    m.ReturnType,
			Static:        m.Static,
			Visibility:    visibilityOr(m.Visibility, model.VisibilityPublic),
			SpecialName:   m.SpecialName,
			GenericParams: m.GenericParams,
			Params:        params(m.Params),
			Summary:       m.Summary,
		})
	}
	return td
}

func params(in []paramEntry) []*model.Parameter {
	out := make([]*model.Parameter, len(in))
	for i, p := range in {
		out[i] = &model.Parameter{Name: p.Name, Type: p.Type}
	}
	return out
}

// FileProvider reads catalog modules from YAML, JSON or TOML files.
// Directories are searched recursively for files with those extensions.
type FileProvider struct {
	fs     afero.Fs
	paths  []string
	logger *zap.Logger
}

func NewFileProvider(fs afero.Fs, logger *zap.Logger, paths ...string) *FileProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileProvider{fs: fs, paths: paths, logger: logger}
}

// Types loads every module. Unreadable or undecodable modules are logged
// and skipped.
func (p *FileProvider) Types(ctx context.Context) ([]*model.TypeDescriptor, error) {
	files, err := expand(p.fs, p.paths, moduleExtensions)
	if err != nil {
		return nil, err
	}

	var out []*model.TypeDescriptor
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mod, err := p.load(file)
		if err != nil {
			p.logger.Warn("skipping catalog module", zap.String("module", file), zap.Error(err))
			continue
		}
		for i := range mod.Types {
			out = append(out, mod.Types[i].descriptor())
		}
		p.logger.Debug("loaded catalog module",
			zap.String("module", file),
			zap.String("name", mod.Module),
			zap.Int("count", len(mod.Types)))
	}
	return out, nil
}

func (p *FileProvider) load(path string) (*moduleFile, error) {
	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog module")
	}
	mod := &moduleFile{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, mod)
	default:
		// JSON documents are valid YAML.
		err = yaml.Unmarshal(data, mod)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode catalog module %s", path)
	}
	return mod, nil
}

var moduleExtensions = []string{".yaml", ".yml", ".json", ".toml"}

// expand resolves paths to a sorted file list. Directories contribute
// their files with one of exts; missing paths are an error.
func expand(fs afero.Fs, paths []string, exts []string) ([]string, error) {
	var out []string
	for _, root := range paths {
		info, err := fs.Stat(root)
		if err != nil {
			return nil, errors.Wrapf(err, "catalog input %s", root)
		}
		if !info.IsDir() {
			out = append(out, root)
			continue
		}
		err = afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && hasExt(path, exts) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walk %s", root)
		}
	}
	sort.Strings(out)
	return out, nil
}

func hasExt(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

package manifest

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidVersion = errors.New("invalid snapshot version")
	ErrUnknownVersion = errors.New("unknown snapshot version")
)

// Snapshot records one generation run: where it wrote, how much and the
// SHA-256 of every emitted file keyed by its path below OutDir.
type Snapshot struct {
	Name    string            `yaml:"name" json:"name"`
	Version string            `yaml:"version" json:"version"`
	OutDir  string            `yaml:"out_dir" json:"out_dir"`
	Types   int               `yaml:"types" json:"types"`
	Members int               `yaml:"members" json:"members"`
	Files   map[string]string `yaml:"files,omitempty" json:"files,omitempty"`
}

// Manifest tracks recorded snapshots in version order.
type Manifest struct {
	CurrentVersion  string     `yaml:"current_version" json:"current_version"`
	PreviousVersion string     `yaml:"previous_version" json:"previous_version"`
	Snapshots       []Snapshot `yaml:"snapshots" json:"snapshots"`
}

// CanonicalVersion returns v in canonical semantic-version form with its
// leading "v", accepting input without one.
func CanonicalVersion(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", errors.Wrapf(ErrInvalidVersion, "%q", v)
	}
	return semver.Canonical(v), nil
}

// Load reads a manifest from path. A missing file yields an empty manifest.
func Load(fs afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read manifest")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "unmarshal manifest")
	}
	return &m, nil
}

// Save writes the manifest to path, creating parent directories as needed.
func (m *Manifest) Save(fs afero.Fs, path string) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create manifest directory")
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "marshal manifest")
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return errors.Wrap(err, "write manifest")
	}
	return nil
}

// AddSnapshot records s under its canonical version. Re-recording a
// version replaces the earlier entry of the same name and leaves the
// previous-version pointer alone.
func (m *Manifest) AddSnapshot(s Snapshot) error {
	v, err := CanonicalVersion(s.Version)
	if err != nil {
		return err
	}
	s.Version = v

	if m.CurrentVersion != "" && m.CurrentVersion != v {
		m.PreviousVersion = m.CurrentVersion
	}
	m.CurrentVersion = v

	if i := slices.IndexFunc(m.Snapshots, func(e Snapshot) bool {
		return e.Name == s.Name && e.Version == v
	}); i >= 0 {
		m.Snapshots[i] = s
		return nil
	}
	m.Snapshots = append(m.Snapshots, s)
	slices.SortStableFunc(m.Snapshots, func(a, b Snapshot) int {
		return semver.Compare(a.Version, b.Version)
	})
	return nil
}

// Snapshot returns the last recorded snapshot with the given version.
func (m *Manifest) Snapshot(version string) (*Snapshot, error) {
	v, err := CanonicalVersion(version)
	if err != nil {
		return nil, err
	}
	for i := len(m.Snapshots) - 1; i >= 0; i-- {
		if m.Snapshots[i].Version == v {
			return &m.Snapshots[i], nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownVersion, "%s", v)
}

// Diff describes how the files of to differ from those of from, as
// go-cmp renders it. Identical runs produce an empty string.
func Diff(from, to *Snapshot) string {
	return cmp.Diff(from.Files, to.Files)
}

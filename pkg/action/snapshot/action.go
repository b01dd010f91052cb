package snapshot

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/cmmoran/externgen/pkg/action/generate"
	"github.com/cmmoran/externgen/pkg/externgen"
	"github.com/cmmoran/externgen/pkg/manifest"
)

// Record runs a generation and records it in the manifest at manifestPath.
func Record(ctx context.Context, opts *externgen.Options, fs afero.Fs, logger *zap.Logger, manifestPath, name, version string) (*manifest.Snapshot, error) {
	if _, err := manifest.CanonicalVersion(version); err != nil {
		return nil, err
	}
	m, err := manifest.Load(fs, manifestPath)
	if err != nil {
		return nil, err
	}

	summary, err := generate.Generate(ctx, opts, fs, logger)
	if err != nil {
		return nil, err
	}

	s := manifest.Snapshot{
		Name:    name,
		Version: version,
		OutDir:  summary.OutDir,
		Types:   summary.Types,
		Members: summary.Members,
		Files:   summary.Files,
	}
	if err := m.AddSnapshot(s); err != nil {
		return nil, err
	}
	if err := m.Save(fs, manifestPath); err != nil {
		return nil, err
	}
	return m.Snapshot(version)
}

// List returns all snapshots recorded in the manifest.
func List(fs afero.Fs, manifestPath string) (*manifest.Manifest, error) {
	return manifest.Load(fs, manifestPath)
}

// Diff compares the file digests of two recorded versions. Empty from and
// to default to the previous and current versions.
func Diff(fs afero.Fs, manifestPath, from, to string) (string, error) {
	m, err := manifest.Load(fs, manifestPath)
	if err != nil {
		return "", err
	}
	if from == "" {
		from = m.PreviousVersion
	}
	if to == "" {
		to = m.CurrentVersion
	}
	if from == "" || to == "" {
		return "", errors.WithHint(
			errors.New("no current/previous snapshots recorded"),
			"record at least two versions with `snapshot record`",
		)
	}

	prev, err := m.Snapshot(from)
	if err != nil {
		return "", err
	}
	cur, err := m.Snapshot(to)
	if err != nil {
		return "", err
	}
	return manifest.Diff(prev, cur), nil
}

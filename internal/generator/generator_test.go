package generator

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/tools/txtar"

	"github.com/cmmoran/externgen/internal/catalog"
	"github.com/cmmoran/externgen/internal/emitter"
	"github.com/cmmoran/externgen/internal/model"
	"github.com/cmmoran/externgen/internal/writer"
)

type fixture struct {
	fs      afero.Fs
	summary string
	want    map[string]string
}

func loadFixture(t *testing.T, name string) *fixture {
	t.Helper()
	ar, err := txtar.ParseFile(filepath.Join("testdata", name))
	require.NoError(t, err)

	fx := &fixture{fs: afero.NewMemMapFs(), want: make(map[string]string)}
	for _, f := range ar.Files {
		switch {
		case f.Name == "summary":
			fx.summary = strings.TrimSpace(string(f.Data))
		case strings.HasPrefix(f.Name, "catalog/"):
			require.NoError(t, afero.WriteFile(fx.fs, f.Name, f.Data, 0o644))
		case strings.HasPrefix(f.Name, "want/"):
			fx.want[strings.TrimPrefix(f.Name, "want/")] = string(f.Data)
		}
	}
	return fx
}

func unityConfig(concurrency int) Config {
	return Config{
		RootNamespace: "UnityEngine",
		RootPackage:   "unityengine",
		OutDir:        "out",
		Concurrency:   concurrency,
	}
}

func readOutput(t *testing.T, fs afero.Fs, root string) map[string]string {
	t.Helper()
	w := writer.New(fs, root)
	files, err := w.Files("hx")
	require.NoError(t, err)
	got := make(map[string]string, len(files))
	for _, rel := range files {
		data, err := afero.ReadFile(fs, w.Path(rel))
		require.NoError(t, err)
		got[rel] = string(data)
	}
	return got
}

func TestRunGolden(t *testing.T) {
	fx := loadFixture(t, "unity.txtar")
	logger := zaptest.NewLogger(t)

	g := New(catalog.NewFileProvider(fx.fs, logger, "catalog"), unityConfig(4),
		WithFs(fx.fs), WithLogger(logger))
	summary, err := g.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, fx.summary, summary.String())
	assert.Equal(t, len(fx.want), summary.Types)
	assert.Len(t, summary.Files, len(fx.want))

	if diff := cmp.Diff(fx.want, readOutput(t, fx.fs, "out")); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRunDeterministic(t *testing.T) {
	fx := loadFixture(t, "unity.txtar")

	run := func(concurrency int) *Summary {
		g := New(catalog.NewFileProvider(fx.fs, nil, "catalog"), unityConfig(concurrency), WithFs(fx.fs))
		s, err := g.Run(context.Background())
		require.NoError(t, err)
		return s
	}

	first := run(1)
	second := run(8)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("runs differ (-first +second):\n%s", diff)
	}
}

func TestRunClean(t *testing.T) {
	fx := loadFixture(t, "unity.txtar")
	require.NoError(t, afero.WriteFile(fx.fs, "out/Stale.hx", []byte("stale"), 0o644))

	cfg := unityConfig(2)
	cfg.Clean = true
	_, err := New(catalog.NewFileProvider(fx.fs, nil, "catalog"), cfg, WithFs(fx.fs)).Run(context.Background())
	require.NoError(t, err)

	got := readOutput(t, fx.fs, "out")
	assert.NotContains(t, got, "Stale.hx")
	assert.Len(t, got, len(fx.want))
}

type panicky struct {
	inner  *emitter.Emitter
	target string
}

func (p *panicky) Emit(td *model.TypeDescriptor) (*emitter.File, error) {
	if td.FullName == p.target {
		panic("boom")
	}
	return p.inner.Emit(td)
}

func TestRunSkipsPanickingType(t *testing.T) {
	fs := afero.NewMemMapFs()
	types := catalog.Static{
		{FullName: "UnityEngine.Camera", Name: "Camera", Namespace: "UnityEngine"},
		{FullName: "UnityEngine.Light", Name: "Light", Namespace: "UnityEngine"},
	}
	g := New(types, unityConfig(2), WithFs(fs), WithLogger(zaptest.NewLogger(t)))
	g.newRenderer = func(c *emitter.Context) renderer {
		return &panicky{inner: emitter.New(c), target: "UnityEngine.Light"}
	}

	summary, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Types)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, []string{"Camera.hx"}, keys(readOutput(t, fs, "out")))
}

func TestRunCountsMalformedTypes(t *testing.T) {
	types := catalog.Static{
		{FullName: "UnityEngine.Camera", Name: "Camera", Namespace: "UnityEngine"},
		{FullName: "UnityEngine.List`1[System.Int32]", Name: "List", Namespace: "UnityEngine"},
	}
	summary, err := New(types, unityConfig(1), WithFs(afero.NewMemMapFs())).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Types)
	assert.Equal(t, 1, summary.Skipped)
}

func TestRunWriteFailure(t *testing.T) {
	types := catalog.Static{{FullName: "UnityEngine.Camera", Name: "Camera", Namespace: "UnityEngine"}}
	g := New(types, unityConfig(1), WithFs(afero.NewReadOnlyFs(afero.NewMemMapFs())))
	_, err := g.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write declarations")
}

func TestRunEmptyCatalog(t *testing.T) {
	summary, err := New(catalog.Static{}, unityConfig(0), WithFs(afero.NewMemMapFs())).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Generated 0 types with 0 members into out", summary.String())
	assert.Empty(t, summary.Files)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	types := catalog.Chain{catalog.Static{{FullName: "UnityEngine.Camera", Name: "Camera", Namespace: "UnityEngine"}}}
	_, err := New(types, unityConfig(1), WithFs(afero.NewMemMapFs())).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSummaryString(t *testing.T) {
	s := &Summary{Types: 1, Members: 1, OutDir: "hx"}
	assert.Equal(t, "Generated 1 type with 1 member into hx", s.String())
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

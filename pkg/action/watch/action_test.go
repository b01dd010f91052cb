package watch

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cmmoran/externgen/pkg/externgen"
)

func newTestWatcher(t *testing.T) (*Watcher, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("catalog/modules", 0o755))
	require.NoError(t, fs.MkdirAll("catalog/hx", 0o755))
	require.NoError(t, fs.MkdirAll("docs", 0o755))
	require.NoError(t, afero.WriteFile(fs, "catalog/core.yaml", []byte("types: []"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "docs/core.xml", []byte("<doc/>"), 0o644))

	opts := externgen.NewOptions(
		externgen.WithCatalogs("catalog"),
		externgen.WithDocs("docs/core.xml"),
		externgen.WithOutDir("catalog/hx"),
		externgen.WithDebounce(50*time.Millisecond),
	)
	require.NoError(t, opts.Normalize())
	return New(opts, fs, zaptest.NewLogger(t)), fs
}

func TestWatchDirs(t *testing.T) {
	w, _ := newTestWatcher(t)
	dirs, err := w.watchDirs()
	require.NoError(t, err)
	assert.Equal(t, []string{"catalog", "catalog/modules", "docs"}, dirs)

	w.opts.Assemblies = []string{"missing"}
	_, err = w.watchDirs()
	require.Error(t, err)
}

func TestRelevant(t *testing.T) {
	w, _ := newTestWatcher(t)
	tests := []struct {
		name string
		want bool
	}{
		{name: "catalog/core.yaml", want: true},
		{name: "catalog/modules/ui.json", want: true},
		{name: "catalog/Managed/UnityEngine.dll", want: true},
		{name: "catalog/notes.md", want: false},
		{name: "catalog/hx/Camera.hx", want: false},
		{name: "catalog/hx/settings.yaml", want: false},
		{name: "docs/core.xml", want: true},
		{name: "docs/other.xml", want: false},
		{name: "elsewhere/core.yaml", want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.relevant(tt.name), tt.name)
	}
}

func TestLoopDebounces(t *testing.T) {
	w, fs := newTestWatcher(t)
	runs := make(chan struct{}, 8)
	w.run = func(context.Context) error {
		runs <- struct{}{}
		return errors.New("catalog unreadable")
	}

	events := make(chan fsnotify.Event)
	errs := make(chan error)
	var added []string
	add := func(name string) error {
		added = append(added, name)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.loop(ctx, events, errs, add) }()

	events <- fsnotify.Event{Name: "catalog/core.yaml", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "catalog/core.yaml", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "catalog/hx/Camera.hx", Op: fsnotify.Create}
	errs <- errors.New("queue overflow")

	select {
	case <-runs:
	case <-time.After(2 * time.Second):
		t.Fatal("no regeneration after change")
	}

	require.NoError(t, fs.MkdirAll("catalog/extra", 0o755))
	events <- fsnotify.Event{Name: "catalog/extra", Op: fsnotify.Create}
	events <- fsnotify.Event{Name: "catalog/extra/audio.toml", Op: fsnotify.Create}
	select {
	case <-runs:
	case <-time.After(2 * time.Second):
		t.Fatal("watching stopped after a failed generation")
	}

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []string{"catalog/extra"}, added)
	assert.Empty(t, runs)
}

func TestLoopStopsOnClosedEvents(t *testing.T) {
	w, _ := newTestWatcher(t)
	w.run = func(context.Context) error {
		t.Fatal("unexpected run")
		return nil
	}
	events := make(chan fsnotify.Event)
	close(events)
	require.NoError(t, w.loop(context.Background(), events, make(chan error), func(string) error { return nil }))
}

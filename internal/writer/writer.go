// Package writer persists rendered declaration files below an output root.
package writer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
)

// Writer places files at <root>/<relative path>. Distinct paths may be
// written concurrently.
type Writer struct {
	fs   afero.Fs
	root string
}

func New(fs afero.Fs, root string) *Writer {
	return &Writer{fs: fs, root: filepath.Clean(root)}
}

// Root returns the output root.
func (w *Writer) Root() string { return w.root }

// Path returns the filesystem path of a slash-separated relative path.
func (w *Writer) Path(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

// Write stores content at rel, creating parent directories as needed.
func (w *Writer) Write(rel string, content []byte) (string, error) {
	if rel == "" || strings.HasPrefix(filepath.ToSlash(filepath.Clean(rel)), "../") || filepath.IsAbs(rel) {
		return "", errors.Newf("invalid output path %q", rel)
	}
	full := w.Path(rel)
	if err := w.fs.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", errors.Wrapf(err, "create directory for %s", rel)
	}
	if err := afero.WriteFile(w.fs, full, content, 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", rel)
	}
	return full, nil
}

// Clean removes the output root and everything below it. A missing root is
// not an error.
func (w *Writer) Clean() error {
	if w.root == "." || w.root == string(os.PathSeparator) || w.root == "" {
		return errors.WithHint(
			errors.Newf("refusing to clean output root %q", w.root),
			"point the output directory at a dedicated folder",
		)
	}
	if err := w.fs.RemoveAll(w.root); err != nil {
		return errors.Wrapf(err, "clean %s", w.root)
	}
	return nil
}

// Files lists the relative, slash-separated paths of regular files under
// the root with extension ext, or all files when ext is empty. A missing
// root has no files.
func (w *Writer) Files(ext string) ([]string, error) {
	if ok, _ := afero.DirExists(w.fs, w.root); !ok {
		return nil, nil
	}
	var out []string
	err := afero.Walk(w.fs, w.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || (ext != "" && filepath.Ext(path) != "."+ext) {
			return nil
		}
		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", w.root)
	}
	return out, nil
}

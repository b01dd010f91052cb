// Package emitter renders one extern declaration file per catalog type.
package emitter

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/cmmoran/externgen/internal/mapper"
	"github.com/cmmoran/externgen/internal/model"
	"github.com/cmmoran/externgen/internal/naming"
	"github.com/cmmoran/externgen/internal/schema"
)

// ErrUnknownType is returned for a descriptor the run's type table does not
// know about.
var ErrUnknownType = errors.New("type not in type table")

// Context is the read-only state of one generation run. It is built once,
// before any type is emitted, and shared by all emitters.
type Context struct {
	Index    *schema.ArityIndex
	Types    *naming.TypeTable
	Packages *naming.PackageMapper
	Mapper   *mapper.Mapper
}

// NewContext indexes the normalized catalog.
func NewContext(types []*model.TypeDescriptor, packages *naming.PackageMapper) *Context {
	index := schema.NewArityIndex(types)
	table := naming.NewTypeTable(types, packages)
	return &Context{
		Index:    index,
		Types:    table,
		Packages: packages,
		Mapper:   mapper.New(index, table, packages),
	}
}

// File is a rendered declaration file.
type File struct {
	Entry   *naming.TypeEntry
	Content []byte
	Members int
}

// Emitter renders types against a shared Context. It keeps no per-type
// state, so one Emitter may be used from several goroutines.
type Emitter struct {
	ctx *Context
}

func New(ctx *Context) *Emitter {
	return &Emitter{ctx: ctx}
}

// Emit renders td. Members counts the emitted declarations, not comments.
func (e *Emitter) Emit(td *model.TypeDescriptor) (*File, error) {
	if td == nil {
		return nil, errors.New("nil type descriptor")
	}
	entry, ok := e.ctx.Types.Lookup(td.FullName)
	if !ok || entry.FullName != td.FullName {
		return nil, errors.Wrapf(ErrUnknownType, "%s", td.FullName)
	}

	var w lineWriter
	w.line("package " + entry.Package + ";")
	w.line("")
	if doc := docComment(td.Summary); doc != "" {
		w.line(doc)
	}
	w.line(native(td.FullName))
	w.line("extern class " + entry.Name + typeParams(td.GenericParams) + " {")

	members := e.constructors(&w, td)
	members += e.properties(&w, td)
	members += e.methods(&w, td)

	w.line("}")
	return &File{Entry: entry, Content: w.bytes(), Members: members}, nil
}

type lineWriter struct {
	b strings.Builder
}

func (w *lineWriter) line(s string) {
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

func (w *lineWriter) member(s string) {
	w.b.WriteByte('\t')
	w.line(s)
}

func (w *lineWriter) bytes() []byte { return []byte(w.b.String()) }

func native(name string) string {
	return `@:native("` + naming.EscapeNative(name) + `")`
}

func typeParams(names []string) string {
	if len(names) == 0 {
		return ""
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = naming.SanitizeParamName(n)
	}
	return "<" + strings.Join(out, ", ") + ">"
}

// docComment renders a summary as a single-line block comment.
func docComment(summary string) string {
	s := strings.Join(strings.Fields(summary), " ")
	if s == "" {
		return ""
	}
	return "/** " + strings.ReplaceAll(s, "*/", `*\/`) + " */"
}

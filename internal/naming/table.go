package naming

import (
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/cmmoran/externgen/internal/model"
	"github.com/cmmoran/externgen/internal/schema"
)

// TypeEntry is where one catalog type is emitted and how it is referenced.
type TypeEntry struct {
	FullName string
	Package  string
	Dir      string
	Name     string
}

// QualifiedName is the package-qualified reference to the emitted type.
func (e *TypeEntry) QualifiedName() string {
	if e.Package == "" {
		return e.Name
	}
	return e.Package + "." + e.Name
}

// RelPath is the slash-separated file path below the output root.
func (e *TypeEntry) RelPath(ext string) string {
	return path.Join(e.Dir, e.Name+"."+ext)
}

// TypeTable resolves catalog types to entries. Like the arity index it is
// built once per run and read-only afterwards.
type TypeTable struct {
	byFullName map[string]*TypeEntry
	byBase     map[string]*TypeEntry
}

// NewTypeTable assigns every type a package, directory and class name.
// Types are visited in full-name order; when two land on the same path
// (case-insensitively) the later one gets a numeric suffix.
func NewTypeTable(types []*model.TypeDescriptor, packages *PackageMapper) *TypeTable {
	sorted := make([]*model.TypeDescriptor, 0, len(types))
	for _, td := range types {
		if td != nil {
			sorted = append(sorted, td)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].FullName < sorted[j].FullName })

	t := &TypeTable{
		byFullName: make(map[string]*TypeEntry, len(sorted)),
		byBase:     make(map[string]*TypeEntry, len(sorted)),
	}
	taken := make(map[string]bool, len(sorted))
	for _, td := range sorted {
		if _, dup := t.byFullName[td.FullName]; dup {
			continue
		}
		pkg, dir := packages.Map(td.Namespace)
		base := SanitizeTypeName(td.Name)
		name := base
		for n := 2; taken[strings.ToLower(path.Join(dir, name))]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		taken[strings.ToLower(path.Join(dir, name))] = true

		e := &TypeEntry{FullName: td.FullName, Package: pkg, Dir: dir, Name: name}
		t.byFullName[td.FullName] = e
		if stripped := schema.StripArity(td.FullName); t.byBase[stripped] == nil {
			t.byBase[stripped] = e
		}
	}
	return t
}

// Lookup finds the entry for a schema base name, with or without its arity
// marker.
func (t *TypeTable) Lookup(base string) (*TypeEntry, bool) {
	if t == nil {
		return nil, false
	}
	if e, ok := t.byFullName[base]; ok {
		return e, true
	}
	if schema.HasArity(base) {
		return nil, false
	}
	e, ok := t.byBase[base]
	return e, ok
}

// Len returns the number of entries.
func (t *TypeTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byFullName)
}

package emitter

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/cmmoran/externgen/internal/mapper"
	"github.com/cmmoran/externgen/internal/model"
	"github.com/cmmoran/externgen/internal/naming"
	"github.com/cmmoran/externgen/internal/schema"
)

type constructorDecl struct {
	key    string
	params []*model.Parameter
	types  []string
}

// constructors keeps one constructor per nullable-normalized parameter
// list, ordered by that key.
func (e *Emitter) constructors(w *lineWriter, td *model.TypeDescriptor) int {
	seen := make(map[string]bool, len(td.Constructors))
	var decls []*constructorDecl
	for _, c := range td.Constructors {
		if c == nil {
			continue
		}
		types := e.paramTypes(c.Params)
		key := normalizedList(types)
		if seen[key] {
			continue
		}
		seen[key] = true
		decls = append(decls, &constructorDecl{key: key, params: c.Params, types: types})
	}
	slices.SortStableFunc(decls, func(a, b *constructorDecl) int { return strings.Compare(a.key, b.key) })

	overload := len(decls) > 1
	for _, d := range decls {
		var b strings.Builder
		if overload {
			b.WriteString("overload ")
		}
		b.WriteString("function new(")
		b.WriteString(renderParams(d.params, d.types))
		b.WriteString("):")
		b.WriteString(mapper.Void)
		b.WriteByte(';')
		w.member(b.String())
	}
	return len(decls)
}

// properties emits one var per distinct property name, in name order.
func (e *Emitter) properties(w *lineWriter, td *model.TypeDescriptor) int {
	props := make([]*model.PropertyDescriptor, 0, len(td.Properties))
	for _, p := range td.Properties {
		if p != nil && p.Name != "" {
			props = append(props, p)
		}
	}
	slices.SortStableFunc(props, func(a, b *model.PropertyDescriptor) int { return strings.Compare(a.Name, b.Name) })
	props = slices.CompactFunc(props, func(a, b *model.PropertyDescriptor) bool { return a.Name == b.Name })

	for _, p := range props {
		if doc := docComment(p.Summary); doc != "" {
			w.member(doc)
		}
		var b strings.Builder
		name := naming.SanitizeMemberName(p.Name)
		if name != p.Name {
			b.WriteString(native(p.Name) + " ")
		}
		if p.Protected() {
			b.WriteString("@:protected ")
		}
		if p.Static {
			b.WriteString("static ")
		}
		b.WriteString("var ")
		b.WriteString(name)
		b.WriteString(accessClause(p.AccessMode()))
		b.WriteByte(':')
		b.WriteString(e.ctx.Mapper.Map(e.ctx.Index.Upgrade(p.Type, nil)))
		b.WriteByte(';')
		w.member(b.String())
	}
	return len(props)
}

func accessClause(mode model.AccessMode) string {
	switch mode {
	case model.AccessReadWrite:
		return "(get, set)"
	case model.AccessReadOnly:
		return "(get, never)"
	case model.AccessWriteOnly:
		return "(never, set)"
	default:
		return ""
	}
}

type methodDecl struct {
	m        *model.MethodDescriptor
	name     string
	generics []string
	ret      string
	types    []string
	key      string
}

func (d *methodDecl) render(overload bool) string {
	var b strings.Builder
	if d.name != d.m.Name {
		b.WriteString(native(d.m.Name) + " ")
	}
	if d.m.Protected() {
		b.WriteString("@:protected ")
	}
	if d.m.Static {
		b.WriteString("static ")
	}
	if overload {
		b.WriteString("overload ")
	}
	b.WriteString("function ")
	b.WriteString(d.name)
	b.WriteString(typeParams(d.generics))
	b.WriteByte('(')
	b.WriteString(renderParams(d.m.Params, d.types))
	b.WriteString("):")
	b.WriteString(d.ret)
	b.WriteByte(';')
	return b.String()
}

// methods emits method groups in name order.
func (e *Emitter) methods(w *lineWriter, td *model.TypeDescriptor) int {
	groups := make(map[string][]*model.MethodDescriptor)
	var names []string
	for _, m := range td.Methods {
		if m == nil || m.Name == "" {
			continue
		}
		if _, ok := groups[m.Name]; !ok {
			names = append(names, m.Name)
		}
		groups[m.Name] = append(groups[m.Name], m)
	}
	slices.Sort(names)

	total := 0
	for _, name := range names {
		total += e.methodGroup(w, td, groups[name])
	}
	return total
}

// methodGroup dedupes a same-name group by signature key and orders it by
// parameter count, then key. The overload marker goes on every member of
// a group with more than one survivor.
func (e *Emitter) methodGroup(w *lineWriter, td *model.TypeDescriptor, group []*model.MethodDescriptor) int {
	seen := make(map[string]bool, len(group))
	var decls []*methodDecl
	for _, m := range group {
		d := e.method(td, m)
		if seen[d.key] {
			continue
		}
		seen[d.key] = true
		decls = append(decls, d)
	}
	slices.SortStableFunc(decls, func(a, b *methodDecl) int {
		if c := cmp.Compare(len(a.types), len(b.types)); c != 0 {
			return c
		}
		return strings.Compare(a.key, b.key)
	})

	for _, m := range group {
		if doc := docComment(m.Summary); doc != "" {
			w.member(doc)
			break
		}
	}
	overload := len(decls) > 1
	for _, d := range decls {
		w.member(d.render(overload))
	}
	return len(decls)
}

func (e *Emitter) method(td *model.TypeDescriptor, m *model.MethodDescriptor) *methodDecl {
	ret := e.ctx.Index.Upgrade(m.ReturnType, m.GenericParams)
	raw := make([]string, 0, len(m.Params)+1)
	raw = append(raw, ret)
	for _, p := range m.Params {
		raw = append(raw, e.ctx.Index.Upgrade(p.Type, m.GenericParams))
	}

	d := &methodDecl{
		m:        m,
		name:     naming.SanitizeMemberName(m.Name),
		generics: methodGenerics(raw, m.GenericParams, td.GenericParams),
		ret:      e.ctx.Mapper.Map(ret),
		types:    make([]string, len(m.Params)),
	}
	for i := range m.Params {
		d.types[i] = e.ctx.Mapper.Map(raw[i+1])
	}

	static, access := "i", "public"
	if m.Static {
		static = "s"
	}
	if m.Protected() {
		access = "protected"
	}
	d.key = strings.Join([]string{
		static,
		access,
		m.Name,
		"<" + strings.Join(d.generics, ",") + ">",
		d.ret,
		"(" + normalizedList(d.types) + ")",
	}, "|")
	return d
}

// methodGenerics collects the generic-parameter-shaped tokens of a
// method's signature plus its declared generic parameters, minus those the
// enclosing type declares, sorted.
func methodGenerics(types, declared, owned []string) []string {
	set := make(map[string]bool)
	for _, t := range types {
		for _, tok := range schema.ExtractTypeTokens(t) {
			if schema.IsGenericParamName(tok) {
				set[tok] = true
			}
		}
	}
	for _, g := range declared {
		if g = strings.TrimSpace(g); g != "" {
			set[g] = true
		}
	}
	for _, g := range owned {
		delete(set, g)
	}

	out := make([]string, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	slices.Sort(out)
	return out
}

func (e *Emitter) paramTypes(params []*model.Parameter) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = e.ctx.Mapper.Map(e.ctx.Index.Upgrade(p.Type, nil))
	}
	return out
}

// normalizedList is the comparison form of a mapped parameter list.
func normalizedList(types []string) string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = mapper.StripNullable(t)
	}
	return strings.Join(out, ",")
}

// renderParams pairs sanitized, de-duplicated names with mapped types.
// Repeated names get a numeric suffix starting at 2.
func renderParams(params []*model.Parameter, types []string) string {
	used := make(map[string]bool, len(params))
	out := make([]string, len(params))
	for i, p := range params {
		base := naming.SanitizeParamName(p.Name)
		name := base
		for n := 2; used[name]; n++ {
			name = base + strconv.Itoa(n)
		}
		used[name] = true
		out[i] = name + ":" + types[i]
	}
	return strings.Join(out, ", ")
}

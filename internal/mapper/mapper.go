// Package mapper translates canonical schema strings into target
// declaration syntax.
package mapper

import (
	"strings"

	"github.com/cmmoran/externgen/internal/naming"
	"github.com/cmmoran/externgen/internal/schema"
)

// Target vocabulary.
const (
	Dynamic = "Dynamic"
	Bool    = "Bool"
	Int     = "Int"
	UInt    = "UInt"
	Float   = "Float"
	String  = "String"
	Void    = "Void"
	Int64   = "haxe.Int64"
)

var targetKeywords = map[string]bool{
	Dynamic: true, Bool: true, Int: true, UInt: true, Float: true, String: true, Void: true, Int64: true,
}

var primitiveTargets = map[schema.PrimitiveKind]string{
	schema.PrimitiveBool:   Bool,
	schema.PrimitiveInt:    Int,
	schema.PrimitiveUInt:   UInt,
	schema.PrimitiveInt64:  Int64,
	schema.PrimitiveFloat:  Float,
	schema.PrimitiveString: String,
	schema.PrimitiveVoid:   Void,
	schema.PrimitiveObject: Dynamic,
}

// Mapper is a pure function from schema strings to target syntax. It holds
// only read-only lookups and is safe for concurrent use.
type Mapper struct {
	index    *schema.ArityIndex
	types    *naming.TypeTable
	packages *naming.PackageMapper
}

// New returns a Mapper over the run's lookups. Any of them may be nil.
func New(index *schema.ArityIndex, types *naming.TypeTable, packages *naming.PackageMapper) *Mapper {
	return &Mapper{index: index, types: types, packages: packages}
}

// Map converts a schema string. It never fails and never returns "".
func (m *Mapper) Map(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Dynamic
	}
	if targetKeywords[s] {
		return s
	}
	return m.MapExpr(schema.Parse(s))
}

// MapExpr converts a parsed expression.
func (m *Mapper) MapExpr(e schema.Expr) string {
	switch t := e.(type) {
	case *schema.Array:
		return "Array<" + m.MapExpr(t.Elem) + ">"
	case *schema.Nullable:
		return "Null<" + m.MapExpr(t.Inner) + ">"
	case *schema.Primitive:
		if out, ok := primitiveTargets[schema.PrimitiveOf(t.Name)]; ok {
			return out
		}
		return Dynamic
	case *schema.GenericParameter:
		if m.index.Known(t.Name) {
			return m.mapNamed(t.Name, m.placeholders(t.Name))
		}
		return t.Name
	case *schema.Named:
		if len(t.Args) == 0 && targetKeywords[t.Base] {
			return t.Base
		}
		args := t.Args
		if len(args) == 0 && m.index.Known(t.Base) && !m.concrete(t.Base) {
			args = m.placeholders(t.Base)
		}
		if len(args) == 0 && isGenericParamBase(t.Base) {
			return schema.SimpleName(t.Base)
		}
		return m.mapNamed(t.Base, args)
	default:
		return Dynamic
	}
}

// placeholders re-instantiates a bare generic base with dynamic arguments,
// using the arity marker when present and the smallest known arity
// otherwise.
func (m *Mapper) placeholders(base string) []schema.Expr {
	n := schema.Arity(base)
	if n == 0 {
		if known := m.index.Arities(base); len(known) > 0 {
			n = known[0]
		}
	}
	args := make([]schema.Expr, n)
	for i := range args {
		args[i] = &schema.Primitive{Name: schema.ObjectType}
	}
	return args
}

// concrete reports whether base names a non-generic catalog type that
// shares its base name with a generic definition, as Foo beside Foo`1.
// Emitted members pass through ArityIndex.Upgrade first, which instantiates
// such a bare name before it gets here; the guard only applies to direct
// Map calls.
func (m *Mapper) concrete(base string) bool {
	if schema.HasArity(base) {
		return false
	}
	e, ok := m.types.Lookup(base)
	return ok && e.FullName == base
}

// mapNamed maps a user type reference. Types outside the accepted root are
// erased; an erased base erases the whole instantiation.
func (m *Mapper) mapNamed(base string, args []schema.Expr) string {
	mapped := m.mapBase(base)
	if mapped == Dynamic || len(args) == 0 {
		return mapped
	}
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = m.MapExpr(a)
	}
	return mapped + "<" + strings.Join(out, ",") + ">"
}

func (m *Mapper) mapBase(base string) string {
	if e, ok := m.types.Lookup(base); ok {
		return e.QualifiedName()
	}
	if m.packages == nil {
		return Dynamic
	}
	ns := schema.Namespace(base)
	if !m.packages.Recognized(ns) {
		return Dynamic
	}
	pkg, _ := m.packages.Map(ns)
	return pkg + "." + naming.SanitizeTypeName(schema.SimpleName(base))
}

// isGenericParamBase applies the generic-parameter naming heuristic to the
// simple, unqualified form of base, so UnityEngine.TLight reads as TLight.
func isGenericParamBase(base string) bool {
	return schema.IsGenericParamName(schema.SimpleName(base))
}

// StripNullable removes every Null<...> wrapper from mapped output so that
// nullable and non-nullable shapes compare equal.
func StripNullable(mapped string) string {
	const open = "Null<"
	from := 0
	for {
		i := strings.Index(mapped[from:], open)
		if i < 0 {
			return mapped
		}
		i += from
		if i > 0 && isIdentByte(mapped[i-1]) {
			// a longer identifier such as root.MyNull<...>
			from = i + len(open)
			continue
		}
		end := closing(mapped, i+len(open)-1)
		if end < 0 {
			return mapped
		}
		mapped = mapped[:i] + mapped[i+len(open):end] + mapped[end+1:]
		from = i
	}
}

// closing returns the index of the '>' matching the '<' at open.
func closing(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '.' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

package schema

import "strings"

// Kind identifies the variant of a type expression.
type Kind int

const (
	KindNamed Kind = iota
	KindPrimitive
	KindArray
	KindNullable
	KindGenericParameter
)

func (k Kind) String() string {
	switch k {
	case KindNamed:
		return "named"
	case KindPrimitive:
		return "primitive"
	case KindArray:
		return "array"
	case KindNullable:
		return "nullable"
	case KindGenericParameter:
		return "generic-parameter"
	default:
		return "unknown"
	}
}

// Expr is one parsed schema type expression.
type Expr interface {
	// Kind returns the variant for type switching.
	Kind() Kind
	// String renders the canonical schema form.
	String() string
}

// Primitive is a host primitive, named by its host spelling.
type Primitive struct {
	Name string
}

func (p *Primitive) Kind() Kind     { return KindPrimitive }
func (p *Primitive) String() string { return p.Name }

type Array struct {
	Elem Expr
}

func (a *Array) Kind() Kind     { return KindArray }
func (a *Array) String() string { return a.Elem.String() + arrayMarker }

// Nullable is the host's nullable-value wrapper over one argument.
type Nullable struct {
	Base  string
	Inner Expr
}

func (n *Nullable) Kind() Kind     { return KindNullable }
func (n *Nullable) String() string { return n.Base + "<" + n.Inner.String() + ">" }

// Named is a user or host type, optionally instantiated. Base keeps its
// arity marker.
type Named struct {
	Base string
	Args []Expr
}

func (n *Named) Kind() Kind { return KindNamed }

func (n *Named) String() string {
	if len(n.Args) == 0 {
		return n.Base
	}
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return n.Base + "<" + strings.Join(args, ",") + ">"
}

// GenericParameter is a bare name recognised by IsGenericParamName.
type GenericParameter struct {
	Name string
}

func (g *GenericParameter) Kind() Kind     { return KindGenericParameter }
func (g *GenericParameter) String() string { return g.Name }

// Parse converts a schema string into an Expr. It never fails: malformed
// strings become a Named expression carrying the raw text.
func Parse(s string) Expr {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, arrayMarker) {
		return &Array{Elem: Parse(s[:len(s)-len(arrayMarker)])}
	}

	base, rawArgs := SplitGenericType(s)
	if len(rawArgs) == 0 {
		switch {
		case IsPrimitive(base):
			return &Primitive{Name: base}
		case !strings.ContainsAny(base, ".`") && IsGenericParamName(base):
			return &GenericParameter{Name: base}
		default:
			return &Named{Base: base}
		}
	}

	args := make([]Expr, len(rawArgs))
	for i, a := range rawArgs {
		args[i] = Parse(a)
	}
	if IsNullableBase(base) && len(args) == 1 {
		return &Nullable{Base: base, Inner: args[0]}
	}
	return &Named{Base: base, Args: args}
}

// Tokens lists the simple identifiers an expression mentions, in order.
func Tokens(e Expr) []string {
	var out []string
	var walk func(Expr)
	walk = func(e Expr) {
		switch t := e.(type) {
		case *Array:
			walk(t.Elem)
		case *Nullable:
			out = appendToken(out, SimpleName(t.Base))
			walk(t.Inner)
		case *Named:
			out = appendToken(out, SimpleName(t.Base))
			for _, a := range t.Args {
				walk(a)
			}
		case *Primitive:
			out = appendToken(out, SimpleName(t.Name))
		case *GenericParameter:
			out = appendToken(out, t.Name)
		}
	}
	walk(e)
	return out
}

func appendToken(out []string, tok string) []string {
	if tok == "" {
		return out
	}
	return append(out, tok)
}
